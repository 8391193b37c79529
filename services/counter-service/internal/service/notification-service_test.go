package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
)

func TestHandleWebhookStoresAndRemovesDetails(t *testing.T) {
	store := &fakeNotifications{details: map[int64]models.NotificationDetails{}}
	svc := NewNotificationService(store, &fakePublisher{}, logger.Nop())
	ctx := context.Background()

	details := json.RawMessage(`{"url":"https://push.example/notify","token":"tok-1"}`)
	require.NoError(t, svc.HandleWebhook(ctx, commonevents.MiniAppWebhookEvent{
		Event: commonevents.WebhookFrameAdded, Fid: 7, NotificationDetails: details,
	}))

	got, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, "https://push.example/notify", got.URL)

	require.NoError(t, svc.HandleWebhook(ctx, commonevents.MiniAppWebhookEvent{
		Event: commonevents.WebhookNotificationsDisabled, Fid: 7,
	}))
	_, err = svc.Get(ctx, 7)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestHandleWebhookIgnoresMissingDetails(t *testing.T) {
	store := &fakeNotifications{details: map[int64]models.NotificationDetails{}}
	svc := NewNotificationService(store, &fakePublisher{}, logger.Nop())

	require.NoError(t, svc.HandleWebhook(context.Background(), commonevents.MiniAppWebhookEvent{
		Event: commonevents.WebhookNotificationsEnabled, Fid: 7,
	}))
	require.NoError(t, svc.HandleWebhook(context.Background(), commonevents.MiniAppWebhookEvent{
		Event: "something_else", Fid: 7,
	}))
	assert.Empty(t, store.details)
}

func TestAcceptWebhookPublishes(t *testing.T) {
	publisher := &fakePublisher{}
	svc := NewNotificationService(&fakeNotifications{}, publisher, logger.Nop())

	require.NoError(t, svc.AcceptWebhook(context.Background(), commonevents.MiniAppWebhookEvent{
		Event: commonevents.WebhookFrameRemoved, Fid: 7,
	}))
	require.Len(t, publisher.webhooks, 1)
	assert.NotZero(t, publisher.webhooks[0].TimeStamp)

	err := svc.AcceptWebhook(context.Background(), commonevents.MiniAppWebhookEvent{Fid: 7})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
