package service

import (
	"context"
	"encoding/json"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/repository"
)

type NotificationService interface {
	// AcceptWebhook queues a webhook for asynchronous processing.
	AcceptWebhook(ctx context.Context, event commonevents.MiniAppWebhookEvent) error
	// HandleWebhook applies a queued webhook to the stored details.
	HandleWebhook(ctx context.Context, event commonevents.MiniAppWebhookEvent) error
	Get(ctx context.Context, fid int64) (*models.NotificationDetails, error)
}

type notificationService struct {
	details   repository.NotificationRepository
	publisher EventPublisher
	now       Clock
	logger    *logger.Logger
}

func NewNotificationService(
	details repository.NotificationRepository,
	publisher EventPublisher,
	logger *logger.Logger,
) NotificationService {
	return &notificationService{
		details:   details,
		publisher: publisher,
		now:       utcNow,
		logger:    logger.With("component", "notification-service"),
	}
}

func (s *notificationService) AcceptWebhook(ctx context.Context, event commonevents.MiniAppWebhookEvent) error {
	if event.Fid <= 0 || event.Event == "" {
		return errors.New(errors.CodeInvalidInput, "event and fid are required")
	}
	if event.TimeStamp == 0 {
		event.TimeStamp = s.now().UnixMilli()
	}

	if err := s.publisher.PublishWebhookReceived(ctx, event); err != nil {
		return errors.Wrap(err, errors.CodeEventPublishError, "Failed to queue webhook")
	}

	s.logger.Debug("Webhook queued", "fid", event.Fid, "event", event.Event)
	return nil
}

func (s *notificationService) HandleWebhook(ctx context.Context, event commonevents.MiniAppWebhookEvent) error {
	switch event.Event {
	case commonevents.WebhookFrameAdded, commonevents.WebhookNotificationsEnabled:
		if len(event.NotificationDetails) == 0 || string(event.NotificationDetails) == "null" {
			s.logger.Debug("Webhook without notification details", "fid", event.Fid, "event", event.Event)
			return nil
		}

		var details models.NotificationDetails
		if err := json.Unmarshal(event.NotificationDetails, &details); err != nil {
			s.logger.Warn("Malformed notification details", "fid", event.Fid, "error", err)
			return nil
		}
		if err := s.details.Set(ctx, event.Fid, details); err != nil {
			return err
		}
		s.logger.Info("Notification details stored", "fid", event.Fid, "event", event.Event)

	case commonevents.WebhookFrameRemoved, commonevents.WebhookNotificationsDisabled:
		if err := s.details.Delete(ctx, event.Fid); err != nil {
			return err
		}
		s.logger.Info("Notification details removed", "fid", event.Fid, "event", event.Event)

	default:
		s.logger.Warn("Unknown webhook event", "fid", event.Fid, "event", event.Event)
	}

	return nil
}

func (s *notificationService) Get(ctx context.Context, fid int64) (*models.NotificationDetails, error) {
	details, err := s.details.Get(ctx, fid)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, errors.New(errors.CodeNotFound, "No notification details for this fid")
	}
	return details, nil
}
