package events

import (
	"context"
	"time"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/common/natsjetstream"
)

type EventPublisher struct {
	publisher *natsjetstream.Publisher
	logger    *logger.Logger
}

func NewEventPublisher(client *natsjetstream.Client, logger *logger.Logger) *EventPublisher {
	return &EventPublisher{
		publisher: natsjetstream.NewPublisher(client),
		logger:    logger.With("component", "event-publisher"),
	}
}

func (p *EventPublisher) PublishLeaderboardUpdated(ctx context.Context, entry *models.LeaderboardEntry) error {
	event := commonevents.LeaderboardUpdatedEvent{
		Fid:             entry.Fid,
		Username:        entry.Username,
		ImageURL:        entry.ImageURL,
		UserAddress:     entry.UserAddress,
		TotalIncrements: entry.TotalIncrements,
		TotalRewards:    entry.TotalRewards,
		TimeStamp:       time.Now().UTC().UnixMilli(),
	}

	return p.publish(ctx, commonevents.LeaderboardUpdated, event, "fid", entry.Fid)
}

func (p *EventPublisher) PublishSignatureIssued(ctx context.Context, event commonevents.SignatureIssuedEvent) error {
	event.TimeStamp = time.Now().UTC().UnixMilli()
	return p.publish(ctx, commonevents.CounterSignatureIssued, event, "fid", event.Fid)
}

func (p *EventPublisher) PublishGiftBoxClaimed(ctx context.Context, claim *models.GiftBoxClaim, amount string) error {
	event := commonevents.GiftBoxClaimedEvent{
		Fid:         claim.Fid,
		UserAddress: claim.UserAddress,
		TokenType:   string(claim.TokenType),
		Amount:      amount,
		TimeStamp:   claim.Timestamp,
	}

	return p.publish(ctx, commonevents.GiftBoxClaimed, event, "fid", claim.Fid)
}

func (p *EventPublisher) PublishGameScoreSaved(ctx context.Context, event commonevents.GameScoreSavedEvent) error {
	event.TimeStamp = time.Now().UTC().UnixMilli()
	return p.publish(ctx, commonevents.GameScoreSaved, event, "fid", event.Fid)
}

func (p *EventPublisher) PublishWebhookReceived(ctx context.Context, event commonevents.MiniAppWebhookEvent) error {
	if event.TimeStamp == 0 {
		event.TimeStamp = time.Now().UTC().UnixMilli()
	}
	return p.publish(ctx, commonevents.MiniAppWebhookReceived, event, "fid", event.Fid, "event", event.Event)
}

func (p *EventPublisher) publish(ctx context.Context, subject string, payload interface{}, fields ...interface{}) error {
	if err := p.publisher.PublishJSON(ctx, subject, payload); err != nil {
		p.logger.Error("Failed to publish event", append([]interface{}{"subject", subject, "error", err}, fields...)...)
		return err
	}

	p.logger.Debug("Published event", append([]interface{}{"subject", subject}, fields...)...)
	return nil
}
