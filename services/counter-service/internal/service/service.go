package service

import (
	"context"
	"time"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/models"
)

// EventPublisher is the subset of the JetStream publisher the services use.
// Publish failures are logged by the services and never fail a request.
type EventPublisher interface {
	PublishLeaderboardUpdated(ctx context.Context, entry *models.LeaderboardEntry) error
	PublishSignatureIssued(ctx context.Context, event commonevents.SignatureIssuedEvent) error
	PublishGiftBoxClaimed(ctx context.Context, claim *models.GiftBoxClaim, amount string) error
	PublishGameScoreSaved(ctx context.Context, event commonevents.GameScoreSavedEvent) error
	PublishWebhookReceived(ctx context.Context, event commonevents.MiniAppWebhookEvent) error
}

// Recorder receives domain metrics.
type Recorder interface {
	RecordCache(cache, result string)
	RecordRewardSigned(source, token string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCache(string, string)        {}
func (nopRecorder) RecordRewardSigned(string, string) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
