package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/natsjetstream"
)

// WebhookHandler applies a mini-app webhook event.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, event commonevents.MiniAppWebhookEvent) error
}

// FeedBroadcaster pushes raw event payloads to live clients.
type FeedBroadcaster interface {
	Broadcast(subject string, payload []byte) error
}

type EventSubscriber struct {
	subscriber *natsjetstream.Subscriber
	webhooks   WebhookHandler
	feed       FeedBroadcaster
	consumers  []jetstream.ConsumeContext
	logger     *logger.Logger
}

func NewEventSubscriber(
	natsClient *natsjetstream.Client,
	webhooks WebhookHandler,
	feed FeedBroadcaster,
	logger *logger.Logger,
) *EventSubscriber {
	return &EventSubscriber{
		subscriber: natsjetstream.NewSubscriber(natsClient),
		webhooks:   webhooks,
		feed:       feed,
		logger:     logger.With("component", "event-subscriber"),
	}
}

func (s *EventSubscriber) Start(ctx context.Context) error {
	s.logger.Info("Starting event subscriptions")

	if err := s.subscribeToWebhookEvents(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to webhook events: %w", err)
	}

	if s.feed != nil {
		if err := s.subscribeToFeedEvents(ctx); err != nil {
			return fmt.Errorf("failed to subscribe to feed events: %w", err)
		}
	}

	s.logger.Info("All event subscriptions started")
	return nil
}

func (s *EventSubscriber) Stop() {
	for _, consumer := range s.consumers {
		consumer.Stop()
	}
	s.consumers = nil
}

func (s *EventSubscriber) subscribeToWebhookEvents(ctx context.Context) error {
	cfg := natsjetstream.ConsumerConfig{
		StreamName:     commonevents.NotificationEventsStream,
		ConsumerName:   "counter-service-webhook-consumer",
		Durable:        "counter-service-webhook-consumer",
		FilterSubjects: []string{commonevents.MiniAppWebhookReceived},
		AckPolicy:      "explicit",
		MaxDeliver:     5,
	}

	s.logger.Info("Subscribing to webhook events",
		"stream", cfg.StreamName,
		"consumer", cfg.ConsumerName,
	)

	consumer, err := s.subscriber.Subscribe(ctx, cfg, s.handleWebhookEvent)
	if err != nil {
		return err
	}
	s.consumers = append(s.consumers, consumer)
	return nil
}

func (s *EventSubscriber) handleWebhookEvent(ctx context.Context, msg jetstream.Msg) error {
	var event commonevents.MiniAppWebhookEvent
	if err := natsjetstream.UnmarshalJSON(msg, &event); err != nil {
		// malformed payloads are acked and dropped
		s.logger.Error("Dropping undecodable webhook event", "error", err)
		return nil
	}

	return s.webhooks.HandleWebhook(ctx, event)
}

// subscribeToFeedEvents uses an ephemeral consumer so every instance sees
// every event from the moment it starts.
func (s *EventSubscriber) subscribeToFeedEvents(ctx context.Context) error {
	cfg := natsjetstream.ConsumerConfig{
		StreamName:   commonevents.CounterEventsStream,
		ConsumerName: "counter-service-feed",
		FilterSubjects: []string{
			commonevents.LeaderboardEventsWildcard,
			commonevents.CounterEventsWildcard,
		},
		AckPolicy: "none",
	}

	s.logger.Info("Subscribing to feed events",
		"stream", cfg.StreamName,
		"subjects", cfg.FilterSubjects,
	)

	consumer, err := s.subscriber.Subscribe(ctx, cfg, s.handleFeedEvent)
	if err != nil {
		return err
	}
	s.consumers = append(s.consumers, consumer)
	return nil
}

func (s *EventSubscriber) handleFeedEvent(_ context.Context, msg jetstream.Msg) error {
	if err := s.feed.Broadcast(msg.Subject(), msg.Data()); err != nil {
		s.logger.Warn("Failed to broadcast feed event", "subject", msg.Subject(), "error", err)
	}
	return nil
}
