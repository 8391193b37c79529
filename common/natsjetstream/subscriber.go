package natsjetstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

type Subscriber struct {
	client *Client
}

type MessageHandler func(ctx context.Context, msg jetstream.Msg) error

func NewSubscriber(client *Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe starts consuming and returns the handle that stops it.
func (s *Subscriber) Subscribe(ctx context.Context, cfg ConsumerConfig, handler MessageHandler) (jetstream.ConsumeContext, error) {
	consumerConfig := jetstream.ConsumerConfig{
		Name:           cfg.ConsumerName,
		Durable:        cfg.Durable,
		FilterSubjects: cfg.FilterSubjects,
		AckWait:        cfg.AckWait,
		MaxDeliver:     cfg.MaxDeliver,
		MaxAckPending:  cfg.MaxAckPending,
	}

	switch cfg.AckPolicy {
	case "explicit":
		consumerConfig.AckPolicy = jetstream.AckExplicitPolicy
	case "none":
		consumerConfig.AckPolicy = jetstream.AckNonePolicy
	case "all":
		consumerConfig.AckPolicy = jetstream.AckAllPolicy
	default:
		consumerConfig.AckPolicy = jetstream.AckExplicitPolicy
	}

	if cfg.Durable == "" {
		consumerConfig.Name = ""
		consumerConfig.DeliverPolicy = jetstream.DeliverNewPolicy
	}

	var (
		consumer jetstream.Consumer
		err      error
	)
	if cfg.Durable == "" {
		consumer, err = s.client.js.CreateConsumer(ctx, cfg.StreamName, consumerConfig)
	} else {
		consumer, err = s.client.js.CreateOrUpdateConsumer(ctx, cfg.StreamName, consumerConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	log := s.client.logger.With("stream", cfg.StreamName, "consumer", cfg.ConsumerName)
	manualAck := consumerConfig.AckPolicy != jetstream.AckNonePolicy

	return consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(ctx, msg); err != nil {
			log.Error("Error handling message", "subject", msg.Subject(), "error", err)
			if manualAck {
				_ = msg.Nak()
			}
			return
		}
		if manualAck {
			_ = msg.Ack()
		}
	})
}

func UnmarshalJSON(msg jetstream.Msg, dest interface{}) error {
	return json.Unmarshal(msg.Data(), dest)
}
