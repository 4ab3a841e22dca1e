package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/domain/events"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/pubsub"
	"github.com/flexprice/donorsync/internal/pubsub/kafka"
	"github.com/flexprice/donorsync/internal/pubsub/memory"
	"github.com/flexprice/donorsync/internal/types"
)

// EventPublisher publishes reconciliation outcome events
type EventPublisher interface {
	Publish(ctx context.Context, event *events.DonationEvent) error
	Close() error
}

type eventPublisher struct {
	pubSub pubsub.PubSub
	config *config.EventsConfig
	logger *logger.Logger
}

// NewEventPublisher creates a publisher on top of the given pubsub
func NewEventPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) EventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		config: &cfg.Events,
		logger: logger,
	}
}

// NewPubSub selects the configured transport
func NewPubSub(cfg *config.Configuration, logger *logger.Logger) (pubsub.PubSub, error) {
	if cfg.Events.PubSub == types.KafkaPubSub {
		return kafka.NewPubSub(cfg, logger)
	}
	return memory.NewPubSub(logger), nil
}

func (p *eventPublisher) Publish(ctx context.Context, event *events.DonationEvent) error {
	if !p.config.Enabled {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	messageID := event.ID
	if messageID == "" {
		messageID = watermill.NewUUID()
	}

	msg := message.NewMessage(messageID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("request_id", event.RequestID)

	p.logger.Debugw("publishing donation event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.config.Topic,
	)

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		p.logger.Errorw("failed to publish donation event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
		)
		return err
	}

	return nil
}

func (p *eventPublisher) Close() error {
	return p.pubSub.Close()
}
