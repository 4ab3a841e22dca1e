package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/flexprice/donorsync/internal/config"
	"github.com/flexprice/donorsync/internal/domain/events"
	"github.com/flexprice/donorsync/internal/logger"
	"github.com/flexprice/donorsync/internal/pubsub/memory"
	"github.com/flexprice/donorsync/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PublisherSuite struct {
	suite.Suite
	ctx context.Context
	cfg *config.Configuration
	log *logger.Logger
}

func TestPublisher(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = config.GetDefaultConfig()
	s.cfg.Events.Enabled = true
	s.log = logger.NewNopLogger()
}

func (s *PublisherSuite) TestPublishDeliversEventWithItsID() {
	ps := memory.NewPubSub(s.log)
	p := NewEventPublisher(ps, s.cfg, s.log)
	defer p.Close()

	messages, err := ps.Subscribe(s.ctx, s.cfg.Events.Topic)
	s.Require().NoError(err)

	event := &events.DonationEvent{
		ID:              "recurring_donation-0a1b2c3d4e5f6071",
		Type:            types.EventDonationRecorded,
		Kind:            types.DonationKindRecurring,
		ExternalOrderID: "R1",
		Amount:          decimal.NewNullDecimal(decimal.NewFromInt(100)),
		RequestID:       "req-1",
		OccurredAt:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(p.Publish(s.ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		s.Equal(event.ID, msg.UUID)
		s.Equal(string(types.EventDonationRecorded), msg.Metadata.Get("event_type"))
		s.Equal("req-1", msg.Metadata.Get("request_id"))

		var got events.DonationEvent
		s.Require().NoError(json.Unmarshal(msg.Payload, &got))
		s.Equal("R1", got.ExternalOrderID)
		s.True(got.Amount.Decimal.Equal(decimal.NewFromInt(100)))
	case <-time.After(2 * time.Second):
		s.Fail("event was not delivered")
	}
}

func (s *PublisherSuite) TestPublishDisabledIsNoop() {
	s.cfg.Events.Enabled = false
	ps := memory.NewPubSub(s.log)
	p := NewEventPublisher(ps, s.cfg, s.log)
	defer p.Close()

	messages, err := ps.Subscribe(s.ctx, s.cfg.Events.Topic)
	s.Require().NoError(err)

	s.Require().NoError(p.Publish(s.ctx, &events.DonationEvent{ID: "e1", Type: types.EventDonationDuplicate}))

	select {
	case <-messages:
		s.Fail("disabled publisher delivered an event")
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *PublisherSuite) TestNewPubSubDefaultsToMemory() {
	ps, err := NewPubSub(s.cfg, s.log)
	s.Require().NoError(err)
	s.IsType(&memory.PubSub{}, ps)
	s.NoError(ps.Close())
}
