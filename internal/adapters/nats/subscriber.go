package natsadapter

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/findmypet/internal/core/domain"
	"github.com/samirrijal/findmypet/internal/pkg/logging"
	"github.com/samirrijal/findmypet/internal/pkg/metrics"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribePetEvents delivers events on subject to handler through a
// durable consumer. Undecodable messages are terminated; handler errors
// are redelivered up to three times.
func (s *Subscriber) SubscribePetEvents(ctx context.Context, durable, subject string, handler func(ctx context.Context, event *domain.PetEvent) error) error {
	log := logging.FromContext(ctx).With("consumer", durable)

	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		event, err := DecodePetEvent(msg.Data)
		if err != nil {
			log.Warn("dropping undecodable pet event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, event); err != nil {
			log.Warn("pet event handler failed", "event_id", event.ID, "error", err)
			_ = msg.Nak()
			return
		}
		metrics.PetEventsConsumed.WithLabelValues(string(event.Type), durable).Inc()
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
