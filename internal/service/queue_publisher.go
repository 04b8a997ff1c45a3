// Package service holds adapters that connect the engine to external
// infrastructure.  EventPublisher delivers engine events to RabbitMQ.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/booking"
	"github.com/menfistoo/purobeach/internal/config"
	"github.com/menfistoo/purobeach/internal/queue"
)

// EventPublisher implements booking.Publisher over one long-lived AMQP
// channel.  The connection is opened lazily and reopened after any
// failure, so a broker outage only costs the events published during it.
type EventPublisher struct {
	cfg config.QueueConfig
	log *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewEventPublisher returns a publisher for cfg.Queue.  No connection is
// made until the first event.
func NewEventPublisher(cfg config.QueueConfig, log *zap.Logger) *EventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventPublisher{cfg: cfg, log: log.Named("event-publisher")}
}

// encode builds the persistent AMQP message for ev.
func encode(ev booking.Event, now time.Time) (amqp.Publishing, string, error) {
	env := queue.NewReservationEvent(ev)
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, "", fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         ev.Type,
		Timestamp:    now.UTC(),
		Body:         body,
	}, env.ID, nil
}

// Publish sends ev to the configured queue on the default exchange.
func (p *EventPublisher) Publish(ctx context.Context, ev booking.Event) error {
	msg, id, err := encode(ev, time.Now())
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Debug("event published",
		zap.String("event_id", id),
		zap.String("type", ev.Type),
		zap.Uint64("reservation_id", ev.ReservationID),
	)
	return nil
}

// channel returns the open channel, dialing and declaring the queue
// when needed.  Callers hold p.mu.
func (p *EventPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.log.Info("connected to broker", zap.String("queue", p.cfg.Queue))
	return ch, nil
}

func (p *EventPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

var _ booking.Publisher = (*EventPublisher)(nil)
