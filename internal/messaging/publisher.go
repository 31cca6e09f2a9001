package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// Publisher announces persisted tickets on the broker. The channel runs in
// confirm mode: PublishTicketCreated does not return success until the broker
// has acknowledged receipt, so a nil error means the message is on the queue.
// The publisher performs no retries; retry policy belongs to the caller.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

// NewPublisher dials the broker, opens a confirm-mode channel and declares
// the topology.
func NewPublisher(cfg config.RabbitMQConfig, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	if err := DeclareTopology(ch); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}

	logger.Info("connected to rabbitmq",
		zap.String("exchange", events.TicketsExchange),
		zap.String("routing_key", events.TicketCreatedKey))
	return &Publisher{conn: conn, ch: ch, logger: logger}, nil
}

// PublishTicketCreated serializes the event and publishes it with the
// persistent delivery flag, blocking until the broker confirms receipt or the
// context is cancelled.
func (p *Publisher) PublishTicketCreated(ctx context.Context, event events.TicketEvent) error {
	body, err := event.Encode()
	if err != nil {
		return err
	}

	confirmation, err := p.ch.PublishWithDeferredConfirmWithContext(ctx,
		events.TicketsExchange,
		events.TicketCreatedKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish ticket event: %w", err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await publish confirm: %w", err)
	}
	if !acked {
		return fmt.Errorf("broker rejected ticket event")
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
