package worker

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/messaging"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

const consumerTag = "helpdesk-ticket-worker"

// deliveryProcessor handles one delivery payload.
type deliveryProcessor interface {
	Process(ctx context.Context, messageID string, body []byte) error
}

// acknowledger is the slice of amqp.Delivery the worker needs to settle a
// message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// TicketWorker drains the tickets queue with manual acknowledgment and a
// prefetch bound. It owns its broker connection for its whole lifetime.
type TicketWorker struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	processor deliveryProcessor
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewTicketWorker dials the broker, declares the topology (defensive, in case
// the worker starts before any publisher) and applies the prefetch bound.
func NewTicketWorker(cfg config.RabbitMQConfig, processor *Processor, logger *zap.Logger, metrics *observability.Metrics) (*TicketWorker, error) {
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := messaging.DeclareTopology(ch); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}

	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set prefetch: %w", err)
	}

	logger.Info("ticket worker connected",
		zap.String("queue", events.TicketsQueue),
		zap.Int("prefetch", cfg.Prefetch))
	return &TicketWorker{conn: conn, ch: ch, processor: processor, logger: logger, metrics: metrics}, nil
}

// Run consumes deliveries until ctx is cancelled. On shutdown it stops
// intake, finishes the deliveries already handed over by the broker and
// returns; no message is dropped mid-flight.
func (w *TicketWorker) Run(ctx context.Context) error {
	deliveries, err := w.ch.Consume(
		events.TicketsQueue,
		consumerTag,
		false, // auto-ack off: ack only after successful processing
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	return w.consume(ctx, deliveries, func() error {
		return w.ch.Cancel(consumerTag, false)
	})
}

// consume is the receive loop. cancelIntake tells the broker to stop
// delivering; the broker closes the delivery channel once the cancel is
// confirmed, so the drain loop terminates after the in-flight messages.
func (w *TicketWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery, cancelIntake func() error) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutdown requested, stopping intake")
			if err := cancelIntake(); err != nil {
				w.logger.Warn("cancel consumer", zap.Error(err))
			}
			// Deliveries already handed over are in flight; finish them.
			for d := range deliveries {
				w.handle(context.WithoutCancel(ctx), d.MessageId, d.Body, d)
			}
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			w.handle(context.WithoutCancel(ctx), d.MessageId, d.Body, d)
		}
	}
}

func (w *TicketWorker) handle(ctx context.Context, messageID string, body []byte, ack acknowledger) {
	err := w.processor.Process(ctx, messageID, body)
	switch {
	case err == nil:
		if err := ack.Ack(false); err != nil {
			w.logger.Error("ack failed", zap.String("message_id", messageID), zap.Error(err))
		}
	case errors.Is(err, ErrMalformed):
		// Permanent failure: requeueing would spin forever, drop instead.
		w.metrics.EventsRejected.Inc()
		w.logger.Error("dropping malformed ticket event",
			zap.String("message_id", messageID), zap.Error(err))
		if err := ack.Nack(false, false); err != nil {
			w.logger.Error("nack failed", zap.String("message_id", messageID), zap.Error(err))
		}
	default:
		w.logger.Warn("transient processing failure, requeueing",
			zap.String("message_id", messageID), zap.Error(err))
		if err := ack.Nack(false, true); err != nil {
			w.logger.Error("nack failed", zap.String("message_id", messageID), zap.Error(err))
		}
	}
}

// Close releases the channel and connection after Run has returned.
func (w *TicketWorker) Close() {
	if w == nil {
		return
	}
	if w.ch != nil {
		_ = w.ch.Close()
	}
	if w.conn != nil {
		_ = w.conn.Close()
	}
}
