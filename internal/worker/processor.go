package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// ErrMalformed marks a payload that can never become valid on redelivery.
// The worker drops such messages without requeueing.
var ErrMalformed = errors.New("malformed ticket event")

// Deduper guards against reprocessing redelivered events. FirstSeen reports
// whether the message id has not been processed before, recording it as seen.
type Deduper interface {
	FirstSeen(ctx context.Context, messageID string) (bool, error)
}

const dedupKeyPrefix = "ticket_event:"

// RedisDeduper tracks processed message ids with SETNX and a TTL.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper constructs the guard.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// FirstSeen records the message id; false means it was already processed.
func (d *RedisDeduper) FirstSeen(ctx context.Context, messageID string) (bool, error) {
	return d.client.SetNX(ctx, dedupKeyPrefix+messageID, 1, d.ttl).Result()
}

// Processor handles one delivered ticket event: decode, dedup, record.
// Processing is idempotent: a redelivered message is acknowledged without
// repeating its side effects.
type Processor struct {
	dedup   Deduper
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewProcessor constructs the processor.
func NewProcessor(dedup Deduper, logger *zap.Logger, metrics *observability.Metrics) *Processor {
	return &Processor{dedup: dedup, logger: logger, metrics: metrics}
}

// Process decodes and records a delivery. A decode failure wraps ErrMalformed;
// any other error is transient and the delivery may be redelivered.
func (p *Processor) Process(ctx context.Context, messageID string, body []byte) error {
	event, err := events.DecodeTicketEvent(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if messageID != "" && p.dedup != nil {
		first, err := p.dedup.FirstSeen(ctx, messageID)
		if err != nil {
			// Dedup store unreachable: process anyway rather than stall the
			// queue; at-least-once already requires duplicate tolerance.
			p.logger.Warn("dedup check failed, processing without guard",
				zap.String("message_id", messageID), zap.Error(err))
		} else if !first {
			p.metrics.EventsDuplicate.Inc()
			p.logger.Info("skipping redelivered ticket event",
				zap.String("message_id", messageID))
			return nil
		}
	}

	p.logger.Info("ticket event received",
		zap.String("message_id", messageID),
		zap.String("topic", event.Topic),
		zap.String("status", string(event.Status)),
		zap.Int64("owner", event.Owner))
	p.metrics.EventsConsumed.Inc()
	return nil
}
