package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// fakeAck records settlement calls.
type fakeAck struct {
	acked       bool
	nacked      bool
	requeued    bool
	settlements int
}

func (f *fakeAck) Ack(_ bool) error {
	f.acked = true
	f.settlements++
	return nil
}

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	f.settlements++
	return nil
}

// stubProcessor returns a canned error.
type stubProcessor struct {
	err error
}

func (s *stubProcessor) Process(_ context.Context, _ string, _ []byte) error {
	return s.err
}

// mapDeduper is an in-memory Deduper.
type mapDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (m *mapDeduper) FirstSeen(_ context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

func newTestWorker(p deliveryProcessor, metrics *observability.Metrics) *TicketWorker {
	return &TicketWorker{processor: p, logger: zap.NewNop(), metrics: metrics}
}

func validBody() []byte {
	return []byte(`{"topic":"printer","description":"jammed","status":"new","owner":7}`)
}

func TestHandleAcksAfterSuccess(t *testing.T) {
	w := newTestWorker(&stubProcessor{}, observability.NewMetrics())
	ack := &fakeAck{}

	w.handle(context.Background(), "msg-1", validBody(), ack)

	if !ack.acked {
		t.Error("successful processing should ack")
	}
	if ack.nacked {
		t.Error("successful processing should not nack")
	}
	if ack.settlements != 1 {
		t.Errorf("settlements = %d, want 1", ack.settlements)
	}
}

func TestHandleDropsMalformedWithoutRequeue(t *testing.T) {
	metrics := observability.NewMetrics()
	w := newTestWorker(&stubProcessor{err: ErrMalformed}, metrics)
	ack := &fakeAck{}

	w.handle(context.Background(), "msg-2", []byte("{broken"), ack)

	if ack.acked {
		t.Error("malformed payload must not be acked")
	}
	if !ack.nacked || ack.requeued {
		t.Errorf("malformed payload must be nacked without requeue, nacked=%v requeued=%v", ack.nacked, ack.requeued)
	}
	if got := testutil.ToFloat64(metrics.EventsRejected); got != 1 {
		t.Errorf("rejected counter = %v, want 1", got)
	}
}

func TestHandleRequeuesTransientFailure(t *testing.T) {
	w := newTestWorker(&stubProcessor{err: errors.New("downstream timeout")}, observability.NewMetrics())
	ack := &fakeAck{}

	w.handle(context.Background(), "msg-3", validBody(), ack)

	if !ack.nacked || !ack.requeued {
		t.Errorf("transient failure must be nacked with requeue, nacked=%v requeued=%v", ack.nacked, ack.requeued)
	}
}

// fakeChannelAck implements amqp091.Acknowledger, recording settlements per
// delivery tag.
type fakeChannelAck struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (f *fakeChannelAck) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeChannelAck) Nack(tag uint64, _, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked = append(f.nacked, tag)
	return nil
}

func (f *fakeChannelAck) Reject(tag uint64, _ bool) error {
	return f.Nack(tag, false, false)
}

func (f *fakeChannelAck) settled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.acked) + len(f.nacked)
}

func TestConsumeDrainsInFlightOnShutdown(t *testing.T) {
	metrics := observability.NewMetrics()
	w := newTestWorker(NewProcessor(&mapDeduper{}, zap.NewNop(), metrics), metrics)
	broker := &fakeChannelAck{}

	// Two deliveries are already handed over when shutdown is requested.
	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- amqp.Delivery{Acknowledger: broker, DeliveryTag: 1, MessageId: "msg-1", Body: validBody()}
	deliveries <- amqp.Delivery{Acknowledger: broker, DeliveryTag: 2, MessageId: "msg-2", Body: validBody()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	intakeCancelled := false
	err := w.consume(ctx, deliveries, func() error {
		intakeCancelled = true
		close(deliveries)
		return nil
	})
	if err != nil {
		t.Fatalf("consume returned error: %v", err)
	}
	if !intakeCancelled {
		t.Error("shutdown must cancel intake at the broker")
	}
	if broker.settled() != 2 {
		t.Errorf("settled %d deliveries, want 2 (no message dropped mid-flight)", broker.settled())
	}
	if len(broker.acked) != 2 {
		t.Errorf("acked %d deliveries, want 2", len(broker.acked))
	}
	if got := testutil.ToFloat64(metrics.EventsConsumed); got != 2 {
		t.Errorf("consumed counter = %v, want 2", got)
	}
}

func TestConsumeStopsWhenBrokerClosesChannel(t *testing.T) {
	metrics := observability.NewMetrics()
	w := newTestWorker(NewProcessor(&mapDeduper{}, zap.NewNop(), metrics), metrics)

	deliveries := make(chan amqp.Delivery)
	close(deliveries)

	err := w.consume(context.Background(), deliveries, func() error { return nil })
	if err == nil {
		t.Fatal("a broker-side channel close should surface as an error")
	}
}

func TestProcessorRecordsEvent(t *testing.T) {
	metrics := observability.NewMetrics()
	p := NewProcessor(&mapDeduper{}, zap.NewNop(), metrics)

	if err := p.Process(context.Background(), "msg-1", validBody()); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if got := testutil.ToFloat64(metrics.EventsConsumed); got != 1 {
		t.Errorf("consumed counter = %v, want 1", got)
	}
}

func TestProcessorMalformedIsPermanent(t *testing.T) {
	p := NewProcessor(&mapDeduper{}, zap.NewNop(), observability.NewMetrics())

	err := p.Process(context.Background(), "msg-1", []byte("{broken"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}

	err = p.Process(context.Background(), "msg-2", []byte(`{"topic":"x","description":"y","status":"archived","owner":1}`))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("out-of-set status: error = %v, want ErrMalformed", err)
	}
}

func TestProcessorToleratesRedelivery(t *testing.T) {
	metrics := observability.NewMetrics()
	p := NewProcessor(&mapDeduper{}, zap.NewNop(), metrics)

	// Redelivery after a crash before ack: same message id arrives twice.
	for i := 0; i < 2; i++ {
		if err := p.Process(context.Background(), "msg-1", validBody()); err != nil {
			t.Fatalf("Process #%d returned error: %v", i+1, err)
		}
	}

	if got := testutil.ToFloat64(metrics.EventsConsumed); got != 1 {
		t.Errorf("consumed counter = %v, want 1 (duplicate must not re-run side effects)", got)
	}
	if got := testutil.ToFloat64(metrics.EventsDuplicate); got != 1 {
		t.Errorf("duplicate counter = %v, want 1", got)
	}
}

func TestProcessorContinuesWhenDedupUnavailable(t *testing.T) {
	metrics := observability.NewMetrics()
	p := NewProcessor(&mapDeduper{err: errors.New("redis down")}, zap.NewNop(), metrics)

	if err := p.Process(context.Background(), "msg-1", validBody()); err != nil {
		t.Fatalf("Process should tolerate a dedup outage: %v", err)
	}
	if got := testutil.ToFloat64(metrics.EventsConsumed); got != 1 {
		t.Errorf("consumed counter = %v, want 1", got)
	}
}
