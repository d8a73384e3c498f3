// Package notify fans ledger notifications out to observers after the ledger
// has committed. Delivery is asynchronous and at-least-once; a failing sink
// is logged and counted, never reported back to the ledger.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/card-issuance/internal/metrics"
	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
)

// Sink receives notifications.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n model.Notification) error
}

// Dispatcher queues notifications and delivers them to every sink from a
// single worker goroutine.
type Dispatcher struct {
	sinks        []Sink
	queue        chan model.Notification
	logger       *slog.Logger
	metrics      *metrics.Metrics
	drainTimeout time.Duration
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithDrainTimeout bounds how long Run keeps delivering queued notifications
// after its context is cancelled.
func WithDrainTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.drainTimeout = timeout
		}
	}
}

// NewDispatcher returns a dispatcher with a queue of the given size.
func NewDispatcher(buffer int, sinks []Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sinks:        sinks,
		queue:        make(chan model.Notification, max(buffer, 1)),
		logger:       slog.Default(),
		drainTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify enqueues notifications in order. While the queue has room it never
// drops anything, even if ctx is done. On a full queue it blocks until
// there is room or ctx is done.
func (d *Dispatcher) Notify(ctx context.Context, notes ...model.Notification) {
	for i, n := range notes {
		select {
		case d.queue <- n:
			continue
		default:
		}

		select {
		case d.queue <- n:
		case <-ctx.Done():
			d.logger.Warn("notifications dropped", "count", len(notes)-i, "error", ctx.Err())
			return
		}
	}
}

// Run delivers queued notifications until ctx is cancelled, then drains the
// queue.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil
		case n := <-d.queue:
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	for {
		select {
		case n := <-d.queue:
			d.deliver(ctx, n)
		default:
			return
		}
		if ctx.Err() != nil {
			d.logger.Warn("notification drain timed out", "remaining", len(d.queue))
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n model.Notification) {
	for _, sink := range d.sinks {
		err := sink.Deliver(ctx, n)
		d.metrics.ObserveDelivery(sink.Name(), err)
		if err != nil {
			d.logger.Error("notification delivery failed",
				"sink", sink.Name(),
				"notification_id", n.ID,
				"kind", n.Kind,
				"error", err,
			)
		}
	}
}
