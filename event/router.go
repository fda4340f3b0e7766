package event

import (
	"sync/atomic"

	"github.com/lixenwraith/trophy/status"
)

// Handler consumes the event types it declares, receiving the frame context T
type Handler[T any] interface {
	HandleEvent(ctx T, ev GameEvent)
	EventTypes() []EventType
}

// RouterOption configures a Router
type RouterOption func(*routerConfig)

type routerConfig struct {
	metrics *status.Registry
}

// WithRouterMetrics publishes event.dispatched and event.unhandled counters
func WithRouterMetrics(reg *status.Registry) RouterOption {
	return func(c *routerConfig) { c.metrics = reg }
}

// Router drains a Queue once per frame and fans each event out to its handlers
// Dispatch is single-threaded; handlers for one type run in registration order
// Events pushed by a handler during dispatch wait for the next DispatchAll
type Router[T any] struct {
	queue    *Queue
	byType   map[EventType][]Handler[T]
	routed   *atomic.Int64
	orphaned *atomic.Int64
}

// NewRouter creates a router that drains queue
func NewRouter[T any](queue *Queue, opts ...RouterOption) *Router[T] {
	var cfg routerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.metrics == nil {
		cfg.metrics = status.NewRegistry()
	}
	return &Router[T]{
		queue:    queue,
		byType:   make(map[EventType][]Handler[T]),
		routed:   cfg.metrics.Ints.Get("event.dispatched"),
		orphaned: cfg.metrics.Ints.Get("event.unhandled"),
	}
}

// Register subscribes handler to every type it declares
func (r *Router[T]) Register(handler Handler[T]) {
	for _, t := range handler.EventTypes() {
		r.byType[t] = append(r.byType[t], handler)
	}
}

// DispatchAll routes every queued event and returns how many were consumed
func (r *Router[T]) DispatchAll(ctx T) int {
	events := r.queue.Consume()
	for _, ev := range events {
		handlers := r.byType[ev.Type]
		if len(handlers) == 0 {
			r.orphaned.Add(1)
			continue
		}
		for _, h := range handlers {
			h.HandleEvent(ctx, ev)
		}
		r.routed.Add(1)
	}
	return len(events)
}

// HandlerCount reports how many handlers subscribe to t
func (r *Router[T]) HandlerCount(t EventType) int {
	return len(r.byType[t])
}
