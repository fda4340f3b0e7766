package persistence

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/trophy/core"
	"github.com/lixenwraith/trophy/status"
)

// Writer is the single persistence goroutine
//
// Submit stores the snapshot as "latest" with a new version and wakes the loop.
// The loop always writes the latest snapshot, so bursts coalesce and an older
// snapshot is never written after a newer one. Failed writes are logged and not
// retried; the next submission rewrites the whole record anyway.
type Writer struct {
	store  Store
	logger *zap.Logger

	writeMu sync.Mutex // Serializes Save calls, including inline writes after Stop

	mu      sync.Mutex
	latest  []string
	version uint64 // Last submitted
	written uint64 // Last attempted

	wake     chan struct{}
	flushReq chan chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
	stopped  atomic.Bool

	statWrites    *atomic.Int64
	statFailures  *atomic.Int64
	statCoalesced *atomic.Int64
	statLatency   *status.AtomicFloat
	statWorst     *status.AtomicFloat
}

// NewWriter creates a writer over store; logger and metrics may be nil
func NewWriter(store Store, logger *zap.Logger, metrics *status.Registry) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = status.NewRegistry()
	}
	return &Writer{
		store:         store,
		logger:        logger,
		wake:          make(chan struct{}, 1),
		flushReq:      make(chan chan struct{}),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		statWrites:    metrics.Ints.Get("persist.writes"),
		statFailures:  metrics.Ints.Get("persist.failures"),
		statCoalesced: metrics.Ints.Get("persist.coalesced"),
		statLatency:   metrics.Floats.Get("persist.last_write_ms"),
		statWorst:     metrics.Floats.Get("persist.max_write_ms"),
	}
}

// Name implements service.Service
func (w *Writer) Name() string {
	return "persistence"
}

// Dependencies implements service.Service
func (w *Writer) Dependencies() []string {
	return nil
}

// Init implements service.Service
func (w *Writer) Init(args ...any) error {
	return nil
}

// Start implements service.Service, launching the write loop
func (w *Writer) Start() error {
	if w.stopped.Load() {
		return nil
	}
	if w.running.CompareAndSwap(false, true) {
		core.Go(w.loop)
		// Pick up snapshots submitted before Start
		w.signal()
	}
	return nil
}

// Stop implements service.Service
// Writes the latest pending snapshot before returning; idempotent
func (w *Writer) Stop() error {
	w.stopOnce.Do(func() {
		w.stopped.Store(true)
		if w.running.Load() {
			close(w.stop)
			<-w.done
			return
		}
		w.writeLatest()
	})
	return nil
}

// Submit queues names as the newest snapshot without blocking on I/O
// After Stop, the snapshot is written inline
func (w *Writer) Submit(names []string) {
	w.mu.Lock()
	if w.version > w.written {
		w.statCoalesced.Add(1)
	}
	w.latest = names
	w.version++
	w.mu.Unlock()

	if w.stopped.Load() {
		w.writeLatest()
		return
	}
	w.signal()
}

// Flush blocks until every snapshot submitted before the call has been attempted
func (w *Writer) Flush(ctx context.Context) error {
	if !w.running.Load() || w.stopped.Load() {
		w.writeLatest()
		return nil
	}

	reply := make(chan struct{})
	select {
	case w.flushReq <- reply:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether a submitted snapshot has not been attempted yet
func (w *Writer) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version > w.written
}

func (w *Writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.writeLatest()
		case reply := <-w.flushReq:
			w.writeLatest()
			close(reply)
		case <-w.stop:
			w.writeLatest()
			return
		}
	}
}

// writeLatest saves the newest snapshot if it has not been attempted
func (w *Writer) writeLatest() {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if w.version == w.written {
		w.mu.Unlock()
		return
	}
	names, version := w.latest, w.version
	w.mu.Unlock()

	start := time.Now()
	err := w.store.Save(context.Background(), names)
	ms := float64(time.Since(start).Microseconds()) / 1000
	w.statLatency.Set(ms)
	w.statWorst.Max(ms)

	w.mu.Lock()
	w.written = version
	w.mu.Unlock()

	if err != nil {
		w.statFailures.Add(1)
		w.logger.Error("failed to save achievements",
			zap.Error(err),
			zap.Int("names", len(names)),
			zap.Uint64("version", version),
		)
		return
	}
	w.statWrites.Add(1)
	w.logger.Debug("achievements saved", zap.Int("names", len(names)), zap.Uint64("version", version))
}
