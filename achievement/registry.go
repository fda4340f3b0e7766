// Package achievement holds the achievement registry and the per-frame poller
//
// A Registry owns the ordered pending definitions and the set of names already
// achieved. The Poller runs on the host frame hook, evaluates pending conditions
// and hands newly unlocked definitions to a Notifier. Neither type is safe for
// concurrent use; both are meant to live on the frame goroutine. Persistence goes
// through a Store for synchronous load/save and a Saver for off-frame writes.
package achievement

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lixenwraith/trophy/status"
)

// Store reads and overwrites the durable list of achieved names
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, names []string) error
}

// Saver accepts snapshots for asynchronous persistence
// Submit must not block on I/O; the snapshot is owned by the Saver afterwards
type Saver interface {
	Submit(names []string)
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithSaver routes save requests to an asynchronous writer
// Without one, requests are saved synchronously through the Store
func WithSaver(s Saver) RegistryOption {
	return func(r *Registry) { r.saver = s }
}

// WithLogger sets the logger; nil keeps the no-op logger
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics publishes pending/achieved gauges into reg
func WithMetrics(reg *status.Registry) RegistryOption {
	return func(r *Registry) { r.metrics = reg }
}

// Registry holds pending definitions and achieved names
type Registry struct {
	store  Store
	saver  Saver
	logger *zap.Logger

	pending  []Definition
	achieved []string            // Insertion order, persisted as-is
	index    map[string]struct{} // Membership for achieved

	metrics     *status.Registry
	statPending *atomic.Int64
	statDone    *atomic.Int64
}

// NewRegistry creates an empty registry backed by store
// Call Load before polling so previously achieved names are honored
func NewRegistry(store Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:  store,
		logger: zap.NewNop(),
		index:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = status.NewRegistry()
	}
	r.statPending = r.metrics.Ints.Get("achievement.pending")
	r.statDone = r.metrics.Ints.Get("achievement.achieved")
	return r
}

// Metrics returns the status registry gauges are published to
func (r *Registry) Metrics() *status.Registry {
	return r.metrics
}

// Load replaces the achieved set with the persisted record
// An unreadable record is logged, treated as empty, and rewritten
func (r *Registry) Load(ctx context.Context) error {
	names, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warn("achievement record unreadable, starting empty", zap.Error(err))
		names = nil
		if serr := r.store.Save(ctx, nil); serr != nil {
			r.logger.Error("failed to recreate achievement record", zap.Error(serr))
			return fmt.Errorf("recreate achievement record: %w", serr)
		}
	}

	r.achieved = r.achieved[:0]
	clear(r.index)
	for _, name := range names {
		r.markAchieved(name)
	}
	r.publish()
	r.logger.Debug("achievement record loaded", zap.Int("achieved", len(r.achieved)))
	return nil
}

// Save synchronously overwrites the record with the current achieved set
func (r *Registry) Save(ctx context.Context) error {
	if err := r.store.Save(ctx, r.Achieved()); err != nil {
		return fmt.Errorf("save achievements: %w", err)
	}
	return nil
}

// Register validates def and appends it to the pending set
// A name that was already achieved is ignored; a name already pending is rejected
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if r.WasTriggered(def.Name) {
		r.logger.Debug("ignoring registration of achieved name", zap.String("achievement", def.Name))
		return nil
	}
	if _, ok := r.pendingIndex(def.Name); ok {
		return &DuplicateError{Name: def.Name}
	}

	r.pending = append(r.pending, def)
	r.publish()
	return nil
}

// Achievement is the decorator form of Register: metadata first, condition later
//
//	err := reg.Achievement("Bubbles.", achievement.WithIcon("bubbles.png"))(func() bool { return popped })
func (r *Registry) Achievement(name string, opts ...Option) func(Condition) error {
	return func(cond Condition) error {
		return r.Register(New(name, cond, opts...))
	}
}

// Delete removes name from the pending set, or failing that from the achieved set
// Returns whether the removed entry had already been achieved
func (r *Registry) Delete(name string) (bool, error) {
	if i, ok := r.pendingIndex(name); ok {
		r.pending = slices.Delete(r.pending, i, i+1)
		r.publish()
		return false, nil
	}

	if _, ok := r.index[name]; ok {
		delete(r.index, name)
		r.achieved = slices.DeleteFunc(r.achieved, func(n string) bool { return n == name })
		r.publish()
		r.requestSave()
		return true, nil
	}

	return false, &NotFoundError{Name: name}
}

// WasTriggered reports whether name is in the achieved set
func (r *Registry) WasTriggered(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Lookup returns the pending definition for name
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.pendingIndex(name)
	if !ok {
		return Definition{}, false
	}
	return r.pending[i], true
}

// Pending returns a copy of the pending definitions in registration order
func (r *Registry) Pending() []Definition {
	return slices.Clone(r.pending)
}

// PendingNames returns pending names in registration order
func (r *Registry) PendingNames() []string {
	return lo.Map(r.pending, func(d Definition, _ int) string { return d.Name })
}

// Achieved returns a copy of the achieved names in unlock order
func (r *Registry) Achieved() []string {
	return slices.Clone(r.achieved)
}

func (r *Registry) pendingIndex(name string) (int, bool) {
	_, i, ok := lo.FindIndexOf(r.pending, func(d Definition) bool { return d.Name == name })
	return i, ok
}

func (r *Registry) markAchieved(name string) {
	if _, ok := r.index[name]; ok {
		return
	}
	r.index[name] = struct{}{}
	r.achieved = append(r.achieved, name)
}

// requestSave hands a snapshot to the saver, or saves inline when none is configured
func (r *Registry) requestSave() {
	snapshot := r.Achieved()
	if r.saver != nil {
		r.saver.Submit(snapshot)
		return
	}
	if err := r.store.Save(context.Background(), snapshot); err != nil {
		r.logger.Error("failed to save achievements", zap.Error(err))
	}
}

func (r *Registry) publish() {
	r.statPending.Store(int64(len(r.pending)))
	r.statDone.Store(int64(len(r.achieved)))
}
