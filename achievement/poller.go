package achievement

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/trophy/status"
)

// PollerOption configures a Poller
type PollerOption func(*Poller)

// WithPollerLogger sets the logger; nil keeps the registry's logger
func WithPollerLogger(l *zap.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the wall clock stamped on unlocks
func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) { p.now = now }
}

// Poller advances the achievement state machine once per frame
// Must run on the same goroutine that mutates the Registry
type Poller struct {
	reg      *Registry
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	frame    atomic.Int64 // Read by input goroutines stamping events
	panicked map[string]bool // Names already logged for a panicking condition

	statUnlocks *atomic.Int64
	statPanics  *atomic.Int64
	statFrames  *atomic.Int64
	statLast    *status.AtomicString
}

// NewPoller creates a poller over reg delivering unlocks to notifier (may be nil)
// The notifier runs mid-scan and must not mutate reg
func NewPoller(reg *Registry, notifier Notifier, opts ...PollerOption) *Poller {
	p := &Poller{
		reg:      reg,
		notifier: notifier,
		logger:   reg.logger,
		now:      time.Now,
		panicked: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}

	m := reg.Metrics()
	p.statUnlocks = m.Ints.Get("achievement.unlocks")
	p.statPanics = m.Ints.Get("achievement.condition_panics")
	p.statFrames = m.Ints.Get("achievement.frames")
	p.statLast = m.Strings.Get("achievement.last")
	return p
}

// Frame returns the number of completed polls; safe from any goroutine
func (p *Poller) Frame() int64 {
	return p.frame.Load()
}

// Poll evaluates every pending condition once and returns the unlocks of this frame
// Never blocks on I/O: persistence is handed to the registry's saver
func (p *Poller) Poll() []Unlock {
	frame := p.frame.Add(1)
	p.statFrames.Store(frame)

	r := p.reg
	if len(r.pending) == 0 {
		return nil
	}

	var (
		unlocks []Unlock
		remove  []int
	)

	for i, def := range r.pending {
		if !p.evaluate(def) {
			continue
		}
		remove = append(remove, i)

		// Registered before Load restored it; drop without notifying
		if r.WasTriggered(def.Name) {
			continue
		}

		u := Unlock{Definition: def, Frame: frame, At: p.now()}
		p.logger.Info("achievement unlocked",
			zap.String("achievement", def.Name),
			zap.Int64("frame", frame),
		)
		r.markAchieved(def.Name)
		if p.notifier != nil {
			p.notifier.Notify(u)
		}
		unlocks = append(unlocks, u)
	}

	if len(remove) == 0 {
		return nil
	}

	// Compact in place, preserving relative order of survivors
	kept := r.pending[:0]
	next := 0
	for i, def := range r.pending {
		if next < len(remove) && remove[next] == i {
			next++
			continue
		}
		kept = append(kept, def)
	}
	clear(r.pending[len(kept):])
	r.pending = kept
	r.publish()

	if len(unlocks) > 0 {
		p.statUnlocks.Add(int64(len(unlocks)))
		p.statLast.Store(unlocks[len(unlocks)-1].Definition.Name)
		r.requestSave()
	}
	return unlocks
}

// evaluate runs a condition inside a recover boundary; only true counts
func (p *Poller) evaluate(def Definition) (satisfied bool) {
	defer func() {
		if rec := recover(); rec != nil {
			satisfied = false
			p.statPanics.Add(1)
			if !p.panicked[def.Name] {
				p.panicked[def.Name] = true
				p.logger.Warn("achievement condition panicked",
					zap.String("achievement", def.Name),
					zap.Any("panic", rec),
				)
			}
		}
	}()
	return def.Condition()
}
