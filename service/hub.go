package service

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	ErrDuplicate         = errors.New("service already registered")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrCycle             = errors.New("circular dependency")
)

// Hub owns service instances and drives them in dependency order
type Hub struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	services map[string]Service
	order    []string // Resolved lazily, reset on Register
	running  []string // Started services, stopped in reverse
}

// NewHub creates an empty hub; logger may be nil
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:   logger,
		services: make(map[string]Service),
	}
}

// Register adds a service instance under its Name
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, ok := h.services[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	h.services[name] = svc
	h.order = nil
	return nil
}

// Get looks up a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet returns the named service as T, panicking when it is absent or of another type
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic(fmt.Sprintf("service not found: %s", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s: type mismatch, got %T", name, svc))
	}
	return typed
}

// Order returns the dependency-resolved start order
func (h *Hub) Order() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.resolve(); err != nil {
		return nil, err
	}
	return slices.Clone(h.order), nil
}

// InitAll calls Init(args...) on every service in order
// A failure stops the services initialized so far, newest first
func (h *Hub) InitAll(args ...any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.step("init", func(svc Service) error { return svc.Init(args...) })
	return err
}

// StartAll calls Start on every service in order
// A failure stops the services started so far, newest first
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	done, err := h.step("start", Service.Start)
	if err != nil {
		h.running = nil
		return err
	}
	h.running = done
	return nil
}

// StopAll stops running services in reverse start order and joins their errors
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, name := range lo.Reverse(h.running) {
		if err := h.services[name].Stop(); err != nil {
			h.logger.Error("service stop failed", zap.String("service", name), zap.Error(err))
			errs = append(errs, fmt.Errorf("service %s stop failed: %w", name, err))
		}
	}
	h.running = nil
	return errors.Join(errs...)
}

// Names returns all registered service names, sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := lo.Keys(h.services)
	slices.Sort(names)
	return names
}

// step runs fn over the resolved order, rolling back on the first error
// Returns the names fn succeeded on
func (h *Hub) step(phase string, fn func(Service) error) ([]string, error) {
	if err := h.resolve(); err != nil {
		return nil, err
	}

	done := make([]string, 0, len(h.order))
	for _, name := range h.order {
		began := time.Now()
		if err := fn(h.services[name]); err != nil {
			h.rollback(done)
			return nil, fmt.Errorf("service %s %s failed: %w", name, phase, err)
		}
		done = append(done, name)
		h.logger.Debug("service "+phase,
			zap.String("service", name),
			zap.Duration("took", time.Since(began)),
		)
	}
	return done, nil
}

func (h *Hub) rollback(names []string) {
	for _, name := range lo.Reverse(slices.Clone(names)) {
		if err := h.services[name].Stop(); err != nil {
			h.logger.Warn("service rollback stop failed", zap.String("service", name), zap.Error(err))
		}
	}
}

func (h *Hub) resolve() error {
	if h.order != nil {
		return nil
	}
	order, err := h.sortByDependencies()
	if err != nil {
		return err
	}
	h.order = order
	return nil
}

// sortByDependencies is Kahn's algorithm with ties broken by name
func (h *Hub) sortByDependencies() ([]string, error) {
	waiting := make(map[string]int, len(h.services))
	dependents := make(map[string][]string)

	for name := range h.services {
		waiting[name] = 0
	}
	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			if _, ok := h.services[dep]; !ok {
				return nil, fmt.Errorf("%w: service %s depends on unregistered service: %s", ErrUnknownDependency, name, dep)
			}
			waiting[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	ready := lo.Filter(lo.Keys(waiting), func(name string, _ int) bool { return waiting[name] == 0 })
	order := make([]string, 0, len(h.services))
	for len(ready) > 0 {
		slices.Sort(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		for _, d := range dependents[name] {
			if waiting[d]--; waiting[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != len(h.services) {
		stuck := lo.Filter(lo.Keys(waiting), func(name string, _ int) bool { return waiting[name] > 0 })
		slices.Sort(stuck)
		return nil, fmt.Errorf("%w among %v", ErrCycle, stuck)
	}
	return order, nil
}
