package status

import (
	"cmp"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// MetricMap is a named set of metric cells of type T
// Lookups take the mutex; callers cache the returned pointer and update it lock-free
type MetricMap[T any] struct {
	mu    sync.Mutex
	cells map[string]*T
}

// NewMetricMap creates an empty MetricMap
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{cells: make(map[string]*T)}
}

// Get returns the cell for key, allocating a zero cell on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	cell, ok := m.cells[key]
	if !ok {
		cell = new(T)
		m.cells[key] = cell
	}
	return cell
}

// Lookup returns the cell for key without creating it
func (m *MetricMap[T]) Lookup(key string) (*T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cell, ok := m.cells[key]
	return cell, ok
}

// Range calls fn for each cell in key order
// fn runs outside the lock and may call Get
func (m *MetricMap[T]) Range(fn func(key string, cell *T)) {
	m.mu.Lock()
	entries := lo.ToPairs(m.cells)
	m.mu.Unlock()

	slices.SortFunc(entries, func(a, b lo.Entry[string, *T]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	for _, e := range entries {
		fn(e.Key, e.Value)
	}
}

// Count returns the number of cells
func (m *MetricMap[T]) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cells)
}
