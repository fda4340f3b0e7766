package status

import (
	"cmp"
	"slices"
	"strconv"
	"sync/atomic"
)

// Registry groups the metric cells shared by the achievement runtime
// Components resolve their cells once at construction and write atomics directly afterwards
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns the number of cells of every kind
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot reads every cell into a list sorted by key
// Integers keep their value in Int; other kinds are rendered into Text
func (r *Registry) Snapshot() []Entry {
	var out []Entry
	r.Ints.Range(func(key string, c *atomic.Int64) {
		out = append(out, Entry{Key: key, Int: c.Load()})
	})
	r.Bools.Range(func(key string, c *atomic.Bool) {
		out = append(out, Entry{Key: key, Text: strconv.FormatBool(c.Load()), IsText: true})
	})
	r.Floats.Range(func(key string, c *AtomicFloat) {
		out = append(out, Entry{Key: key, Text: strconv.FormatFloat(c.Get(), 'f', 2, 64), IsText: true})
	})
	r.Strings.Range(func(key string, c *AtomicString) {
		out = append(out, Entry{Key: key, Text: c.Load(), IsText: true})
	})
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// Entry is one flattened metric
type Entry struct {
	Key    string
	Int    int64
	Text   string
	IsText bool
}
