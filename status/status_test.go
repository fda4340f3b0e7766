package status

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricMapGetReturnsCachedPointer(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()

	a := m.Get("achievement.unlocks")
	b := m.Get("achievement.unlocks")
	require.Same(t, a, b)

	a.Add(3)
	assert.Equal(t, int64(3), b.Load())
	got, ok := m.Lookup("achievement.unlocks")
	assert.True(t, ok)
	assert.Same(t, a, got)
	_, ok = m.Lookup("persist.writes")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Count())
}

func TestMetricMapConcurrentGet(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Get("shared").Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.Count())
	assert.Equal(t, int64(16), m.Get("shared").Load())
}

func TestRegistrySnapshotSorted(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("persist.writes").Store(2)
	r.Ints.Get("achievement.unlocks").Store(5)
	r.Strings.Get("achievement.last").Store("Welcome!")
	r.Floats.Get("persist.last_write_ms").Set(1.5)
	r.Bools.Get("audio.muted").Store(true)

	snap := r.Snapshot()
	require.Len(t, snap, 5)
	keys := make([]string, len(snap))
	for i, e := range snap {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{
		"achievement.last", "achievement.unlocks", "audio.muted", "persist.last_write_ms", "persist.writes",
	}, keys)
	assert.Equal(t, "Welcome!", snap[0].Text)
	assert.Equal(t, int64(5), snap[1].Int)
	assert.False(t, snap[1].IsText)
	assert.Equal(t, "true", snap[2].Text)
	assert.Equal(t, "1.50", snap[3].Text)
	assert.Equal(t, 5, r.TotalCount())
}

func TestAtomicFloatMax(t *testing.T) {
	var f AtomicFloat
	assert.True(t, f.Max(2.5))
	assert.False(t, f.Max(1))
	assert.Equal(t, 2.5, f.Get())

	f.Set(-1)
	assert.True(t, f.Max(0))
	assert.Equal(t, 0.0, f.Get())
}

func TestAtomicStringTruncates(t *testing.T) {
	var s AtomicString
	assert.Equal(t, "", s.Load())

	long := "ééééééééééééééééééééééééééééééééééééééé"
	s.Store(long)
	assert.Len(t, []rune(s.Load()), MaxStringLen)
}
