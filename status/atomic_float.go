package status

import (
	"math"
	"sync/atomic"
)

// AtomicFloat is a float64 gauge stored as IEEE bits; the zero value reads 0
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set replaces the gauge value
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get returns the gauge value
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Max raises the gauge to val if val is larger and reports whether it did
func (f *AtomicFloat) Max(val float64) bool {
	for {
		old := f.bits.Load()
		if val <= math.Float64frombits(old) {
			return false
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(val)) {
			return true
		}
	}
}
