package status

import (
	"sync/atomic"
)

// MaxStringLen bounds stored strings so status lines stay one row wide
const MaxStringLen = 32

// AtomicString provides atomic string access with fixed max length
// Zero value is ready to use (represents empty string)
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the string value, truncating to MaxStringLen runes
func (s *AtomicString) Store(val string) {
	if r := []rune(val); len(r) > MaxStringLen {
		val = string(r[:MaxStringLen])
	}
	s.ptr.Store(&val)
}

// Load returns the current string value
func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
