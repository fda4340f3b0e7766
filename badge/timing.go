package badge

import (
	"math"
	"time"
)

// Timings are the animation phases of one badge, scaled by the definition's duration multiplier
type Timings struct {
	SlideIn    time.Duration // Rise from below with overshoot
	FadeDelay  time.Duration // Fully visible until here
	FadeLength time.Duration // Linear fade to transparent
	Lifetime   time.Duration // Removed after this
}

// TimingsFor scales the base phases (0.4s, 2s, 1.5s, 5s) by multiplier
func TimingsFor(multiplier float64) Timings {
	scale := func(seconds float64) time.Duration {
		return time.Duration(seconds * multiplier * float64(time.Second))
	}
	return Timings{
		SlideIn:    scale(0.4),
		FadeDelay:  scale(2),
		FadeLength: scale(1.5),
		Lifetime:   scale(5),
	}
}

// State is the badge appearance at a point in its life
type State struct {
	Offset float64 // Fraction of panel height still below rest; negative while overshooting
	Alpha  float64 // 1 opaque .. 0 invisible
	Done   bool
}

// At evaluates the animation at elapsed time since the unlock
func (t Timings) At(elapsed time.Duration) State {
	if elapsed < 0 {
		elapsed = 0
	}

	s := State{Alpha: 1}
	if elapsed < t.SlideIn {
		s.Offset = 1 - outBack(float64(elapsed)/float64(t.SlideIn))
	}

	switch fadeEnd := t.FadeDelay + t.FadeLength; {
	case elapsed >= fadeEnd:
		s.Alpha = 0
	case elapsed > t.FadeDelay:
		s.Alpha = 1 - float64(elapsed-t.FadeDelay)/float64(t.FadeLength)
	}

	s.Done = elapsed >= t.Lifetime
	return s
}

// outBack eases out past the target and settles back
func outBack(p float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(p-1, 3) + c1*math.Pow(p-1, 2)
}
