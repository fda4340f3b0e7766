// Package audio plays achievement unlock sounds through beep
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/trophy/achievement"
)

// Preset lengths
const (
	signLength    = 450 * time.Millisecond
	suddenLength  = 350 * time.Millisecond
	ringingLength = 900 * time.Millisecond
	risingLength  = 600 * time.Millisecond
)

// NewPresetStreamer returns a finite streamer synthesizing preset p at sr
func NewPresetStreamer(p achievement.Preset, sr beep.SampleRate) (beep.Streamer, error) {
	switch p {
	case achievement.PresetSign:
		return NewSignGenerator(sr), nil
	case achievement.PresetSudden:
		return NewSuddenGenerator(sr), nil
	case achievement.PresetRinging:
		return NewRingingGenerator(sr), nil
	case achievement.PresetRising:
		return NewRisingGenerator(sr), nil
	default:
		return nil, fmt.Errorf("unknown sound preset %q", p)
	}
}

// clip tracks position within a fixed-length sound
type clip struct {
	sr    beep.SampleRate
	pos   int
	total int
}

func newClip(sr beep.SampleRate, length time.Duration) clip {
	return clip{sr: sr, total: sr.N(length)}
}

// fill writes up to len(samples) mono frames from sample(t, progress)
func (c *clip) fill(samples [][2]float64, sample func(t, progress float64) float64) (int, bool) {
	if c.pos >= c.total {
		return 0, false
	}
	n := min(len(samples), c.total-c.pos)
	for i := 0; i < n; i++ {
		t := float64(c.pos) / float64(c.sr)
		v := sample(t, float64(c.pos)/float64(c.total))
		samples[i][0] = v
		samples[i][1] = v
		c.pos++
	}
	return n, true
}

// SignGenerator plays two short rising chime notes
type SignGenerator struct {
	clip
}

// NewSignGenerator creates a sign chime generator
func NewSignGenerator(sr beep.SampleRate) *SignGenerator {
	return &SignGenerator{clip: newClip(sr, signLength)}
}

func (g *SignGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	return g.fill(samples, func(t, progress float64) float64 {
		// E5 then A5, each with its own decay
		freq, local := 659.25, t
		if progress >= 0.4 {
			freq, local = 880.0, t-0.4*signLength.Seconds()
		}
		env := math.Exp(-local * 9)
		return 0.25 * env * (math.Sin(2*math.Pi*freq*t) + 0.3*math.Sin(2*math.Pi*freq*2*t))
	})
}

func (g *SignGenerator) Err() error {
	return nil
}

// SuddenGenerator plays a bright pluck with a fast attack
type SuddenGenerator struct {
	clip
}

// NewSuddenGenerator creates a sudden pluck generator
func NewSuddenGenerator(sr beep.SampleRate) *SuddenGenerator {
	return &SuddenGenerator{clip: newClip(sr, suddenLength)}
}

func (g *SuddenGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	return g.fill(samples, func(t, progress float64) float64 {
		attack := math.Min(t/0.005, 1.0)
		env := attack * math.Exp(-t*12)
		tone := math.Sin(2*math.Pi*1046.5*t) + 0.5*math.Sin(2*math.Pi*1568*t)
		return 0.22 * env * tone
	})
}

func (g *SuddenGenerator) Err() error {
	return nil
}

// RingingGenerator plays an inharmonic bell with tremolo
type RingingGenerator struct {
	clip
}

// NewRingingGenerator creates a ringing bell generator
func NewRingingGenerator(sr beep.SampleRate) *RingingGenerator {
	return &RingingGenerator{clip: newClip(sr, ringingLength)}
}

func (g *RingingGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	return g.fill(samples, func(t, progress float64) float64 {
		const base = 740.0
		partials := 0.0
		partials += 1.0 * math.Sin(2*math.Pi*base*t)
		partials += 0.6 * math.Sin(2*math.Pi*base*2.76*t)
		partials += 0.3 * math.Sin(2*math.Pi*base*5.4*t)
		tremolo := 0.8 + 0.2*math.Sin(2*math.Pi*7*t)
		return 0.15 * math.Exp(-t*4) * tremolo * partials
	})
}

func (g *RingingGenerator) Err() error {
	return nil
}

// RisingGenerator sweeps upward and fades out at the top
type RisingGenerator struct {
	clip
	phase float64
}

// NewRisingGenerator creates a rising sweep generator
func NewRisingGenerator(sr beep.SampleRate) *RisingGenerator {
	return &RisingGenerator{clip: newClip(sr, risingLength)}
}

func (g *RisingGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	step := 1 / float64(g.sr)
	return g.fill(samples, func(t, progress float64) float64 {
		// Exponential sweep 300Hz -> 1200Hz; phase accumulates to stay continuous
		freq := 300 * math.Pow(4, progress)
		g.phase += 2 * math.Pi * freq * step
		env := math.Min(progress/0.05, 1.0) * (1 - progress*progress)
		return 0.25 * env * math.Sin(g.phase)
	})
}

func (g *RisingGenerator) Err() error {
	return nil
}
