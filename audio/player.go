package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/lixenwraith/trophy/achievement"
	"github.com/lixenwraith/trophy/event"
	"github.com/lixenwraith/trophy/status"
)

const (
	// SampleRate is the output rate; presets are synthesized at it and files resampled to it
	SampleRate = beep.SampleRate(48000)

	bufferLatency = 100 * time.Millisecond
)

// Output is the device side of the player
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// speakerOutput drives the system device through beep/speaker
type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Lock()                { speaker.Lock() }
func (speakerOutput) Unlock()              { speaker.Unlock() }

// PlayerOption configures a Player
type PlayerOption func(*Player)

// WithOutput replaces the system speaker
func WithOutput(o Output) PlayerOption {
	return func(p *Player) { p.output = o }
}

// WithPlayerLogger sets the logger; nil keeps the no-op logger
func WithPlayerLogger(l *zap.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPlayerMetrics publishes play counters into reg
func WithPlayerMetrics(reg *status.Registry) PlayerOption {
	return func(p *Player) { p.metrics = reg }
}

// Player mixes unlock sounds into a single output stream
// Every method is safe before Initialize and after Cleanup; they simply do nothing
type Player struct {
	mu          sync.Mutex
	output      Output
	logger      *zap.Logger
	mixer       *beep.Mixer
	volume      *effects.Volume
	cache       *soundCache
	initialized bool
	muted       *atomic.Bool

	metrics     *status.Registry
	statPlayed  *atomic.Int64
	statSkipped *atomic.Int64
}

// NewPlayer creates an uninitialized player at the given volume (0..1)
func NewPlayer(volume float64, opts ...PlayerOption) *Player {
	p := &Player{
		output: speakerOutput{},
		logger: zap.NewNop(),
		mixer:  &beep.Mixer{},
		cache:  newSoundCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = status.NewRegistry()
	}
	p.statPlayed = p.metrics.Ints.Get("audio.played")
	p.statSkipped = p.metrics.Ints.Get("audio.skipped")
	p.muted = p.metrics.Bools.Get("audio.muted")

	p.volume = &effects.Volume{Streamer: p.mixer, Base: 2}
	p.setVolume(volume)
	return p
}

// Initialize opens the output device and starts streaming the mixer
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := p.output.Init(SampleRate, SampleRate.N(bufferLatency)); err != nil {
		return err
	}
	p.output.Play(p.volume)
	p.initialized = true
	return nil
}

// Cleanup silences the mixer; the device stays open for a later Initialize
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	p.output.Lock()
	p.mixer.Clear()
	p.output.Unlock()
	p.initialized = false
}

// Play queues s into the mixer; returns false when nothing was queued
func (p *Player) Play(s achievement.Sound) bool {
	if s.Kind() == achievement.SoundSilent {
		return false
	}
	if p.muted.Load() {
		p.statSkipped.Add(1)
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		p.statSkipped.Add(1)
		return false
	}

	streamer, err := p.streamerFor(s)
	if err != nil {
		p.statSkipped.Add(1)
		p.logger.Warn("unlock sound unavailable", zap.Stringer("sound", s), zap.Error(err))
		return false
	}

	p.output.Lock()
	p.mixer.Add(streamer)
	p.output.Unlock()
	p.statPlayed.Add(1)
	return true
}

// Active returns the number of sounds still streaming
func (p *Player) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return 0
	}
	p.output.Lock()
	defer p.output.Unlock()
	return p.mixer.Len()
}

// ToggleMute flips the mute flag and returns the new state
func (p *Player) ToggleMute() bool {
	for {
		cur := p.muted.Load()
		if p.muted.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}

// SetMuted sets the mute flag
func (p *Player) SetMuted(muted bool) {
	p.muted.Store(muted)
}

// IsMuted reports the mute flag
func (p *Player) IsMuted() bool {
	return p.muted.Load()
}

// IsInitialized reports whether the device is open
func (p *Player) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// HandleEvent implements event.Handler for sound requests
func (p *Player) HandleEvent(_ event.Tick, ev event.GameEvent) {
	if req, ok := ev.Payload.(*event.SoundRequestPayload); ok {
		p.Play(req.Sound)
	}
}

// EventTypes implements event.Handler
func (p *Player) EventTypes() []event.EventType {
	return []event.EventType{event.EventSoundRequest}
}

func (p *Player) streamerFor(s achievement.Sound) (beep.Streamer, error) {
	switch s.Kind() {
	case achievement.SoundPreset:
		return NewPresetStreamer(s.Preset(), SampleRate)
	default:
		buf, err := p.cache.get(s.Path())
		if err != nil {
			return nil, err
		}
		return bufferStreamer(buf, SampleRate), nil
	}
}

// setVolume maps a linear 0..1 level onto the base-2 volume effect
func (p *Player) setVolume(level float64) {
	if level <= 0 || math.IsNaN(level) {
		p.volume.Silent = true
		return
	}
	p.volume.Silent = false
	p.volume.Volume = math.Log2(math.Min(level, 1))
}
