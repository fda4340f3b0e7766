package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/trophy/achievement"
	"github.com/lixenwraith/trophy/event"
	"github.com/lixenwraith/trophy/status"
)

// fakeOutput captures what the player hands to the device
type fakeOutput struct {
	mu      sync.Mutex
	initErr error
	inits   int
	played  []beep.Streamer
}

func (o *fakeOutput) Init(sr beep.SampleRate, bufferSize int) error {
	o.inits++
	return o.initErr
}
func (o *fakeOutput) Play(s beep.Streamer) { o.played = append(o.played, s) }
func (o *fakeOutput) Lock()                { o.mu.Lock() }
func (o *fakeOutput) Unlock()              { o.mu.Unlock() }

// drain streams s to completion and returns the frame count and peak amplitude
func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestPresetGenerators(t *testing.T) {
	for _, p := range achievement.Presets {
		t.Run(string(p), func(t *testing.T) {
			s, err := NewPresetStreamer(p, SampleRate)
			require.NoError(t, err)

			frames, peak := drain(s)
			assert.Greater(t, frames, SampleRate.N(100*time.Millisecond))
			assert.Less(t, frames, SampleRate.N(time.Second))
			assert.Greater(t, peak, 0.01)
			assert.LessOrEqual(t, peak, 1.0)
			assert.NoError(t, s.Err())

			// Exhausted generators stay exhausted
			n, ok := s.Stream(make([][2]float64, 16))
			assert.Equal(t, 0, n)
			assert.False(t, ok)
		})
	}

	_, err := NewPresetStreamer("boom", SampleRate)
	assert.Error(t, err)
}

func writeWAV(t *testing.T, sr beep.SampleRate) (string, int) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ding.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	gen := NewSignGenerator(sr)
	format := beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, gen, format))
	require.NoError(t, f.Close())
	return path, gen.total
}

func TestLoadWAV(t *testing.T) {
	path, frames := writeWAV(t, beep.SampleRate(22050))

	buf, err := LoadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, frames, buf.Len())
	assert.Equal(t, beep.SampleRate(22050), buf.Format().SampleRate)

	_, err = LoadWAV(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)

	bogus := filepath.Join(t.TempDir(), "bogus.wav")
	require.NoError(t, os.WriteFile(bogus, []byte("not a wav"), 0644))
	_, err = LoadWAV(bogus)
	assert.Error(t, err)
}

func TestPlayerGracefulDegradation(t *testing.T) {
	p := NewPlayer(1, WithOutput(&fakeOutput{}))

	assert.False(t, p.Play(achievement.PresetSound(achievement.PresetSign)))
	assert.Equal(t, 0, p.Active())
	p.Cleanup()
	assert.False(t, p.IsInitialized())
}

func TestPlayerPlaysPresetsAndFiles(t *testing.T) {
	out := &fakeOutput{}
	metrics := status.NewRegistry()
	p := NewPlayer(0.5, WithOutput(out), WithPlayerMetrics(metrics))
	require.NoError(t, p.Initialize())
	require.NoError(t, p.Initialize())
	assert.Equal(t, 1, out.inits)
	require.Len(t, out.played, 1)

	path, _ := writeWAV(t, beep.SampleRate(22050))

	assert.True(t, p.Play(achievement.PresetSound(achievement.PresetRising)))
	assert.True(t, p.Play(achievement.FileSound(path)))
	assert.False(t, p.Play(achievement.Silent()))
	assert.False(t, p.Play(achievement.FileSound(filepath.Join(t.TempDir(), "gone.wav"))))
	assert.Equal(t, 2, p.Active())

	assert.Equal(t, int64(2), metrics.Ints.Get("audio.played").Load())
	assert.Equal(t, int64(1), metrics.Ints.Get("audio.skipped").Load())

	// Draining the device stream empties the mixer
	frames, _ := drainFor(out.played[0], SampleRate.N(2*time.Second))
	assert.Greater(t, frames, 0)
	assert.Equal(t, 0, p.Active())

	p.Cleanup()
	assert.False(t, p.Play(achievement.PresetSound(achievement.PresetSign)))
}

// drainFor streams at most n frames from an endless streamer
func drainFor(s beep.Streamer, n int) (int, float64) {
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for total < n {
		got, ok := s.Stream(buf)
		for i := 0; i < got; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += got
		if !ok {
			break
		}
	}
	return total, peak
}

func TestPlayerMute(t *testing.T) {
	p := NewPlayer(1, WithOutput(&fakeOutput{}))
	require.NoError(t, p.Initialize())

	assert.True(t, p.ToggleMute())
	assert.True(t, p.IsMuted())
	assert.False(t, p.Play(achievement.PresetSound(achievement.PresetSudden)))

	assert.False(t, p.ToggleMute())
	assert.True(t, p.Play(achievement.PresetSound(achievement.PresetSudden)))
}

func TestPlayerZeroVolumeIsSilent(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(0, WithOutput(out))
	require.NoError(t, p.Initialize())
	require.True(t, p.Play(achievement.PresetSound(achievement.PresetSudden)))

	_, peak := drainFor(out.played[0], SampleRate.N(200*time.Millisecond))
	assert.Equal(t, 0.0, peak)
}

func TestPlayerHandlesSoundRequests(t *testing.T) {
	p := NewPlayer(1, WithOutput(&fakeOutput{}))
	require.NoError(t, p.Initialize())

	q := event.NewQueue()
	r := event.NewRouter[event.Tick](q)
	r.Register(p)

	event.NewPublisher(q).Notify(achievement.Unlock{Definition: achievement.New("A", nil)})
	r.DispatchAll(event.Tick{})
	assert.Equal(t, 1, p.Active())
}

func TestServiceDegradesWithoutDevice(t *testing.T) {
	p := NewPlayer(1, WithOutput(&fakeOutput{initErr: errors.New("no device")}))
	svc := NewService(p, nil)

	assert.Equal(t, "audio", svc.Name())
	require.NoError(t, svc.Init(true))
	assert.True(t, p.IsMuted())

	require.NoError(t, svc.Start())
	assert.True(t, svc.IsDisabled())
	assert.False(t, svc.Player().Play(achievement.PresetSound(achievement.PresetSign)))
	assert.NoError(t, svc.Stop())
	assert.NoError(t, svc.Stop())
}

func TestServiceStartsPlayer(t *testing.T) {
	p := NewPlayer(1, WithOutput(&fakeOutput{}))
	svc := NewService(p, nil)
	require.NoError(t, svc.Init(false))
	require.NoError(t, svc.Start())

	assert.False(t, svc.IsDisabled())
	assert.True(t, p.IsInitialized())
	require.NoError(t, svc.Stop())
	assert.False(t, p.IsInitialized())
}
