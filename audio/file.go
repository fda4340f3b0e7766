package audio

import (
	"fmt"
	"os"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// soundCache holds decoded WAV files keyed by path
// Decoding happens once; each play streams a fresh view of the buffer
type soundCache struct {
	mu      sync.Mutex
	buffers map[string]*beep.Buffer
}

func newSoundCache() *soundCache {
	return &soundCache{buffers: make(map[string]*beep.Buffer)}
}

func (c *soundCache) get(path string) (*beep.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if buf, ok := c.buffers[path]; ok {
		return buf, nil
	}
	buf, err := LoadWAV(path)
	if err != nil {
		return nil, err
	}
	c.buffers[path] = buf
	return buf, nil
}

// LoadWAV decodes the WAV file at path into memory at its native format
func LoadWAV(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound %s: %w", path, err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode sound %s: %w", path, err)
	}
	defer streamer.Close() // Closes f

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode sound %s: %w", path, err)
	}
	return buf, nil
}

// bufferStreamer streams buf converted to the output rate
func bufferStreamer(buf *beep.Buffer, out beep.SampleRate) beep.Streamer {
	s := beep.Streamer(buf.Streamer(0, buf.Len()))
	if rate := buf.Format().SampleRate; rate != out {
		s = beep.Resample(4, rate, out, s)
	}
	return s
}
