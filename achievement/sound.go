package achievement

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SoundKind discriminates the Sound variant
type SoundKind uint8

const (
	SoundSilent SoundKind = iota
	SoundPreset
	SoundFile
)

// Preset names a built-in unlock sound
type Preset string

const (
	PresetSign    Preset = "sign"
	PresetSudden  Preset = "sudden"
	PresetRinging Preset = "ringing"
	PresetRising  Preset = "rising"
)

// DefaultPreset is used when a definition does not choose a sound
const DefaultPreset = PresetSudden

// Presets lists every built-in preset in declaration order
var Presets = []Preset{PresetSign, PresetSudden, PresetRinging, PresetRising}

// Valid reports whether p is a built-in preset
func (p Preset) Valid() bool {
	switch p {
	case PresetSign, PresetSudden, PresetRinging, PresetRising:
		return true
	}
	return false
}

// Sound is a tagged variant: silent, a named preset, or a WAV file reference
// Resolved once at registration; the presentation layer switches on Kind
type Sound struct {
	kind   SoundKind
	preset Preset
	path   string
}

// Silent produces no audio on unlock
func Silent() Sound { return Sound{kind: SoundSilent} }

// PresetSound selects a built-in preset
func PresetSound(p Preset) Sound { return Sound{kind: SoundPreset, preset: p} }

// FileSound references a WAV file on disk
func FileSound(path string) Sound { return Sound{kind: SoundFile, path: path} }

// ParseSound resolves the textual form used by catalogs and flags
// Empty or "none" is silent, a preset name selects the preset, anything ending in .wav is a file
func ParseSound(s string) (Sound, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "", "none", "silent":
		return Silent(), nil
	}
	if p := Preset(strings.ToLower(trimmed)); p.Valid() {
		return PresetSound(p), nil
	}
	if isAudioFile(trimmed) {
		return FileSound(trimmed), nil
	}
	return Sound{}, fmt.Errorf("unrecognized sound %q: want one of %v or a .wav path", s, Presets)
}

// Kind returns the variant tag
func (s Sound) Kind() SoundKind { return s.kind }

// Preset returns the preset name; empty unless Kind is SoundPreset
func (s Sound) Preset() Preset { return s.preset }

// Path returns the file path; empty unless Kind is SoundFile
func (s Sound) Path() string { return s.path }

// String renders the sound in ParseSound form
func (s Sound) String() string {
	switch s.kind {
	case SoundPreset:
		return string(s.preset)
	case SoundFile:
		return s.path
	default:
		return "none"
	}
}

func (s Sound) validate() error {
	switch s.kind {
	case SoundSilent:
		return nil
	case SoundPreset:
		if !s.preset.Valid() {
			return fmt.Errorf("unknown preset %q", s.preset)
		}
		return nil
	case SoundFile:
		if !isAudioFile(s.path) {
			return fmt.Errorf("file %q is not a .wav reference", s.path)
		}
		return nil
	default:
		return fmt.Errorf("unknown sound kind %d", s.kind)
	}
}

func isAudioFile(path string) bool {
	base := filepath.Base(strings.TrimSpace(path))
	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".wav" && len(base) > len(ext)
}
