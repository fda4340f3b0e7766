package achievement

import (
	"math"
	"strings"
)

// Condition is polled once per frame while its achievement is pending
// Must be cheap; only a true return unlocks
type Condition func() bool

// Fallible adapts a condition that can fail; an error counts as "not yet"
func Fallible(fn func() (bool, error)) Condition {
	if fn == nil {
		return nil
	}
	return func() bool {
		ok, err := fn()
		return err == nil && ok
	}
}

// Definition is an immutable achievement record
// Only Name and Condition drive the core; the remaining fields are carried for the presentation layer
type Definition struct {
	Name        string
	Condition   Condition
	Icon        string  // Optional image path
	Sound       Sound   // Played on unlock
	Duration    float64 // Display-time multiplier, not seconds
	Description string  // Menus only
	Hidden      bool    // Menus only: omitted until unlocked
}

// Option customizes a Definition built by New or the decorator form
type Option func(*Definition)

// WithIcon sets the badge icon path
func WithIcon(path string) Option {
	return func(d *Definition) { d.Icon = path }
}

// WithSound sets the unlock sound
func WithSound(s Sound) Option {
	return func(d *Definition) { d.Sound = s }
}

// WithDuration sets the display multiplier
func WithDuration(multiplier float64) Option {
	return func(d *Definition) { d.Duration = multiplier }
}

// WithDescription sets the menu description
func WithDescription(text string) Option {
	return func(d *Definition) { d.Description = text }
}

// WithHidden marks the achievement as secret until unlocked
func WithHidden(hidden bool) Option {
	return func(d *Definition) { d.Hidden = hidden }
}

// New builds a Definition with defaults: sudden preset, duration 1, no icon
func New(name string, cond Condition, opts ...Option) Definition {
	d := Definition{
		Name:      name,
		Condition: cond,
		Sound:     PresetSound(DefaultPreset),
		Duration:  1,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Validate checks the shape constraints enforced by Register
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Name: d.Name, Field: "name", Reason: "must be non-empty text"}
	}
	if d.Condition == nil {
		return &ValidationError{Name: d.Name, Field: "condition", Reason: "must be a function"}
	}
	if d.Icon != "" && strings.TrimSpace(d.Icon) == "" {
		return &ValidationError{Name: d.Name, Field: "icon", Reason: "must be a resource path or empty"}
	}
	if err := d.Sound.validate(); err != nil {
		return &ValidationError{Name: d.Name, Field: "sound", Reason: err.Error()}
	}
	if math.IsNaN(d.Duration) || math.IsInf(d.Duration, 0) || d.Duration <= 0 {
		return &ValidationError{Name: d.Name, Field: "duration", Reason: "must be a positive number"}
	}
	return nil
}
