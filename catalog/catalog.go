// Package catalog loads achievement metadata from YAML and binds it to conditions defined in code
//
// A catalog file looks like:
//
//	achievements:
//	  - name: Welcome!
//	    condition: started
//	    sound: sudden
//	    duration: 1.5
//	  - name: Chatterbox
//	    condition: typed-100
//	    icon: icons/chat.png
//	    sound: sounds/chime.wav
//	    hidden: true
//
// The condition field names a Go predicate supplied to Bind; catalogs never carry code.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/trophy/achievement"
)

// Entry is one catalog achievement
type Entry struct {
	Name        string   `yaml:"name"`
	Condition   string   `yaml:"condition"`
	Icon        string   `yaml:"icon,omitempty"`
	Sound       string   `yaml:"sound,omitempty"`
	Duration    *float64 `yaml:"duration,omitempty"` // Absent means the default multiplier
	Description string   `yaml:"description,omitempty"`
	Hidden      bool     `yaml:"hidden,omitempty"`
}

// Catalog is a parsed catalog file
type Catalog struct {
	Achievements []Entry `yaml:"achievements"`
}

// Load reads and parses the catalog at path
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog YAML; unknown fields, missing names, and duplicate names are errors
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, e := range c.Achievements {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("entry %d: missing required 'name' field", i)
		}
		if strings.TrimSpace(e.Condition) == "" {
			return nil, fmt.Errorf("entry %q: missing required 'condition' field", e.Name)
		}
	}

	dups := lo.Uniq(lo.Map(
		lo.FindDuplicatesBy(c.Achievements, func(e Entry) string { return e.Name }),
		func(e Entry, _ int) string { return e.Name },
	))
	if len(dups) > 0 {
		return nil, fmt.Errorf("duplicate achievement names: %s", strings.Join(dups, ", "))
	}
	return &c, nil
}

// Definitions resolves every entry against conds
// Entries with unknown conditions, unparseable sounds or invalid fields are reported together
func (c *Catalog) Definitions(conds map[string]achievement.Condition) ([]achievement.Definition, error) {
	defs := make([]achievement.Definition, 0, len(c.Achievements))
	var errs []error

	for _, e := range c.Achievements {
		cond, ok := conds[e.Condition]
		if !ok {
			errs = append(errs, fmt.Errorf("achievement %q: unknown condition %q", e.Name, e.Condition))
			continue
		}
		sound, err := soundFor(e.Sound)
		if err != nil {
			errs = append(errs, fmt.Errorf("achievement %q: %w", e.Name, err))
			continue
		}

		opts := []achievement.Option{
			achievement.WithIcon(e.Icon),
			achievement.WithSound(sound),
			achievement.WithDescription(e.Description),
			achievement.WithHidden(e.Hidden),
		}
		if e.Duration != nil {
			opts = append(opts, achievement.WithDuration(*e.Duration))
		}
		def := achievement.New(e.Name, cond, opts...)
		if err := def.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return defs, nil
}

// Bind registers every catalog entry with reg and returns how many became pending
// Registration errors do not stop the remaining entries
func (c *Catalog) Bind(reg *achievement.Registry, conds map[string]achievement.Condition) (int, error) {
	defs, err := c.Definitions(conds)
	if err != nil {
		return 0, err
	}

	var errs []error
	bound := 0
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, pending := reg.Lookup(def.Name); pending {
			bound++
		}
	}
	return bound, errors.Join(errs...)
}

// Names returns catalog names in file order
func (c *Catalog) Names() []string {
	return lo.Map(c.Achievements, func(e Entry, _ int) string { return e.Name })
}

// soundFor maps the catalog field; omitted means the default preset
func soundFor(s string) (achievement.Sound, error) {
	if strings.TrimSpace(s) == "" {
		return achievement.PresetSound(achievement.DefaultPreset), nil
	}
	return achievement.ParseSound(s)
}
