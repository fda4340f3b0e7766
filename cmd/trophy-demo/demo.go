package main

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lixenwraith/trophy/achievement"
	"github.com/lixenwraith/trophy/badge"
	"github.com/lixenwraith/trophy/catalog"
	"github.com/lixenwraith/trophy/event"
	"github.com/lixenwraith/trophy/status"
)

const patienceDelay = 30 * time.Second

// demo is the host program state read by achievement conditions
// All fields except resized are owned by the frame loop
type demo struct {
	reg     *achievement.Registry
	queue   *event.Queue
	logger  *zap.Logger
	catalog string
	mute    func() bool

	start   time.Time
	now     time.Time
	keys    int
	spaces  int
	toggles int
	resets  int
	frame   int64
	message string

	unlocked map[string]time.Time // Unlock times seen this session

	quit    bool
	resized atomic.Bool
}

func newDemo(start time.Time, reg *achievement.Registry, queue *event.Queue, logger *zap.Logger) *demo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &demo{
		reg:      reg,
		queue:    queue,
		logger:   logger,
		mute:     func() bool { return false },
		start:    start,
		now:      start,
		unlocked: make(map[string]time.Time),
	}
}

func (d *demo) elapsed() time.Duration {
	return d.now.Sub(d.start)
}

// conditions maps catalog condition keys to predicates over demo state
func (d *demo) conditions() map[string]achievement.Condition {
	return map[string]achievement.Condition{
		"welcome":  func() bool { return d.elapsed() >= 2*time.Second },
		"keys10":   func() bool { return d.keys >= 10 },
		"spaces5":  func() bool { return d.spaces >= 5 },
		"patience": func() bool { return d.elapsed() >= patienceDelay },
		"muted":    func() bool { return d.toggles > 0 },
		"reset": achievement.Fallible(func() (bool, error) {
			if d.resets < 0 {
				return false, fmt.Errorf("negative reset count %d", d.resets)
			}
			return d.resets > 0, nil
		}),
	}
}

// register binds the configured catalog, or the built-in set when none is configured
func (d *demo) register() error {
	if d.catalog != "" {
		c, err := catalog.Load(d.catalog)
		if err != nil {
			return err
		}
		n, err := c.Bind(d.reg, d.conditions())
		d.logger.Debug("catalog bound", zap.String("path", d.catalog), zap.Int("pending", n))
		return err
	}
	return d.registerBuiltins()
}

func (d *demo) registerBuiltins() error {
	conds := d.conditions()
	defs := []achievement.Definition{
		achievement.New("Welcome!", conds["welcome"]),
		achievement.New("Keyboard Warrior", conds["keys10"],
			achievement.WithSound(achievement.PresetSound(achievement.PresetSign)),
			achievement.WithDescription("Press ten keys"),
		),
		achievement.New("Space Cadet", conds["spaces5"],
			achievement.WithSound(achievement.PresetSound(achievement.PresetRising)),
			achievement.WithIcon("assets/rocket.png"),
			achievement.WithDescription("Press space five times"),
		),
		achievement.New("Patience", conds["patience"],
			achievement.WithSound(achievement.PresetSound(achievement.PresetRinging)),
			achievement.WithDuration(2),
			achievement.WithHidden(true),
		),
		achievement.New("Second Wind", conds["reset"],
			achievement.WithDescription("Reset your progress"),
		),
	}
	for _, def := range defs {
		if err := d.reg.Register(def); err != nil {
			return err
		}
	}

	return d.reg.Achievement("Silence Is Golden",
		achievement.WithSound(achievement.Silent()),
		achievement.WithDescription("Toggle the mute key"),
	)(conds["muted"])
}

// reset clears every pending and achieved name, then registers the set again
func (d *demo) reset() error {
	names := append(d.reg.PendingNames(), d.reg.Achieved()...)
	for _, name := range names {
		wasAchieved, err := d.reg.Delete(name)
		if err != nil {
			return err
		}
		delete(d.unlocked, name)
		event.EmitDeleted(d.queue, name, wasAchieved, d.frame)
	}

	d.resets++
	d.start = d.now
	d.keys, d.spaces, d.toggles = 0, 0, 0
	return d.register()
}

// HandleEvent implements event.Handler for key presses and registry changes
func (d *demo) HandleEvent(tick event.Tick, ev event.GameEvent) {
	d.frame = tick.Frame

	switch p := ev.Payload.(type) {
	case *event.KeyPayload:
		d.handleKey(p)
	case *event.DeletedPayload:
		if p.WasAchieved {
			d.message = "Forgot " + p.Name
		}
	case *event.UnlockPayload:
		d.message = "Unlocked " + p.Unlock.Definition.Name
		d.unlocked[p.Unlock.Definition.Name] = p.Unlock.At
	}
}

func (d *demo) handleKey(k *event.KeyPayload) {
	switch {
	case k.Rune == 'q' || k.Name == "Esc" || k.Name == "Ctrl+C":
		d.quit = true
		return
	case k.Rune == 'r':
		if err := d.reset(); err != nil {
			d.logger.Error("reset failed", zap.Error(err))
			d.message = "Reset failed"
		}
		return
	case k.Rune == 'm':
		d.toggles++
		if d.mute() {
			d.message = "Sound muted"
		} else {
			d.message = "Sound on"
		}
	case k.Rune == ' ':
		d.spaces++
	}
	d.keys++
}

// EventTypes implements event.Handler
func (d *demo) EventTypes() []event.EventType {
	return []event.EventType{event.EventKeyPressed, event.EventAchievementDeleted, event.EventAchievementUnlocked}
}

var (
	headerStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	textStyle    = tcell.StyleDefault
	doneStyle    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	statusStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	messageStyle = tcell.StyleDefault.Foreground(tcell.ColorAqua)
)

// draw renders the header, the achievement list, and the metrics status line
func (d *demo) draw(c badge.Canvas, metrics *status.Registry, muted bool) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return
	}

	drawLine(c, 0, 0, w, "trophy demo  [q] quit  [r] reset  [m] mute  [space] count", headerStyle)
	drawLine(c, 0, 1, w, fmt.Sprintf("keys %d  spaces %d  elapsed %s  muted %t",
		d.keys, d.spaces, d.elapsed().Truncate(time.Second), muted), textStyle)

	y := 3
	for _, def := range d.reg.Pending() {
		name := def.Name
		if def.Hidden {
			name = "???"
		}
		line := "[ ] " + name
		if def.Description != "" && !def.Hidden {
			line += "  " + def.Description
		}
		drawLine(c, 2, y, w, line, textStyle)
		y++
	}
	for _, name := range d.reg.Achieved() {
		line := "[x] " + name
		if at, ok := d.unlocked[name]; ok {
			line += "  " + humanize.RelTime(at, d.now, "ago", "from now")
		}
		drawLine(c, 2, y, w, line, doneStyle)
		y++
	}

	if d.message != "" && h > 2 {
		drawLine(c, 0, h-2, w, d.message, messageStyle)
	}
	drawLine(c, 0, h-1, w, statusLine(metrics), statusStyle)
}

// statusLine flattens metrics into "key=value" pairs
func statusLine(metrics *status.Registry) string {
	if metrics == nil {
		return ""
	}
	parts := lo.Map(metrics.Snapshot(), func(e status.Entry, _ int) string {
		if e.IsText {
			return e.Key + "=" + e.Text
		}
		return fmt.Sprintf("%s=%d", e.Key, e.Int)
	})
	return strings.Join(parts, " ")
}

func drawLine(c badge.Canvas, x, y, w int, s string, style tcell.Style) {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if x+rw > w {
			return
		}
		c.SetContent(x, y, r, nil, style)
		x += rw
	}
}
