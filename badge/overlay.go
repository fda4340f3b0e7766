// Package badge animates unlock notifications and draws them onto a terminal screen
package badge

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/lixenwraith/trophy/achievement"
	"github.com/lixenwraith/trophy/event"
	"github.com/lixenwraith/trophy/status"
)

const (
	panelHeight   = 3
	panelMinWidth = 20
	panelMargin   = 1
	iconGlyph     = '◆'
	ellipsis      = '…'
)

// Canvas is the subset of tcell.Screen the overlay draws to
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

// Badge is one visible notification
type Badge struct {
	Definition achievement.Definition
	Start      time.Time
	Timings    Timings
}

// State evaluates the badge at now
func (b *Badge) State(now time.Time) State {
	return b.Timings.At(now.Sub(b.Start))
}

// OverlayOption configures an Overlay
type OverlayOption func(*Overlay)

// WithMaxVisible bounds the badge stack; the oldest badges are dropped first
func WithMaxVisible(n int) OverlayOption {
	return func(o *Overlay) {
		if n > 0 {
			o.maxVisible = n
		}
	}
}

// WithBackdrop sets the color the panel is blended over
func WithBackdrop(c RGB) OverlayOption {
	return func(o *Overlay) { o.backdrop = c }
}

// WithOverlayLogger sets the logger; nil keeps the no-op logger
func WithOverlayLogger(l *zap.Logger) OverlayOption {
	return func(o *Overlay) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOverlayMetrics publishes the visible badge count into reg
func WithOverlayMetrics(reg *status.Registry) OverlayOption {
	return func(o *Overlay) { o.metrics = reg }
}

// Overlay stacks badges in the bottom-right corner, newest at the bottom
// Frame goroutine only
type Overlay struct {
	badges     []*Badge
	maxVisible int
	backdrop   RGB
	logger     *zap.Logger

	metrics     *status.Registry
	statVisible *atomic.Int64
	statShown   *atomic.Int64
}

// NewOverlay creates an empty overlay
func NewOverlay(opts ...OverlayOption) *Overlay {
	o := &Overlay{
		maxVisible: 4,
		backdrop:   Backdrop,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = status.NewRegistry()
	}
	o.statVisible = o.metrics.Ints.Get("badge.visible")
	o.statShown = o.metrics.Ints.Get("badge.shown")
	return o
}

// Show starts a badge for def at now
func (o *Overlay) Show(def achievement.Definition, now time.Time) {
	o.badges = append(o.badges, &Badge{
		Definition: def,
		Start:      now,
		Timings:    TimingsFor(def.Duration),
	})
	if over := len(o.badges) - o.maxVisible; over > 0 {
		clear(o.badges[:over])
		o.badges = o.badges[over:]
	}
	o.statShown.Add(1)
	o.statVisible.Store(int64(len(o.badges)))
	o.logger.Debug("badge shown", zap.String("achievement", def.Name))
}

// HandleEvent implements event.Handler for unlock events
func (o *Overlay) HandleEvent(tick event.Tick, ev event.GameEvent) {
	p, ok := ev.Payload.(*event.UnlockPayload)
	if !ok {
		return
	}
	now := tick.Now
	if now.IsZero() {
		now = p.Unlock.At
	}
	o.Show(p.Unlock.Definition, now)
}

// EventTypes implements event.Handler
func (o *Overlay) EventTypes() []event.EventType {
	return []event.EventType{event.EventAchievementUnlocked}
}

// Update drops badges whose lifetime has passed and returns how many remain
func (o *Overlay) Update(now time.Time) int {
	kept := o.badges[:0]
	for _, b := range o.badges {
		if !b.State(now).Done {
			kept = append(kept, b)
		}
	}
	clear(o.badges[len(kept):])
	o.badges = kept
	o.statVisible.Store(int64(len(o.badges)))
	return len(o.badges)
}

// Badges returns the visible badges, oldest first
func (o *Overlay) Badges() []*Badge {
	return o.badges
}

// Draw renders every visible badge at now
func (o *Overlay) Draw(c Canvas, now time.Time) {
	screenW, screenH := c.Size()
	if screenW <= 0 || screenH <= 0 {
		return
	}

	// Newest sits at the bottom; older badges stack upward
	slot := 0
	for i := len(o.badges) - 1; i >= 0; i-- {
		b := o.badges[i]
		st := b.State(now)
		if st.Done {
			continue
		}

		rest := screenH - panelMargin - panelHeight*(slot+1)
		slot++
		if st.Alpha <= 0 {
			continue
		}
		shift := int(math.Round(math.Max(st.Offset, 0) * panelHeight))
		o.drawPanel(c, b.Definition, rest+shift, screenW, screenH, st.Alpha)
	}
}

func (o *Overlay) drawPanel(c Canvas, def achievement.Definition, top, screenW, screenH int, alpha float64) {
	hasIcon := def.Icon != ""
	inner := runewidth.StringWidth(def.Name)
	if hasIcon {
		inner += 2
	}

	width := max(inner+4, panelMinWidth)
	width = min(width, screenW-2*panelMargin)
	if width <= 4 {
		return
	}
	left := screenW - panelMargin - width

	bg := Blend(o.backdrop, PanelColor, PanelAlpha*alpha)
	text := Blend(bg, TextColor, alpha)
	icon := Blend(bg, IconColor, alpha)
	base := cellStyle(text, bg)

	for row := 0; row < panelHeight; row++ {
		y := top + row
		if y < 0 || y >= screenH {
			continue
		}
		for x := left; x < left+width; x++ {
			c.SetContent(x, y, ' ', nil, base)
		}
	}

	y := top + panelHeight/2
	if y < 0 || y >= screenH {
		return
	}
	x := left + 2
	limit := left + width - 2
	if hasIcon {
		c.SetContent(x, y, iconGlyph, nil, cellStyle(icon, bg))
		x += 2
	}
	drawText(c, x, y, limit, def.Name, base)
}

// drawText writes s from x, truncating with an ellipsis at limit
func drawText(c Canvas, x, y, limit int, s string, style tcell.Style) {
	fits := runewidth.StringWidth(s) <= limit-x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if !fits && x+w >= limit {
			if x < limit {
				c.SetContent(x, y, ellipsis, nil, style)
			}
			return
		}
		c.SetContent(x, y, r, nil, style)
		x += w
	}
}
