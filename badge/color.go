package badge

import (
	"github.com/gdamore/tcell/v2"
)

// RGB is a 24-bit color
type RGB struct {
	R, G, B uint8
}

// Badge palette
var (
	PanelColor = RGB{64, 64, 64}
	TextColor  = RGB{255, 255, 255}
	IconColor  = RGB{255, 255, 255}
	Backdrop   = RGB{0, 0, 0}
)

// PanelAlpha is the panel opacity at full visibility
const PanelAlpha = 185.0 / 255.0

// Blend mixes src over c at alpha
func Blend(c, src RGB, alpha float64) RGB {
	if alpha >= 1.0 {
		return src
	}
	if alpha <= 0.0 {
		return c
	}
	inv := 1.0 - alpha
	return RGB{
		R: uint8(float64(src.R)*alpha + float64(c.R)*inv),
		G: uint8(float64(src.G)*alpha + float64(c.G)*inv),
		B: uint8(float64(src.B)*alpha + float64(c.B)*inv),
	}
}

// TCell converts to a tcell color
func (c RGB) TCell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// cellStyle builds the style for a foreground over the blended panel
func cellStyle(fg, bg RGB) tcell.Style {
	return tcell.StyleDefault.Foreground(fg.TCell()).Background(bg.TCell())
}
