package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Meters
	MeterFill  rune // █ filled cell
	MeterEmpty rune // ░ unfilled cell

	// Keyboard strip
	KeyIdle     rune // · silent position
	KeySounding rune // ● sounding note

	// Axis status
	HandPresent rune // ● tracked
	HandAbsent  rune // ○ lost
	Recording   rune // ◉ capture running
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			MeterFill:  '█',
			MeterEmpty: '░',

			KeyIdle:     '·',
			KeySounding: '●',

			HandPresent: '●',
			HandAbsent:  '○',
			Recording:   '◉',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep indigo
	RoleSurface = 0.1 // dark violet
	RoleMuted   = 0.2 // violet
	RoleFG      = 0.4 // magenta (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose
	RoleActive  = 0.7 // coral
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // amber
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
