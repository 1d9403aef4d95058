package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Meter renders a horizontal level bar filled proportionally to norm
func Meter(norm float64, width int, color lipgloss.Color, fill, empty rune) string {
	if width < 1 {
		width = 1
	}
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	cells := int(norm*float64(width) + 0.5)
	if cells > width {
		cells = width
	}

	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(strings.Repeat(string(fill), cells)) +
		strings.Repeat(string(empty), width-cells)
}

// LabeledMeter prefixes a meter with a fixed-width name
func LabeledMeter(label string, norm float64, width int, color lipgloss.Color, fill, empty rune) string {
	return fmt.Sprintf("%-10s %s", label, Meter(norm, width, color, fill, empty))
}

// Swatch renders a single colored cell
func Swatch(color lipgloss.Color, symbol rune) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(symbol))
}

// Legend renders a swatch with a name and description
func Legend(color lipgloss.Color, symbol rune, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", Swatch(color, symbol), name, desc)
}
