package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"airchord/music"
)

// KeyboardStyle selects the runes and colors of a keyboard strip
type KeyboardStyle struct {
	Idle          rune
	Sounding      rune
	IdleColor     lipgloss.Color
	SoundingColor lipgloss.Color
}

// Keyboard renders a chromatic strip from low to high inclusive, one
// cell per semitone, highlighting sounding notes. A label line above
// marks each octave start.
func Keyboard(low, high music.Pitch, sounding []music.Pitch, st KeyboardStyle) string {
	lo, hi := int(low.MIDI()), int(high.MIDI())
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo + 1

	on := make(map[int]bool, len(sounding))
	for _, p := range sounding {
		on[int(p.MIDI())] = true
	}

	// Octave labels sit over the C cells
	labels := []byte(strings.Repeat(" ", span))
	for n := lo; n <= hi; n++ {
		if n%12 != 0 {
			continue
		}
		name := music.PitchFromValue(n).String()
		pos := n - lo
		for i := 0; i < len(name) && pos+i < span; i++ {
			labels[pos+i] = name[i]
		}
	}

	idleStyle := lipgloss.NewStyle().Foreground(st.IdleColor)
	soundStyle := lipgloss.NewStyle().Foreground(st.SoundingColor)

	var cells strings.Builder
	for n := lo; n <= hi; n++ {
		if on[n] {
			cells.WriteString(soundStyle.Render(string(st.Sounding)))
		} else {
			cells.WriteString(idleStyle.Render(string(st.Idle)))
		}
	}

	return strings.TrimRight(string(labels), " ") + "\n" + cells.String()
}
