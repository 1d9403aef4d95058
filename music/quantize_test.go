package music

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoteAtCMajor(t *testing.T) {
	assert := assert.New(t)
	k := DefaultKey()

	// Bottom of the frame is the configured root, top is the leading
	// tone two octaves up: a 7-note scale spans 14 positions
	assert.Equal("C4", NoteAt(1.0, k).String())
	assert.Equal("C5", NoteAt(0.5, k).String())
	assert.Equal("B5", NoteAt(0.0, k).String())
}

func TestNoteAtMonotonic(t *testing.T) {
	assert := assert.New(t)
	k := DefaultKey()

	prev := NoteAt(0, k).MIDI()
	for y := 0.01; y <= 1.0; y += 0.01 {
		cur := NoteAt(y, k).MIDI()
		assert.LessOrEqual(cur, prev, "y=%f", y)
		prev = cur
	}
}

func TestNoteAtRootOffsets(t *testing.T) {
	assert := assert.New(t)

	k := DefaultKey()
	k.Root = G
	assert.Equal("G4", NoteAt(1.0, k).String())

	k.Octave = 2
	assert.Equal("G2", NoteAt(1.0, k).String())
}

func TestNoteAtIsTotal(t *testing.T) {
	assert := assert.New(t)
	k := DefaultKey()

	for _, y := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -5, 7, 0, 1} {
		p := NoteAt(y, k)
		_, err := ParsePitch(p.String())
		assert.NoError(err, "y=%v", y)
	}
}

func TestNoteAtMalformedKey(t *testing.T) {
	assert := assert.New(t)

	// Empty scale falls back to major
	empty := Key{Root: C, Octave: 4}
	assert.Equal("C4", NoteAt(1.0, empty).String())

	// An out-of-range interval entry yields the configured root
	bad := Key{Root: D, Scale: Scale{Intervals: []int{0, 42, 4}}, Octave: 4}
	assert.Equal("D4", NoteAt(0.8, bad).String())

	// Octaves clamp instead of escaping the valid range
	low := DefaultKey()
	low.Octave = -3
	assert.Equal(0, NoteAt(1.0, low).Octave)

	high := DefaultKey()
	high.Octave = 99
	assert.LessOrEqual(NoteAt(0.0, high).Octave, MaxOctave)
}

func TestChordAtCMajor(t *testing.T) {
	assert := assert.New(t)
	k := DefaultKey()

	// Mid-zone lands on the fourth degree; harmony sits an octave
	// below the melodic register
	c := ChordAt(0.5, k, false)
	assert.Equal("F", c.Name)
	assert.Equal([]Pitch{NewPitch(F, 3), NewPitch(A, 3), NewPitch(C, 4)}, c.Notes)

	// Bottom of the zone is the tonic
	assert.Equal("C", ChordAt(0.85, k, false).Name)

	// Top of the zone is the leading-tone chord
	assert.Equal("Bdim", ChordAt(0.15, k, false).Name)
}

func TestChordAtSevenths(t *testing.T) {
	assert := assert.New(t)
	k := DefaultKey()

	assert.Equal("Fmaj7", ChordAt(0.5, k, true).Name)
	assert.Equal("Cmaj7", ChordAt(0.85, k, true).Name)
	assert.Equal("Bdim7", ChordAt(0.15, k, true).Name)

	// The fifth degree takes a dominant seventh
	g7 := ChordAt(0.4, k, true)
	assert.Equal("G7", g7.Name)
}

func TestChordAtZoneClamp(t *testing.T) {
	assert := assert.New(t)
	k := DefaultKey()

	top := ChordAt(k.ChordLow, k, false)
	assert.Equal(top.Name, ChordAt(0.0, k, false).Name)
	assert.Equal(top.Name, ChordAt(-3, k, false).Name)

	bottom := ChordAt(k.ChordHigh, k, false)
	assert.Equal(bottom.Name, ChordAt(1.0, k, false).Name)
	assert.Equal(bottom.Name, ChordAt(9, k, false).Name)
}

func TestChordAtDegreeCap(t *testing.T) {
	assert := assert.New(t)

	// A chromatic scale still only exposes MaxChordDegrees chords
	k := DefaultKey()
	k.Scale = Scale{Intervals: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}}

	c := ChordAt(k.ChordLow, k, false)
	assert.Equal("G", c.Name) // degree 7, not 11

	// With no progression table the quality defaults to major and its
	// seventh to dominant
	assert.Equal("G7", ChordAt(k.ChordLow, k, true).Name)
}

func TestChordAtIsTotal(t *testing.T) {
	assert := assert.New(t)

	keys := []Key{
		DefaultKey(),
		{Root: C, Octave: 4},
		{Root: D, Scale: Scale{Intervals: []int{0, 42}}, Octave: 4, ChordLow: 0.15, ChordHigh: 0.85},
		{Root: C, Scale: GetScale("major"), Octave: 4, ChordLow: 0.9, ChordHigh: 0.2},
		{Root: -7, Scale: GetScale("blues"), Octave: -4, ChordLow: math.NaN(), ChordHigh: math.NaN()},
	}
	for _, k := range keys {
		for _, y := range []float64{math.NaN(), math.Inf(1), -1, 0, 0.25, 0.5, 0.75, 1, 2} {
			c := ChordAt(y, k, true)
			assert.NotEmpty(c.Notes)
			for _, n := range c.Notes {
				_, err := ParsePitch(n.String())
				assert.NoError(err)
			}
		}
	}
}

func TestChordAtBadIntervalFallsBack(t *testing.T) {
	assert := assert.New(t)

	k := Key{
		Root:      D,
		Scale:     Scale{Intervals: []int{0, 99, 4, 5, 7, 9, 11}},
		Octave:    4,
		ChordLow:  0.15,
		ChordHigh: 0.85,
	}
	// Degree 1 carries the invalid entry: fall back to a root-position
	// major triad on the configured root
	c := ChordAt(0.7, k, false)
	assert.Equal("D", c.Name)
	assert.Equal(Major, c.Type)
	assert.Equal(NewPitch(D, 3), c.Bass())
}
