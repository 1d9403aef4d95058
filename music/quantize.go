package music

import "math"

// Key is the resolved musical configuration a quantizer call needs:
// root, scale, melodic octave, and the vertical sub-range that chord
// selection responds to. The quantizers clamp out-of-range values, so
// a Key built by hand is safe too.
type Key struct {
	Root   PitchClass
	Scale  Scale
	Octave int

	// Chord selection is confined to [ChordLow, ChordHigh] of the
	// gesture range, leaving dead zones near the extremes
	ChordLow  float64
	ChordHigh float64
}

// DefaultKey returns C major at octave 4 with the standard chord zone
func DefaultKey() Key {
	return Key{
		Root:      C,
		Scale:     GetScale(DefaultScale),
		Octave:    4,
		ChordLow:  0.15,
		ChordHigh: 0.85,
	}
}

// MaxChordDegrees caps how many discrete degrees the chord axis spans.
// Chords are coarser than single notes: changing one is a bigger
// perceptual event, so long scales are not given more chord slots.
const MaxChordDegrees = 8

// normalize clamps y into [0,1], mapping NaN and infinities to a
// neutral 0.5 so tracking noise can never produce an invalid position
func normalize(y float64) float64 {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0.5
	}
	if y < 0 {
		return 0
	}
	if y > 1 {
		return 1
	}
	return y
}

// intervals returns the key's scale intervals, falling back to the
// default scale when the configured one is empty
func (k Key) intervals() []int {
	if len(k.Scale.Intervals) == 0 {
		return Scales[DefaultScale].Intervals
	}
	return k.Scale.Intervals
}

// NoteAt maps a normalized vertical position to a single pitch. The
// axis is inverted (y grows downward on screen, pitch grows upward)
// and spans two octaves of the scale. NoteAt is total: any y and any
// Key yield a valid Pitch.
func NoteAt(y float64, k Key) Pitch {
	iv := k.intervals()
	n := len(iv)
	octave := clampOctave(k.Octave)

	total := 2 * n
	pos := int((1 - normalize(y)) * float64(total))
	if pos >= total {
		pos = total - 1
	}
	if pos < 0 {
		pos = 0
	}
	octaveOffset := pos / n
	idx := pos % n

	off := iv[idx]
	if off < 0 || off > 12 {
		return NewPitch(k.Root, octave)
	}
	return PitchFromValue((octave+1)*12 + int(k.Root.norm()) + off + 12*octaveOffset)
}

// ChordAt maps a normalized vertical position to a chord of the key.
// Positions outside the chord zone clamp to its edges, the zone is
// quantized to at most MaxChordDegrees scale degrees, and the degree
// picks its quality from the scale's progression table. Chord notes
// sit one octave below the melodic register. ChordAt is total and the
// result always has at least one note.
func ChordAt(y float64, k Key, seventh bool) Chord {
	iv := k.intervals()
	n := len(iv)
	octave := clampOctave(k.Octave)

	lo, hi := k.ChordLow, k.ChordHigh
	if !(lo >= 0 && hi <= 1 && lo < hi) {
		lo, hi = 0.15, 0.85
	}
	y = normalize(y)
	if y < lo {
		y = lo
	}
	if y > hi {
		y = hi
	}
	rel := (y - lo) / (hi - lo)

	degrees := n
	if degrees > MaxChordDegrees {
		degrees = MaxChordDegrees
	}
	deg := int((1 - rel) * float64(degrees))
	if deg >= degrees {
		deg = degrees - 1
	}
	if deg < 0 {
		deg = 0
	}

	off := iv[deg]
	if off < 0 || off > 12 {
		return NewChord(k.Root, Major, octave-1)
	}
	quality := Degree{Triad: Major, Seventh: Dominant7}
	if deg < len(k.Scale.Degrees) {
		quality = k.Scale.Degrees[deg]
	}
	t := quality.Triad
	if seventh {
		t = quality.Seventh
	}
	return NewChord(k.Root.norm()+PitchClass(off), t, octave-1)
}
