package music

// ChordType selects the interval structure of a chord
type ChordType int

const (
	Major ChordType = iota
	Minor
	Diminished
	Augmented
	Dominant7
	Minor7
	Major7
	Diminished7
	Sus4
)

// Semitone intervals from the chord root for each type
var chordIntervals = map[ChordType][]int{
	Major:       {0, 4, 7},
	Minor:       {0, 3, 7},
	Diminished:  {0, 3, 6},
	Augmented:   {0, 4, 8},
	Dominant7:   {0, 4, 7, 10},
	Minor7:      {0, 3, 7, 10},
	Major7:      {0, 4, 7, 11},
	Diminished7: {0, 3, 6, 9},
	Sus4:        {0, 5, 7},
}

var chordSuffixes = map[ChordType]string{
	Major:       "",
	Minor:       "m",
	Diminished:  "dim",
	Augmented:   "aug",
	Dominant7:   "7",
	Minor7:      "m7",
	Major7:      "maj7",
	Diminished7: "dim7",
	Sus4:        "sus4",
}

// Intervals returns a copy of the type's semitone offsets.
// Unknown types fall back to a major triad.
func (t ChordType) Intervals() []int {
	iv, ok := chordIntervals[t]
	if !ok {
		iv = chordIntervals[Major]
	}
	out := make([]int, len(iv))
	copy(out, iv)
	return out
}

// Suffix returns the display suffix, e.g. "m7" for Minor7
func (t ChordType) Suffix() string {
	if s, ok := chordSuffixes[t]; ok {
		return s
	}
	return ""
}

// Seventh returns the 7th-chord variant of a triad type. Types that
// already carry a seventh, and types with no common variant, are
// returned unchanged.
func (t ChordType) Seventh() ChordType {
	switch t {
	case Major:
		return Major7
	case Minor:
		return Minor7
	case Diminished:
		return Diminished7
	default:
		return t
	}
}

// Chord is an immutable set of notes built from a root and a type.
// Notes are ascending by MIDI number and contain no duplicates, so
// Notes[0] is always the bass.
type Chord struct {
	Root  PitchClass
	Type  ChordType
	Notes []Pitch
	Name  string
}

// NewChord builds a chord in root position with the root at the given
// octave. The result always has at least one note.
func NewChord(root PitchClass, t ChordType, octave int) Chord {
	base := NewPitch(root, octave)
	var notes []Pitch
	seen := make(map[Pitch]bool)
	for _, iv := range t.Intervals() {
		p := base.Transpose(iv)
		if seen[p] {
			continue
		}
		seen[p] = true
		notes = append(notes, p)
	}
	// Octave clamping near the register bounds can fold intervals out
	// of order; keep the ascending invariant.
	for i := 1; i < len(notes); i++ {
		for j := i; j > 0 && notes[j].midiValue() < notes[j-1].midiValue(); j-- {
			notes[j], notes[j-1] = notes[j-1], notes[j]
		}
	}
	if len(notes) == 0 {
		notes = []Pitch{base}
	}
	return Chord{
		Root:  root.norm(),
		Type:  t,
		Notes: notes,
		Name:  root.Name() + t.Suffix(),
	}
}

// Bass returns the lowest note of the chord
func (c Chord) Bass() Pitch {
	if len(c.Notes) == 0 {
		return NewPitch(c.Root, 4)
	}
	return c.Notes[0]
}
