package music

import (
	"fmt"
	"strconv"
	"strings"
)

// PitchClass is one of the 12 semitone categories, as an offset from C
type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// Canonical sharp spellings for the 12 classes
var pitchClassNames = [12]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// Semitone offset from C for each note letter A-G
var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

func (pc PitchClass) norm() PitchClass {
	return PitchClass(((int(pc) % 12) + 12) % 12)
}

// Name returns the canonical sharp spelling, e.g. "C#"
func (pc PitchClass) Name() string {
	return pitchClassNames[pc.norm()]
}

// ParsePitchClass parses a note name like "C", "F#" or "Bb"
func ParsePitchClass(name string) (PitchClass, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("empty pitch class")
	}
	letter := s[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	off, ok := letterOffsets[letter]
	if !ok {
		return 0, fmt.Errorf("invalid note letter %q", string(s[0]))
	}
	switch {
	case len(s) == 1:
	case len(s) == 2 && s[1] == '#':
		off++
	case len(s) == 2 && s[1] == 'b':
		off--
	default:
		return 0, fmt.Errorf("invalid pitch class %q", name)
	}
	return PitchClass(off).norm(), nil
}

// MinOctave and MaxOctave bound the octave of any Pitch this package produces
const (
	MinOctave = 0
	MaxOctave = 9
)

// Pitch is an immutable note: a pitch class plus an octave.
// C4 is middle C (MIDI 60).
type Pitch struct {
	Class  PitchClass
	Octave int
}

// NewPitch builds a Pitch, normalizing the class and clamping the
// octave into [MinOctave, MaxOctave]
func NewPitch(class PitchClass, octave int) Pitch {
	return Pitch{Class: class.norm(), Octave: clampOctave(octave)}
}

func clampOctave(o int) int {
	if o < MinOctave {
		return MinOctave
	}
	if o > MaxOctave {
		return MaxOctave
	}
	return o
}

// String returns the canonical form, e.g. "C#4"
func (p Pitch) String() string {
	return p.Class.Name() + strconv.Itoa(p.Octave)
}

// MIDI returns the MIDI note number, clamped to 0-127
func (p Pitch) MIDI() uint8 {
	n := p.midiValue()
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}

// midiValue is the unclamped note number, used for ordering
func (p Pitch) midiValue() int {
	return (p.Octave+1)*12 + int(p.Class.norm())
}

// Transpose returns a new Pitch the given number of semitones away
func (p Pitch) Transpose(semitones int) Pitch {
	return PitchFromValue(p.midiValue() + semitones)
}

// PitchFromMIDI converts a MIDI note number back to a Pitch
func PitchFromMIDI(n uint8) Pitch {
	return PitchFromValue(int(n))
}

// PitchFromValue converts any note number to a valid Pitch, clamping
// the octave so the result is always in range
func PitchFromValue(n int) Pitch {
	class := PitchClass(n).norm()
	octave := n/12 - 1
	if n < 0 {
		octave = MinOctave
	}
	return Pitch{Class: class, Octave: clampOctave(octave)}
}

// ParsePitch parses a canonical pitch string like "C4", "F#3" or "Bb2"
func ParsePitch(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Pitch{}, fmt.Errorf("pitch %q too short", s)
	}
	split := 1
	if s[1] == '#' || s[1] == 'b' {
		split = 2
	}
	class, err := ParsePitchClass(s[:split])
	if err != nil {
		return Pitch{}, err
	}
	octave, err := strconv.Atoi(s[split:])
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid octave in %q", s)
	}
	if octave < MinOctave || octave > MaxOctave {
		return Pitch{}, fmt.Errorf("octave %d out of range", octave)
	}
	return Pitch{Class: class, Octave: octave}, nil
}
