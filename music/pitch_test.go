package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPitchString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("C4", NewPitch(C, 4).String())
	assert.Equal("C#4", NewPitch(CSharp, 4).String())
	assert.Equal("A0", NewPitch(A, 0).String())
	assert.Equal("B9", NewPitch(B, 9).String())
}

func TestPitchMIDI(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint8(60), NewPitch(C, 4).MIDI())
	assert.Equal(uint8(69), NewPitch(A, 4).MIDI())
	assert.Equal(uint8(21), NewPitch(A, 0).MIDI())
	// B9 is above the MIDI range and clamps
	assert.Equal(uint8(127), NewPitch(B, 9).MIDI())
}

func TestPitchFromValue(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(NewPitch(C, 4), PitchFromValue(60))
	assert.Equal(NewPitch(G, 9), PitchFromValue(127))
	// Out-of-range values keep their class and clamp the octave
	assert.Equal(NewPitch(GSharp, 9), PitchFromValue(200))
	assert.Equal(NewPitch(B, 0), PitchFromValue(-1))
}

func TestNewPitchClamps(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, NewPitch(C, -3).Octave)
	assert.Equal(9, NewPitch(C, 42).Octave)
	assert.Equal(D, NewPitch(D+12, 4).Class)
	assert.Equal(B, NewPitch(-1, 4).Class)
}

func TestTranspose(t *testing.T) {
	assert := assert.New(t)

	c4 := NewPitch(C, 4)
	assert.Equal(NewPitch(E, 4), c4.Transpose(4))
	assert.Equal(NewPitch(C, 5), c4.Transpose(12))
	assert.Equal(NewPitch(B, 3), c4.Transpose(-1))
}

func TestParsePitchClass(t *testing.T) {
	assert := assert.New(t)

	for name, want := range map[string]PitchClass{
		"C": C, "c": C, "F#": FSharp, "Bb": ASharp, "Cb": B, "B#": C,
	} {
		got, err := ParsePitchClass(name)
		assert.NoError(err, name)
		assert.Equal(want, got, name)
	}

	for _, bad := range []string{"", "H", "C##", "x#"} {
		_, err := ParsePitchClass(bad)
		assert.Error(err, bad)
	}
}

func TestParsePitch(t *testing.T) {
	assert := assert.New(t)

	for s, want := range map[string]Pitch{
		"C4":  NewPitch(C, 4),
		"F#3": NewPitch(FSharp, 3),
		"Bb2": NewPitch(ASharp, 2),
		"A0":  NewPitch(A, 0),
		"G9":  NewPitch(G, 9),
	} {
		got, err := ParsePitch(s)
		assert.NoError(err, s)
		assert.Equal(want, got, s)
	}

	for _, bad := range []string{"", "C", "C10", "C-1", "Hb4", "C#x"} {
		_, err := ParsePitch(bad)
		assert.Error(err, bad)
	}
}

func TestPitchRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for n := 12; n <= 127; n++ {
		p := PitchFromMIDI(uint8(n))
		assert.Equal(uint8(n), p.MIDI())

		parsed, err := ParsePitch(p.String())
		assert.NoError(err)
		assert.Equal(p, parsed)
	}
}
