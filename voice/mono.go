package voice

import (
	"time"

	"airchord/debug"
	"airchord/music"
)

// Mono is the single-voice melody allocator. There is no polyphony
// decision: a new target either starts the voice or re-pitches it in
// place, so melodic movement glides instead of re-triggering.
//
// Like Allocator, Mono is single-goroutine state.
type Mono struct {
	synth    Synth
	sounding music.Pitch
	active   bool
}

// NewMono builds a melody allocator driving the given synth
func NewMono(synth Synth) *Mono {
	return &Mono{synth: synth}
}

// Update moves the voice to the target pitch. Nothing sounding means
// attack; a different pitch glides; the same pitch is a no-op.
func (m *Mono) Update(target music.Pitch, vel float64, now time.Time) {
	switch {
	case !m.active:
		notes := []music.Pitch{target}
		if err := m.synth.Attack(notes, attackVelocity(vel), now); err != nil {
			debug.Log("VOICE", "melody attack %s failed: %v", target, err)
		}
		m.sounding = target
		m.active = true
	case m.sounding != target:
		if err := m.synth.Glide(m.sounding, target, now); err != nil {
			debug.Log("VOICE", "glide %s -> %s failed: %v", m.sounding, target, err)
		}
		m.sounding = target
	}
}

// SetAbsent releases the voice when the driving hand leaves tracking
func (m *Mono) SetAbsent(now time.Time) {
	if err := m.synth.ReleaseAll(now); err != nil {
		debug.Log("VOICE", "melody release failed: %v", err)
	}
	m.sounding = music.Pitch{}
	m.active = false
}

// Sounding returns the current pitch and whether the voice is on
func (m *Mono) Sounding() (music.Pitch, bool) {
	return m.sounding, m.active
}
