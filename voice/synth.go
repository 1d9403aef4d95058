package voice

import (
	"time"

	"airchord/music"
)

// Synth is the sound engine as the allocators see it. Calls are
// schedule-style: the implementation applies them at the given time,
// and releases scheduled at or before an attack's time are applied
// first. Implementations own timbre; allocators only decide which
// notes sound.
type Synth interface {
	// Attack starts the given notes at velocity in [0,1]
	Attack(notes []music.Pitch, velocity float64, at time.Time) error
	// Release stops the given notes
	Release(notes []music.Pitch, at time.Time) error
	// ReleaseAll stops everything this synth is sounding
	ReleaseAll(at time.Time) error
	// Glide re-pitches a sounding note in place instead of
	// releasing and re-attacking it
	Glide(from, to music.Pitch, at time.Time) error
}

// attackVelocity softens attacks in proportion to gesture speed, so
// fast sweeps sound glossed over rather than re-struck
func attackVelocity(vel float64) float64 {
	v := 1 - vel
	if v < 0.2 {
		return 0.2
	}
	if v > 1 {
		return 1
	}
	return v
}
