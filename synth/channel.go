package synth

import (
	"math"
	"time"

	"airchord/music"
)

// Controller numbers the channel handle uses
const (
	ccVolume         = 7
	ccPortamentoTime = 5
	ccPortamentoOn   = 65
)

// Channel is one axis's handle onto the player, bound to a MIDI
// channel. It implements the allocators' Synth interface and adds the
// channel-scoped controls (volume, program, portamento).
type Channel struct {
	player *Player
	ch     uint8

	lastVelocity uint8
}

// NewChannel binds a MIDI channel on the player
func NewChannel(p *Player, ch uint8) *Channel {
	return &Channel{player: p, ch: ch, lastVelocity: 90}
}

// Attack starts notes at velocity in [0,1]
func (c *Channel) Attack(notes []music.Pitch, velocity float64, at time.Time) error {
	vel := velocityToMIDI(velocity)
	c.lastVelocity = vel
	return c.player.Schedule(Event{
		At:       at,
		Kind:     KindAttack,
		Channel:  c.ch,
		Notes:    toMIDINotes(notes),
		Velocity: vel,
	})
}

// Release stops notes
func (c *Channel) Release(notes []music.Pitch, at time.Time) error {
	return c.player.Schedule(Event{
		At:      at,
		Kind:    KindRelease,
		Channel: c.ch,
		Notes:   toMIDINotes(notes),
	})
}

// ReleaseAll silences the channel
func (c *Channel) ReleaseAll(at time.Time) error {
	return c.player.Schedule(Event{
		At:      at,
		Kind:    KindReleaseAll,
		Channel: c.ch,
	})
}

// Glide re-pitches a sounding note in place, keeping the velocity of
// the attack that started the voice
func (c *Channel) Glide(from, to music.Pitch, at time.Time) error {
	return c.player.Schedule(Event{
		At:       at,
		Kind:     KindGlide,
		Channel:  c.ch,
		From:     from.MIDI(),
		To:       to.MIDI(),
		Velocity: c.lastVelocity,
	})
}

// SetVolume maps decibels in [-40,0] onto the channel volume
// controller, applied immediately
func (c *Channel) SetVolume(db float64) error {
	return c.player.Schedule(Event{
		At:      time.Now(),
		Kind:    KindControl,
		Channel: c.ch,
		Control: ccVolume,
		Value:   dbToCC(db),
	})
}

// Program switches the channel's patch, applied immediately
func (c *Channel) Program(program uint8) error {
	return c.player.Schedule(Event{
		At:      time.Now(),
		Kind:    KindProgram,
		Channel: c.ch,
		Program: program,
	})
}

// EnableGlide turns on portamento with the given time value in [0,1],
// so melodic re-pitching slides between notes
func (c *Channel) EnableGlide(amount float64) error {
	if err := c.player.Schedule(Event{
		At:      time.Now(),
		Kind:    KindControl,
		Channel: c.ch,
		Control: ccPortamentoOn,
		Value:   127,
	}); err != nil {
		return err
	}
	return c.player.Schedule(Event{
		At:      time.Now(),
		Kind:    KindControl,
		Channel: c.ch,
		Control: ccPortamentoTime,
		Value:   unitToCC(amount),
	})
}

func toMIDINotes(notes []music.Pitch) []uint8 {
	out := make([]uint8, len(notes))
	for i, n := range notes {
		out[i] = n.MIDI()
	}
	return out
}

// velocityToMIDI maps [0,1] to 1-127; zero would read as a note-off
func velocityToMIDI(v float64) uint8 {
	n := int(math.Round(v * 127))
	if n < 1 {
		return 1
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}

// dbToCC maps decibels in [-40,0] linearly to 0-127
func dbToCC(db float64) uint8 {
	n := int(math.Round(127 * (db + 40) / 40))
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}

// unitToCC maps [0,1] to 0-127
func unitToCC(v float64) uint8 {
	n := int(math.Round(v * 127))
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}
