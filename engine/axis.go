package engine

import (
	"math"
	"time"

	"airchord/debug"
	"airchord/gesture"
	"airchord/music"
	"airchord/voice"
)

// Output is the synth surface an axis drives: voice control plus the
// channel-level volume and program controls
type Output interface {
	voice.Synth
	SetVolume(db float64) error
	Program(program uint8) error
}

// axisKind selects the quantizer and voice model a hand drives
type axisKind int

const (
	melodyAxis axisKind = iota
	harmonyAxis
)

// Pinch distances in normalized image space: touching fingertips sit
// around 0.03, a fully spread thumb and index around 0.30
const (
	pinchClosed = 0.05
	pinchOpen   = 0.30

	// volumeFloor is the channel level at a fully closed pinch
	volumeFloor = -40.0

	// volumeStep is the dB change needed before another volume send,
	// keeping tracking jitter off the wire
	volumeStep = 1.5
)

// pinchToDB maps thumb-index distance to channel volume: an open hand
// plays at full level, a closed pinch fades toward the floor
func pinchToDB(d float64) float64 {
	t := (d - pinchClosed) / (pinchOpen - pinchClosed)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return volumeFloor * (1 - t)
}

// axis is one hand's control surface: change detection, motion
// estimation, and the voice model it drives. All methods run on the
// engine goroutine.
type axis struct {
	kind axisKind
	side gesture.Side
	out  Output

	filter *gesture.ChangeFilter
	motion *gesture.Motion
	mono   *voice.Mono
	alloc  *voice.Allocator

	present  bool
	label    string
	y        float64
	velocity float64
	volume   float64
	volKnown bool
}

func newMelodyAxis(out Output, cfg gesture.FilterConfig) *axis {
	return &axis{
		kind:   melodyAxis,
		side:   gesture.Right,
		out:    out,
		filter: gesture.NewChangeFilter(cfg),
		motion: &gesture.Motion{},
		mono:   voice.NewMono(out),
	}
}

func newHarmonyAxis(out Output, cfg gesture.FilterConfig, voices voice.Config) *axis {
	return &axis{
		kind:   harmonyAxis,
		side:   gesture.Left,
		out:    out,
		filter: gesture.NewChangeFilter(cfg),
		motion: &gesture.Motion{},
		alloc:  voice.NewAllocator(voices, out),
	}
}

// process feeds one observation of the axis's hand. It returns true
// when the quantized symbol changed and voices were updated.
func (a *axis) process(hand gesture.Hand, key music.Key, sevenths bool, now time.Time) bool {
	a.present = true
	y := gesture.Normalize(hand.Wrist().Y)
	a.y = y
	a.velocity = a.motion.Update(y, now)

	// Volume needs fingertips; wrist-only frames skip it
	if len(hand.Landmarks) > gesture.IndexTipIndex {
		a.updateVolume(hand.Pinch())
	}

	switch a.kind {
	case melodyAxis:
		pitch := music.NoteAt(y, key)
		if a.filter.Offer(pitch.String(), y, now) {
			a.mono.Update(pitch, a.velocity, now)
			a.label = pitch.String()
			return true
		}
	case harmonyAxis:
		chord := music.ChordAt(y, key, sevenths)
		if a.filter.Offer(chord.Name, y, now) {
			a.alloc.Update(chord, a.velocity, now)
			a.label = chord.Name
			return true
		}
		// The allocator still needs velocity while the symbol holds,
		// or a settled chord would never collapse on a fast sweep
		a.alloc.Observe(a.velocity, now)
	}
	return false
}

// absent handles a frame without this axis's hand: release everything
// and reset so the next appearance re-emits immediately
func (a *axis) absent(now time.Time) {
	if !a.present {
		return
	}
	a.present = false
	a.velocity = 0
	a.label = ""
	a.filter.Reset()
	a.motion.Reset()
	switch a.kind {
	case melodyAxis:
		a.mono.SetAbsent(now)
	case harmonyAxis:
		a.alloc.SetAbsent(now)
	}
	debug.Log("ENGINE", "%s hand absent, voices released", a.side)
}

// tick advances timer-driven state between frames
func (a *axis) tick(now time.Time) {
	if a.kind == harmonyAxis && a.present {
		a.alloc.Tick(now)
	}
}

func (a *axis) updateVolume(pinch float64) {
	db := pinchToDB(pinch)
	if a.volKnown && math.Abs(db-a.volume) < volumeStep {
		return
	}
	a.volume = db
	a.volKnown = true
	if err := a.out.SetVolume(db); err != nil {
		debug.Log("ENGINE", "%s volume: %v", a.side, err)
	}
}

func (a *axis) setProgram(pc uint8) {
	if err := a.out.Program(pc); err != nil {
		debug.Log("ENGINE", "%s program: %v", a.side, err)
	}
}

func (a *axis) snapshot() AxisSnapshot {
	s := AxisSnapshot{
		Present:  a.present,
		Label:    a.label,
		Y:        a.y,
		Velocity: a.velocity,
		Volume:   a.volume,
	}
	switch a.kind {
	case melodyAxis:
		if p, ok := a.mono.Sounding(); ok {
			s.Sounding = []music.Pitch{p}
		}
	case harmonyAxis:
		s.Sounding = a.alloc.Sounding()
		s.Phase = a.alloc.CurrentPhase()
	}
	return s
}
