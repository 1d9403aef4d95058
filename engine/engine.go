package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"airchord/debug"
	"airchord/gesture"
	"airchord/music"
	"airchord/tracker"
	"airchord/voice"
)

// Config is the engine's resolved tuning. Zero values fall back to
// defaults at construction.
type Config struct {
	Key      music.Key
	Sevenths bool

	// Change detection per axis; the chord gate is coarser
	NoteFilter  gesture.FilterConfig
	ChordFilter gesture.FilterConfig

	Voices voice.Config

	// TickEvery is the housekeeping cadence: intensity decay and
	// allocator settle timers between frames
	TickEvery time.Duration
}

// DefaultConfig returns the standard engine tuning
func DefaultConfig() Config {
	return Config{
		Key:         music.DefaultKey(),
		NoteFilter:  gesture.FilterConfig{MinInterval: 80 * time.Millisecond, Threshold: 0.04},
		ChordFilter: gesture.FilterConfig{MinInterval: 150 * time.Millisecond, Threshold: 0.08},
		Voices:      voice.DefaultConfig(),
		TickEvery:   time.Second / 30,
	}
}

type commandKind int

const (
	cmdCycleRoot commandKind = iota
	cmdCycleScale
	cmdOctaveDown
	cmdOctaveUp
	cmdToggleSevenths
	cmdPanic
	cmdToggleRecord
	cmdMelodyProgram
	cmdHarmonyProgram
)

type command struct {
	kind    commandKind
	program uint8
}

// Engine turns tracked hand frames into synth calls. One goroutine
// owns all musical state: it selects over incoming frames, a
// housekeeping ticker, and UI commands. Everyone else reads through
// Snapshot.
type Engine struct {
	cfg Config

	// Loop-owned state
	key      music.Key
	sevenths bool
	melody   *axis
	harmony  *axis

	explosion  float64
	pulse      float64
	lastDecay  time.Time
	recorder   *tracker.Recorder
	framesSeen uint64

	frames <-chan gesture.Frame
	cmds   chan command

	// UpdateChan receives a token whenever the snapshot changed; the
	// UI drains it to know when to redraw
	UpdateChan chan struct{}

	mu   sync.Mutex
	snap Snapshot
}

// New builds an engine reading frames and driving the two outputs.
// The melody output follows the right hand, harmony the left.
func New(cfg Config, frames <-chan gesture.Frame, melodyOut, harmonyOut Output) *Engine {
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = DefaultConfig().TickEvery
	}
	if len(cfg.Key.Scale.Intervals) == 0 {
		cfg.Key = music.DefaultKey()
	}
	e := &Engine{
		cfg:        cfg,
		key:        cfg.Key,
		sevenths:   cfg.Sevenths,
		melody:     newMelodyAxis(melodyOut, cfg.NoteFilter),
		harmony:    newHarmonyAxis(harmonyOut, cfg.ChordFilter, cfg.Voices),
		frames:     frames,
		cmds:       make(chan command, 16),
		UpdateChan: make(chan struct{}, 1),
	}
	e.publish()
	return e
}

// Run processes until the context ends or the frame source closes
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickEvery)
	defer ticker.Stop()

	e.lastDecay = time.Now()
	debug.Log("ENGINE", "running: key %s %s octave %d", e.key.Root.Name(), e.key.Scale.Name, e.key.Octave)

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return
		case f, ok := <-e.frames:
			if !ok {
				e.shutdown()
				return
			}
			e.handleFrame(f)
		case c := <-e.cmds:
			e.handleCommand(c)
		case now := <-ticker.C:
			e.housekeep(now)
		}
	}
}

// Snapshot returns the last published state
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// Commands, safe from any goroutine. A full queue drops the command
// rather than stall the caller.

func (e *Engine) CycleRoot() { e.send(command{kind: cmdCycleRoot}) }

func (e *Engine) CycleScale() { e.send(command{kind: cmdCycleScale}) }

func (e *Engine) OctaveDown() { e.send(command{kind: cmdOctaveDown}) }

func (e *Engine) OctaveUp() { e.send(command{kind: cmdOctaveUp}) }

func (e *Engine) ToggleSevenths() { e.send(command{kind: cmdToggleSevenths}) }

// Panic releases every sounding voice on both axes
func (e *Engine) Panic() { e.send(command{kind: cmdPanic}) }

func (e *Engine) ToggleRecording() { e.send(command{kind: cmdToggleRecord}) }

func (e *Engine) SetMelodyProgram(pc uint8) {
	e.send(command{kind: cmdMelodyProgram, program: pc})
}

func (e *Engine) SetHarmonyProgram(pc uint8) {
	e.send(command{kind: cmdHarmonyProgram, program: pc})
}

func (e *Engine) send(c command) {
	select {
	case e.cmds <- c:
	default:
		debug.Log("ENGINE", "command queue full, dropped %d", c.kind)
	}
}

func (e *Engine) handleFrame(f gesture.Frame) {
	e.framesSeen++
	if e.recorder != nil {
		if err := e.recorder.Write(f); err != nil {
			debug.Log("ENGINE", "recording stopped: %v", err)
			e.recorder.Close()
			e.recorder = nil
		}
	}

	now := f.At
	if now.IsZero() {
		now = time.Now()
	}

	if hand, ok := f.Hand(e.melody.side); ok {
		if e.melody.process(hand, e.key, e.sevenths, now) {
			e.explosion = impulse(e.melody.velocity)
		}
	} else {
		e.melody.absent(now)
	}

	if hand, ok := f.Hand(e.harmony.side); ok {
		if e.harmony.process(hand, e.key, e.sevenths, now) {
			e.pulse = impulse(e.harmony.velocity)
		}
	} else {
		e.harmony.absent(now)
	}

	e.publish()
}

func (e *Engine) housekeep(now time.Time) {
	dt := now.Sub(e.lastDecay)
	e.lastDecay = now
	e.explosion = decayIntensity(e.explosion, dt)
	e.pulse = decayIntensity(e.pulse, dt)
	e.melody.tick(now)
	e.harmony.tick(now)
	e.publish()
}

func (e *Engine) handleCommand(c command) {
	switch c.kind {
	case cmdCycleRoot:
		e.key.Root = (e.key.Root + 1) % 12
		e.requantize()
	case cmdCycleScale:
		e.key.Scale = nextScale(e.key.Scale)
		e.requantize()
	case cmdOctaveDown:
		if e.key.Octave > music.MinOctave+1 {
			e.key.Octave--
			e.requantize()
		}
	case cmdOctaveUp:
		if e.key.Octave < music.MaxOctave-2 {
			e.key.Octave++
			e.requantize()
		}
	case cmdToggleSevenths:
		e.sevenths = !e.sevenths
		e.requantize()
	case cmdPanic:
		now := time.Now()
		e.melody.absent(now)
		e.harmony.absent(now)
		debug.Log("ENGINE", "panic: all voices released")
	case cmdToggleRecord:
		e.toggleRecording()
	case cmdMelodyProgram:
		e.melody.setProgram(c.program)
	case cmdHarmonyProgram:
		e.harmony.setProgram(c.program)
	}
	e.publish()
}

// requantize forces both filters to re-emit, so key changes take
// effect on the very next frame instead of waiting out the time gate
func (e *Engine) requantize() {
	e.melody.filter.Reset()
	e.harmony.filter.Reset()
	debug.Log("ENGINE", "key now %s %s octave %d sevenths=%v",
		e.key.Root.Name(), e.key.Scale.Name, e.key.Octave, e.sevenths)
}

func (e *Engine) toggleRecording() {
	if e.recorder != nil {
		debug.Log("ENGINE", "recording closed: %s (%d frames)", e.recorder.Path(), e.recorder.Count())
		e.recorder.Close()
		e.recorder = nil
		return
	}
	rec, err := tracker.NewRecorder("")
	if err != nil {
		debug.Log("ENGINE", "cannot record: %v", err)
		return
	}
	e.recorder = rec
	debug.Log("ENGINE", "recording to %s", rec.Path())
}

func (e *Engine) shutdown() {
	now := time.Now()
	e.melody.absent(now)
	e.harmony.absent(now)
	if e.recorder != nil {
		e.recorder.Close()
		e.recorder = nil
	}
	e.publish()
	debug.Log("ENGINE", "stopped after %d frames", e.framesSeen)
}

func (e *Engine) publish() {
	snap := Snapshot{
		Key:        e.key,
		Sevenths:   e.sevenths,
		Melody:     e.melody.snapshot(),
		Harmony:    e.harmony.snapshot(),
		Explosion:  e.explosion,
		Pulse:      e.pulse,
		FramesSeen: e.framesSeen,
	}
	if e.recorder != nil {
		snap.Recording = true
		snap.RecordingPath = e.recorder.Path()
	}

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}

// intensityTau is the visualization decay time constant
const intensityTau = 250 * time.Millisecond

// impulse converts hand speed into a flash brightness: even a slow
// deliberate change registers, a fast sweep saturates
func impulse(vel float64) float64 {
	v := 0.6 + vel/2
	if v > 1 {
		v = 1
	}
	return v
}

func decayIntensity(v float64, dt time.Duration) float64 {
	if v <= 0 || dt <= 0 {
		return v
	}
	v *= math.Exp(-float64(dt) / float64(intensityTau))
	if v < 0.01 {
		return 0
	}
	return v
}

// nextScale cycles the named scales in listing order
func nextScale(current music.Scale) music.Scale {
	names := music.ScaleNames()
	for i, name := range names {
		if name == current.ID {
			return music.GetScale(names[(i+1)%len(names)])
		}
	}
	return music.GetScale(music.DefaultScale)
}
