package voice

import (
	"sort"
	"time"

	"airchord/debug"
	"airchord/music"
)

// Phase is the allocator's movement state. Transitions are driven by
// measured gesture velocity and elapsed time, never by external
// commands.
type Phase int

const (
	// PhaseMoving: the hand is sweeping; only the bass sounds
	PhaseMoving Phase = iota
	// PhaseSettling: the hand slowed down; a partial chord fades in
	PhaseSettling
	// PhaseSettled: the hand has rested long enough for the full chord
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseSettling:
		return "settling"
	case PhaseSettled:
		return "settled"
	default:
		return "moving"
	}
}

// Config tunes one allocator
type Config struct {
	// MaxVoices is the hard ceiling on simultaneously sounding notes
	MaxVoices int
	// FastVelocity is the speed (normalized units/s) above which the
	// hand counts as moving
	FastVelocity float64
	// CrawlVelocity is the speed below which a settling hand earns a
	// third note
	CrawlVelocity float64
	// SettleAfter is how long a hand must stay slow to settle
	SettleAfter time.Duration
	// AttackDelay offsets attacks behind releases scheduled in the
	// same update, avoiding a hard cutover
	AttackDelay time.Duration
}

// DefaultConfig returns the allocator tuning used when the config file
// carries no overrides
func DefaultConfig() Config {
	return Config{
		MaxVoices:     6,
		FastVelocity:  0.6,
		CrawlVelocity: 0.15,
		SettleAfter:   200 * time.Millisecond,
		AttackDelay:   30 * time.Millisecond,
	}
}

// Allocator is the polyphony manager for one chord axis. Given a
// target chord and a velocity estimate it decides which notes sound,
// holding the sounding count at or under MaxVoices and never
// re-attacking a note that both the old and new target contain.
//
// All methods must be called from a single goroutine; the engine's
// tick loop is the only writer.
type Allocator struct {
	cfg   Config
	synth Synth

	phase       Phase
	settleStart time.Time
	lastVel     float64

	target    music.Chord
	hasTarget bool
	sounding  []music.Pitch // ascending by MIDI
}

// NewAllocator builds an allocator driving the given synth
func NewAllocator(cfg Config, synth Synth) *Allocator {
	if cfg.MaxVoices < 1 {
		cfg.MaxVoices = 1
	}
	return &Allocator{cfg: cfg, synth: synth}
}

// Update accepts a new target chord with the current velocity estimate
// and reconciles the sounding set against it
func (a *Allocator) Update(target music.Chord, vel float64, now time.Time) {
	a.advancePhase(vel, now)
	a.target = target
	a.hasTarget = true
	a.apply(now)
}

// Observe feeds a velocity sample without changing the target. Speed
// changes alone can re-shape the sounding set: a settled chord
// collapses to its bass when the hand starts sweeping again.
func (a *Allocator) Observe(vel float64, now time.Time) {
	a.advancePhase(vel, now)
	a.apply(now)
}

// Tick advances the settle timer on the housekeeping clock, so a hand
// resting perfectly still settles without producing new samples
func (a *Allocator) Tick(now time.Time) {
	if a.phase == PhaseSettling && now.Sub(a.settleStart) >= a.cfg.SettleAfter {
		a.phase = PhaseSettled
		a.apply(now)
	}
}

// SetAbsent handles the driving hand leaving tracking: everything is
// released immediately and the state machine starts over. An absent
// hand can never be settled.
func (a *Allocator) SetAbsent(now time.Time) {
	if err := a.synth.ReleaseAll(now); err != nil {
		debug.Log("VOICE", "release all failed: %v", err)
	}
	a.sounding = nil
	a.target = music.Chord{}
	a.hasTarget = false
	a.phase = PhaseMoving
	a.settleStart = time.Time{}
	a.lastVel = 0
}

// Sounding returns a copy of the notes the allocator believes are on
func (a *Allocator) Sounding() []music.Pitch {
	out := make([]music.Pitch, len(a.sounding))
	copy(out, a.sounding)
	return out
}

// CurrentPhase returns the movement state
func (a *Allocator) CurrentPhase() Phase {
	return a.phase
}

// MaxVoices returns the configured voice ceiling
func (a *Allocator) MaxVoices() int {
	return a.cfg.MaxVoices
}

func (a *Allocator) advancePhase(vel float64, now time.Time) {
	a.lastVel = vel
	switch {
	case vel >= a.cfg.FastVelocity:
		a.phase = PhaseMoving
		a.settleStart = time.Time{}
	case a.phase == PhaseMoving:
		a.phase = PhaseSettling
		a.settleStart = now
	case a.phase == PhaseSettling && now.Sub(a.settleStart) >= a.cfg.SettleAfter:
		a.phase = PhaseSettled
	}
}

// targetSubset picks which of the target's notes the current phase
// allows, bass first
func (a *Allocator) targetSubset() []music.Pitch {
	if !a.hasTarget || len(a.target.Notes) == 0 {
		return nil
	}
	notes := a.target.Notes
	var n int
	switch a.phase {
	case PhaseMoving:
		n = 1
	case PhaseSettling:
		n = 2
		if a.lastVel < a.cfg.CrawlVelocity {
			n = 3
		}
	default:
		n = a.cfg.MaxVoices
	}
	if n > len(notes) {
		n = len(notes)
	}
	return notes[:n]
}

// apply diffs the phase-limited target against the sounding set and
// issues the minimal release/attack calls
func (a *Allocator) apply(now time.Time) {
	target := a.targetSubset()

	inTarget := make(map[music.Pitch]bool, len(target))
	for _, p := range target {
		inTarget[p] = true
	}

	var toRelease, toContinue []music.Pitch
	for _, p := range a.sounding {
		if inTarget[p] {
			toContinue = append(toContinue, p)
		} else {
			toRelease = append(toRelease, p)
		}
	}

	continuing := make(map[music.Pitch]bool, len(toContinue))
	for _, p := range toContinue {
		continuing[p] = true
	}
	var toAttack []music.Pitch
	for _, p := range target {
		if !continuing[p] {
			toAttack = append(toAttack, p)
		}
	}

	// Bass-first truncation keeps the sounding count at MaxVoices
	budget := a.cfg.MaxVoices - len(toContinue)
	if budget < 0 {
		budget = 0
	}
	if len(toAttack) > budget {
		toAttack = toAttack[:budget]
	}

	if len(toRelease) == 0 && len(toAttack) == 0 {
		return
	}

	attackAt := now
	if len(toRelease) > 0 {
		if err := a.synth.Release(toRelease, now); err != nil {
			debug.Log("VOICE", "release %v failed: %v", toRelease, err)
		}
		attackAt = now.Add(a.cfg.AttackDelay)
	}
	if len(toAttack) > 0 {
		if err := a.synth.Attack(toAttack, attackVelocity(a.lastVel), attackAt); err != nil {
			debug.Log("VOICE", "attack %v failed: %v", toAttack, err)
		}
	}

	next := append(toContinue, toAttack...)
	sort.Slice(next, func(i, j int) bool {
		return next[i].MIDI() < next[j].MIDI()
	})
	a.sounding = next
}
