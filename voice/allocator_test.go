package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"airchord/music"
)

func TestPhaseString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("moving", PhaseMoving.String())
	assert.Equal("settling", PhaseSettling.String())
	assert.Equal("settled", PhaseSettled.String())
}

func TestAllocatorMovingPlaysBassOnly(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)

	c := music.NewChord(music.C, music.Major, 3)
	a.Update(c, 1.0, time.Now())

	assert.Equal(PhaseMoving, a.CurrentPhase())
	assert.Equal([]music.Pitch{c.Bass()}, a.Sounding())

	call, ok := s.last("attack")
	assert.True(ok)
	assert.Equal([]music.Pitch{c.Bass()}, call.notes)
	// Fast movement strikes softly
	assert.Equal(0.2, call.velocity)
}

func TestAllocatorSettleProgression(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)
	now := time.Now()

	c := music.NewChord(music.F, music.Major7, 3)

	// Sweeping: bass drone only
	a.Update(c, 1.0, now)
	assert.Equal(PhaseMoving, a.CurrentPhase())
	assert.Len(a.Sounding(), 1)

	// Slowed down: two more voices fade in
	now = now.Add(50 * time.Millisecond)
	a.Update(c, 0.1, now)
	assert.Equal(PhaseSettling, a.CurrentPhase())
	assert.Equal(c.Notes[:3], a.Sounding())

	// Resting past the settle window: the full chord
	now = now.Add(300 * time.Millisecond)
	a.Tick(now)
	assert.Equal(PhaseSettled, a.CurrentPhase())
	assert.Equal(c.Notes, a.Sounding())

	// The bass sounded through all three phases with one attack
	attacked := s.attacked()
	bassAttacks := 0
	for _, n := range attacked {
		if n == c.Bass() {
			bassAttacks++
		}
	}
	assert.Equal(1, bassAttacks)
	assert.Zero(s.count("release"))
}

func TestAllocatorSettlingVoiceCountTracksSpeed(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()
	c := music.NewChord(music.C, music.Major, 3)

	// Barely below fast: bass plus one
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)
	a.Update(c, 1.0, now)
	a.Update(c, 0.5, now.Add(50*time.Millisecond))
	assert.Len(a.Sounding(), 2)

	// Crawling: bass plus two
	s = newFakeSynth()
	a = NewAllocator(DefaultConfig(), s)
	a.Update(c, 1.0, now)
	a.Update(c, 0.05, now.Add(50*time.Millisecond))
	assert.Len(a.Sounding(), 3)
}

func TestAllocatorSettledIdempotent(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)
	now := settle(a, music.NewChord(music.C, music.Major, 3), time.Now())

	before := len(s.calls)
	for i := 0; i < 10; i++ {
		now = now.Add(30 * time.Millisecond)
		a.Update(music.NewChord(music.C, music.Major, 3), 0.05, now)
		a.Observe(0.05, now)
		a.Tick(now)
	}
	assert.Equal(before, len(s.calls))
	assert.Equal(PhaseSettled, a.CurrentPhase())
}

func TestAllocatorChordChangeDiffs(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)

	cmaj := music.NewChord(music.C, music.Major, 3) // C3 E3 G3
	emin := music.NewChord(music.E, music.Minor, 3) // E3 G3 B3
	now := settle(a, cmaj, time.Now())

	before := len(s.calls)
	now = now.Add(500 * time.Millisecond)
	a.Update(emin, 0.05, now)

	// Shared notes carry over untouched: one release, one attack
	rel, _ := s.last("release")
	att, _ := s.last("attack")
	assert.Equal([]music.Pitch{music.NewPitch(music.C, 3)}, rel.notes)
	assert.Equal([]music.Pitch{music.NewPitch(music.B, 3)}, att.notes)
	assert.Equal(before+2, len(s.calls))
	assert.Equal(emin.Notes, a.Sounding())
}

func TestAllocatorReleasesLeadAttacks(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	s := newFakeSynth()
	a := NewAllocator(cfg, s)

	now := settle(a, music.NewChord(music.C, music.Major, 3), time.Now())
	now = now.Add(500 * time.Millisecond)
	a.Update(music.NewChord(music.D, music.Minor, 3), 0.05, now)

	rel, _ := s.last("release")
	att, _ := s.last("attack")
	assert.Equal(now, rel.at)
	assert.Equal(now.Add(cfg.AttackDelay), att.at)
}

func TestAllocatorGrowthAttacksImmediately(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)
	now := time.Now()

	c := music.NewChord(music.C, music.Major7, 3)
	a.Update(c, 1.0, now)
	now = now.Add(50 * time.Millisecond)
	a.Update(c, 0.1, now)

	// Nothing was released, so the new voices start on time
	att, _ := s.last("attack")
	assert.Equal(now, att.at)
}

func TestAllocatorCollapsesWhenMovingResumes(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)

	c := music.NewChord(music.C, music.Major, 3)
	now := settle(a, c, time.Now())

	// The hand takes off again without changing chords
	now = now.Add(100 * time.Millisecond)
	a.Observe(2.0, now)

	assert.Equal(PhaseMoving, a.CurrentPhase())
	assert.Equal([]music.Pitch{c.Bass()}, a.Sounding())

	rel, ok := s.last("release")
	assert.True(ok)
	assert.Equal(c.Notes[1:], rel.notes)

	// The bass never restarted
	bassAttacks := 0
	for _, n := range s.attacked() {
		if n == c.Bass() {
			bassAttacks++
		}
	}
	assert.Equal(1, bassAttacks)
}

func TestAllocatorBudgetCeiling(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.MaxVoices = 2
	s := newFakeSynth()
	a := NewAllocator(cfg, s)

	// Settled on a triad: only the two lowest notes sound
	c := music.NewChord(music.C, music.Major, 4)
	now := settle(a, c, time.Now())
	assert.Equal(c.Notes[:2], a.Sounding())
	assert.LessOrEqual(len(s.on), 2)

	// Any further sequence of updates stays under the ceiling
	chords := []music.Chord{
		music.NewChord(music.D, music.Minor7, 4),
		music.NewChord(music.G, music.Dominant7, 3),
		music.NewChord(music.A, music.Minor, 4),
		music.NewChord(music.F, music.Major7, 3),
	}
	for i, ch := range chords {
		now = now.Add(time.Duration(i+1) * 40 * time.Millisecond)
		a.Update(ch, float64(i)*0.3, now)
		assert.LessOrEqual(len(a.Sounding()), 2)
		assert.LessOrEqual(len(s.on), 2)
	}
}

func TestAllocatorSettlingRespectsBudget(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.MaxVoices = 2
	s := newFakeSynth()
	a := NewAllocator(cfg, s)
	now := time.Now()

	// A crawling hand wants three voices but the budget says two,
	// truncated bass-first
	c := music.NewChord(music.C, music.Major, 3)
	a.Update(c, 1.0, now)
	a.Update(c, 0.05, now.Add(50*time.Millisecond))

	assert.Equal(c.Notes[:2], a.Sounding())
	assert.LessOrEqual(len(s.on), 2)
}

func TestAllocatorMaxVoicesFloor(t *testing.T) {
	assert := assert.New(t)
	a := NewAllocator(Config{MaxVoices: -3}, newFakeSynth())
	assert.Equal(1, a.MaxVoices())
}

func TestAllocatorSetAbsent(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)

	c := music.NewChord(music.G, music.Dominant7, 3)
	now := settle(a, c, time.Now())

	now = now.Add(20 * time.Millisecond)
	a.SetAbsent(now)

	assert.Empty(a.Sounding())
	assert.Equal(PhaseMoving, a.CurrentPhase())
	assert.Equal(1, s.count("releaseAll"))
	assert.Empty(s.on)

	// Housekeeping while absent never resurrects anything
	a.Tick(now.Add(time.Second))
	a.Observe(0, now.Add(2*time.Second))
	assert.Empty(a.Sounding())

	// The next appearance starts over from the bass drone
	a.Update(c, 1.0, now.Add(3*time.Second))
	assert.Equal([]music.Pitch{c.Bass()}, a.Sounding())
}

func TestAllocatorAbsorbsSynthErrors(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	s.fail = true
	a := NewAllocator(DefaultConfig(), s)

	// Calls fail, the tick survives, and the model optimistically
	// reflects intent
	c := music.NewChord(music.C, music.Major, 3)
	now := settle(a, c, time.Now())
	assert.Equal(c.Notes, a.Sounding())

	a.Update(music.NewChord(music.D, music.Minor, 3), 0.05, now.Add(time.Second))
	assert.Len(a.Sounding(), 3)

	a.SetAbsent(now.Add(2 * time.Second))
	assert.Empty(a.Sounding())
}

func TestAllocatorAttackVelocityTracksSpeed(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		vel  float64
		want float64
	}{
		{0.0, 1.0},
		{0.5, 0.5},
		{2.0, 0.2},
	}
	for _, tc := range cases {
		s := newFakeSynth()
		a := NewAllocator(DefaultConfig(), s)
		a.Update(music.NewChord(music.C, music.Major, 3), tc.vel, time.Now())
		call, ok := s.last("attack")
		assert.True(ok)
		assert.InDelta(tc.want, call.velocity, 1e-9, "vel=%v", tc.vel)
	}
}

func TestAllocatorEmptyChordReleasesEverything(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)

	now := settle(a, music.NewChord(music.C, music.Major, 3), time.Now())
	a.Update(music.Chord{}, 0.05, now.Add(time.Second))

	assert.Empty(a.Sounding())
	assert.Empty(s.on)
}

func TestAllocatorObserveBeforeFirstTarget(t *testing.T) {
	assert := assert.New(t)
	s := newFakeSynth()
	a := NewAllocator(DefaultConfig(), s)

	a.Observe(1.5, time.Now())
	a.Tick(time.Now())
	assert.Empty(a.Sounding())
	assert.Empty(s.calls)
}
