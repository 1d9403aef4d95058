package voice

import (
	"errors"
	"time"

	"airchord/music"
)

// synthCall records one facade invocation
type synthCall struct {
	kind     string // attack, release, releaseAll, glide
	notes    []music.Pitch
	velocity float64
	from, to music.Pitch
	at       time.Time
}

// fakeSynth records calls and tracks which notes would be on, applying
// calls in arrival order
type fakeSynth struct {
	calls []synthCall
	on    map[music.Pitch]bool
	fail  bool
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{on: make(map[music.Pitch]bool)}
}

func (s *fakeSynth) Attack(notes []music.Pitch, velocity float64, at time.Time) error {
	cp := make([]music.Pitch, len(notes))
	copy(cp, notes)
	s.calls = append(s.calls, synthCall{kind: "attack", notes: cp, velocity: velocity, at: at})
	if s.fail {
		return errors.New("synth exhausted")
	}
	for _, n := range cp {
		s.on[n] = true
	}
	return nil
}

func (s *fakeSynth) Release(notes []music.Pitch, at time.Time) error {
	cp := make([]music.Pitch, len(notes))
	copy(cp, notes)
	s.calls = append(s.calls, synthCall{kind: "release", notes: cp, at: at})
	if s.fail {
		return errors.New("synth exhausted")
	}
	for _, n := range cp {
		delete(s.on, n)
	}
	return nil
}

func (s *fakeSynth) ReleaseAll(at time.Time) error {
	s.calls = append(s.calls, synthCall{kind: "releaseAll", at: at})
	if s.fail {
		return errors.New("synth exhausted")
	}
	s.on = make(map[music.Pitch]bool)
	return nil
}

func (s *fakeSynth) Glide(from, to music.Pitch, at time.Time) error {
	s.calls = append(s.calls, synthCall{kind: "glide", from: from, to: to, at: at})
	if s.fail {
		return errors.New("synth exhausted")
	}
	delete(s.on, from)
	s.on[to] = true
	return nil
}

func (s *fakeSynth) count(kind string) int {
	n := 0
	for _, c := range s.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (s *fakeSynth) last(kind string) (synthCall, bool) {
	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].kind == kind {
			return s.calls[i], true
		}
	}
	return synthCall{}, false
}

// attacked returns every note ever passed to Attack, in call order
func (s *fakeSynth) attacked() []music.Pitch {
	var out []music.Pitch
	for _, c := range s.calls {
		if c.kind == "attack" {
			out = append(out, c.notes...)
		}
	}
	return out
}

// settle walks an allocator through moving, settling and settled on
// the given chord, returning the time after the settle tick
func settle(a *Allocator, c music.Chord, t time.Time) time.Time {
	a.Update(c, 1.0, t)
	t = t.Add(50 * time.Millisecond)
	a.Update(c, 0.0, t)
	t = t.Add(300 * time.Millisecond)
	a.Tick(t)
	return t
}
