package synth

import (
	"container/heap"
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"airchord/debug"
)

// SendFunc delivers one raw message to the synthesizer. OpenPort
// returns one backed by a real MIDI output; tests and dry runs inject
// their own.
type SendFunc func(gomidi.Message) error

// All-notes-off controller number
const ccAllNotesOff = 123

// ErrClosed is returned when scheduling against a player whose run
// loop has exited
var ErrClosed = errors.New("synth: player closed")

// Player owns the time-ordered event queue and the single goroutine
// that drains it into the MIDI output. Scheduling is safe from any
// goroutine; in practice the engine loop is the only caller.
type Player struct {
	send SendFunc

	mu       sync.Mutex
	queue    eventHeap
	channels map[uint8]bool // channels that ever saw traffic
	closed   bool

	wake chan struct{}
}

// NewPlayer builds a player that delivers through send
func NewPlayer(send SendFunc) *Player {
	return &Player{
		send:     send,
		channels: make(map[uint8]bool),
		wake:     make(chan struct{}, 1),
	}
}

// Schedule queues an event for delivery at its timestamp
func (p *Player) Schedule(ev Event) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	heap.Push(&p.queue, ev)
	p.channels[ev.Channel] = true
	p.mu.Unlock()

	// Nudge the run loop in case this event is due sooner than the
	// one it is waiting on
	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the queued event count
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// Run drains the queue until the context ends, sleeping until the next
// event is due. On exit it silences every channel that saw traffic.
func (p *Player) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer p.shutdown()

	for {
		next, ok := p.peekTime()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-p.wake:
			}
			continue
		}

		if wait := time.Until(next); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-p.wake:
				// An earlier event may have arrived; re-peek
				timer.Stop()
				continue
			case <-timer.C:
			}
		}

		p.playDue(time.Now())
	}
}

func (p *Player) peekTime() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queue.Len() == 0 {
		return time.Time{}, false
	}
	return p.queue[0].At, true
}

// playDue pops and dispatches every event due at or before now,
// returning how many were played. Heap order guarantees time order
// and, within one instant, releases before attacks.
func (p *Player) playDue(now time.Time) int {
	played := 0
	for {
		p.mu.Lock()
		if p.queue.Len() == 0 || p.queue[0].At.After(now) {
			p.mu.Unlock()
			return played
		}
		ev := heap.Pop(&p.queue).(Event)
		p.mu.Unlock()

		p.dispatch(ev)
		played++
	}
}

func (p *Player) dispatch(ev Event) {
	switch ev.Kind {
	case KindReleaseAll:
		p.trySend(gomidi.ControlChange(ev.Channel, ccAllNotesOff, 0))
	case KindRelease:
		for _, n := range ev.Notes {
			p.trySend(gomidi.NoteOff(ev.Channel, n))
		}
	case KindControl:
		p.trySend(gomidi.ControlChange(ev.Channel, ev.Control, ev.Value))
	case KindProgram:
		p.trySend(gomidi.ProgramChange(ev.Channel, ev.Program))
	case KindGlide:
		// Overlap the new note with the old one: a portamento-enabled
		// channel slides instead of re-attacking
		p.trySend(gomidi.NoteOn(ev.Channel, ev.To, ev.Velocity))
		p.trySend(gomidi.NoteOff(ev.Channel, ev.From))
	case KindAttack:
		for _, n := range ev.Notes {
			p.trySend(gomidi.NoteOn(ev.Channel, n, ev.Velocity))
		}
	}
}

func (p *Player) trySend(msg gomidi.Message) {
	if p.send == nil {
		return
	}
	if err := p.send(msg); err != nil {
		debug.Log("SYNTH", "send failed: %v", err)
	}
}

// shutdown marks the player closed and silences used channels
func (p *Player) shutdown() {
	p.mu.Lock()
	p.closed = true
	used := make([]uint8, 0, len(p.channels))
	for ch := range p.channels {
		used = append(used, ch)
	}
	p.queue = nil
	p.mu.Unlock()

	for _, ch := range used {
		p.trySend(gomidi.ControlChange(ch, ccAllNotesOff, 0))
	}
}
