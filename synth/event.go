package synth

import "time"

// Kind identifies what an event does. The numeric order is the apply
// order at equal timestamps: releases land before attacks so a voice
// never briefly sounds at two pitches from competing instructions.
type Kind int

const (
	KindReleaseAll Kind = iota
	KindRelease
	KindControl
	KindProgram
	KindGlide
	KindAttack
)

func (k Kind) String() string {
	switch k {
	case KindReleaseAll:
		return "releaseAll"
	case KindRelease:
		return "release"
	case KindControl:
		return "control"
	case KindProgram:
		return "program"
	case KindGlide:
		return "glide"
	case KindAttack:
		return "attack"
	default:
		return "unknown"
	}
}

// Event is one scheduled instruction for the external synthesizer
type Event struct {
	At      time.Time
	Kind    Kind
	Channel uint8

	Notes    []uint8 // attack, release
	Velocity uint8   // attack, glide
	From, To uint8   // glide
	Control  uint8   // control: CC number
	Value    uint8   // control: CC value
	Program  uint8   // program
}

// eventHeap is a min-heap ordered by time, then by Kind
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if !h[i].At.Equal(h[j].At) {
		return h[i].At.Before(h[j].At)
	}
	return h[i].Kind < h[j].Kind
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(Event)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}
