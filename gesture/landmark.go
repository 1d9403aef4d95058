package gesture

import (
	"math"
	"time"
)

// Side identifies which hand a landmark set belongs to. The values
// match the handedness labels the tracking provider sends.
type Side string

const (
	Left  Side = "Left"
	Right Side = "Right"
)

// Landmark indices in the provider's 21-point hand model
const (
	WristIndex    = 0
	ThumbTipIndex = 4
	IndexTipIndex = 8

	// HandLandmarks is the full landmark count per hand
	HandLandmarks = 21
)

// Landmark is one tracked point in normalized image coordinates.
// X and Y are in [0,1] with the origin at the top-left; Z is relative
// depth with the wrist as reference.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is one detected hand: its side plus the landmark array.
// Accessors tolerate short or missing arrays, returning the zero
// landmark rather than panicking on malformed input.
type Hand struct {
	Side      Side       `json:"side"`
	Landmarks []Landmark `json:"landmarks"`
}

func (h Hand) landmark(i int) Landmark {
	if i < 0 || i >= len(h.Landmarks) {
		return Landmark{}
	}
	return h.Landmarks[i]
}

// Wrist returns the wrist landmark
func (h Hand) Wrist() Landmark {
	return h.landmark(WristIndex)
}

// ThumbTip returns the thumb fingertip landmark
func (h Hand) ThumbTip() Landmark {
	return h.landmark(ThumbTipIndex)
}

// IndexTip returns the index fingertip landmark
func (h Hand) IndexTip() Landmark {
	return h.landmark(IndexTipIndex)
}

// Pinch returns the Euclidean thumb-index distance in normalized
// space, the scalar that drives volume control
func (h Hand) Pinch() float64 {
	a, b := h.ThumbTip(), h.IndexTip()
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Frame is one batch of tracking output: zero or more hands observed
// at the same instant
type Frame struct {
	Seq     uint64    `json:"seq"`
	At      time.Time `json:"at"`
	Session string    `json:"session,omitempty"`
	Hands   []Hand    `json:"hands"`
}

// Hand returns the frame's hand for the given side, if present
func (f Frame) Hand(side Side) (Hand, bool) {
	for _, h := range f.Hands {
		if h.Side == side {
			return h, true
		}
	}
	return Hand{}, false
}
