package gesture

import (
	"math"
	"time"
)

// Weight of the newest sample in the velocity average. Raw frame-to-
// frame velocity is too spiky to gate voice allocation on directly.
const motionSmoothing = 0.6

// Motion estimates how fast an axis is moving, in normalized units per
// second, smoothed with an exponential moving average. The zero value
// is ready to use.
type Motion struct {
	primed   bool
	lastPos  float64
	lastTime time.Time
	velocity float64
}

// Update feeds one position sample and returns the smoothed velocity.
// The first sample after construction or Reset primes the estimator
// and reports zero.
func (m *Motion) Update(pos float64, now time.Time) float64 {
	if !m.primed {
		m.primed = true
		m.lastPos = pos
		m.lastTime = now
		m.velocity = 0
		return 0
	}
	dt := now.Sub(m.lastTime).Seconds()
	if dt <= 0 {
		return m.velocity
	}
	raw := math.Abs(pos-m.lastPos) / dt
	m.velocity = motionSmoothing*raw + (1-motionSmoothing)*m.velocity
	m.lastPos = pos
	m.lastTime = now
	return m.velocity
}

// Velocity returns the current smoothed estimate
func (m *Motion) Velocity() float64 {
	return m.velocity
}

// Reset clears the estimator, to be primed again by the next sample
func (m *Motion) Reset() {
	*m = Motion{}
}
