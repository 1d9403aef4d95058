package gesture

import (
	"math"
	"time"
)

// Normalize clamps a raw coordinate into [0,1]. Tracking noise can
// deliver NaN or infinite values; those map to a neutral 0.5. Never
// fails.
func Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FilterConfig tunes one axis's change detection
type FilterConfig struct {
	// MinInterval is the minimum time between emissions
	MinInterval time.Duration
	// Threshold is the positional delta that bypasses MinInterval
	Threshold float64
}

// ChangeFilter decides whether a freshly quantized symbol is a
// significant change worth acting on. A candidate is accepted when it
// differs from the last emitted symbol AND either the minimum interval
// has elapsed or the position has moved past the distance threshold
// since the last accepted sample. Time alone would feel laggy on fast
// sweeps; distance alone would retrigger on camera jitter near a
// quantization boundary.
type ChangeFilter struct {
	cfg FilterConfig

	emitted         bool
	lastEmitted     string
	lastEmitTime    time.Time
	lastSignificant float64
}

// NewChangeFilter returns a filter that has not yet emitted, so the
// first offered symbol is always accepted
func NewChangeFilter(cfg FilterConfig) *ChangeFilter {
	return &ChangeFilter{cfg: cfg}
}

// Offer presents a candidate symbol at a position. It returns true
// when the caller should act on the change, updating the filter state;
// false means wait. Pure decision over in-memory state, never fails.
func (f *ChangeFilter) Offer(symbol string, pos float64, now time.Time) bool {
	if f.emitted {
		if symbol == f.lastEmitted {
			return false
		}
		elapsed := now.Sub(f.lastEmitTime) >= f.cfg.MinInterval
		moved := math.Abs(pos-f.lastSignificant) > f.cfg.Threshold
		if !elapsed && !moved {
			return false
		}
	}
	f.emitted = true
	f.lastEmitted = symbol
	f.lastEmitTime = now
	f.lastSignificant = pos
	return true
}

// Last returns the most recently emitted symbol, or "" before the
// first emission
func (f *ChangeFilter) Last() string {
	if !f.emitted {
		return ""
	}
	return f.lastEmitted
}

// Reset clears the filter back to its initial state. Called when the
// driving hand disappears so the next sample re-emits immediately.
func (f *ChangeFilter) Reset() {
	f.emitted = false
	f.lastEmitted = ""
	f.lastEmitTime = time.Time{}
	f.lastSignificant = 0
}
