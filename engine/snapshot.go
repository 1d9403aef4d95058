package engine

import (
	"airchord/music"
	"airchord/voice"
)

// AxisSnapshot is one hand's published state
type AxisSnapshot struct {
	Present  bool
	Label    string
	Y        float64
	Velocity float64
	Volume   float64
	Sounding []music.Pitch
	Phase    voice.Phase // harmony only
}

// Snapshot is a point-in-time copy of engine state for rendering.
// Snapshots are values; the UI never shares memory with the engine.
type Snapshot struct {
	Key      music.Key
	Sevenths bool

	Melody  AxisSnapshot
	Harmony AxisSnapshot

	// Visualization impulses in [0,1], decaying between changes
	Explosion float64
	Pulse     float64

	Recording     bool
	RecordingPath string
	FramesSeen    uint64
}
