package tracker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"airchord/gesture"
)

// Replayer feeds a stored recording back into the engine as if the
// tracking client were live
type Replayer struct {
	frames []gesture.Frame
}

// LoadRecording reads a JSONL recording. A bare filename resolves
// against the recordings directory; anything with a path separator is
// taken as-is.
func LoadRecording(path string) (*Replayer, error) {
	if filepath.Base(path) == path {
		dir, err := RecordingsDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	var frames []gesture.Frame
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBody)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var frame gesture.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}

	return &Replayer{frames: frames}, nil
}

// Len returns the frame count
func (r *Replayer) Len() int {
	return len(r.frames)
}

// Frames returns a copy of the loaded frames
func (r *Replayer) Frames() []gesture.Frame {
	out := make([]gesture.Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Play emits frames on out, pacing gaps by the recorded timestamps
// scaled by speed (2 plays twice as fast; <= 0 means no pacing). Each
// frame is re-stamped to the emit time so downstream timers see one
// consistent clock.
func (r *Replayer) Play(ctx context.Context, out chan<- gesture.Frame, speed float64) error {
	var prev time.Time
	for i, f := range r.frames {
		if i > 0 && speed > 0 {
			gap := f.At.Sub(prev)
			if gap > 0 {
				wait := time.Duration(float64(gap) / speed)
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
		}
		prev = f.At

		f.At = time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- f:
		}
	}
	return nil
}
