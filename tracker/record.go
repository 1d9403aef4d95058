package tracker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"airchord/gesture"
)

// RecordingInfo describes a stored session (for listing)
type RecordingInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// RecordingsDir returns the recordings directory path
func RecordingsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "airchord", "recordings"), nil
}

// ListRecordings returns stored sessions, newest first
func ListRecordings() ([]RecordingInfo, error) {
	dir, err := RecordingsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RecordingInfo{}, nil
		}
		return nil, err
	}

	var recs []RecordingInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		// Parse filename: 2024-01-15_14-30-00.jsonl or 2024-01-15_14-30-00_name.jsonl
		baseName := strings.TrimSuffix(name, ".jsonl")

		// Timestamp is first 19 chars: 2006-01-02_15-04-05
		if len(baseName) < 19 {
			continue
		}

		ts, err := time.Parse("2006-01-02_15-04-05", baseName[:19])
		if err != nil {
			// Not a timestamped file, skip
			continue
		}

		recName := ""
		if len(baseName) > 20 && baseName[19] == '_' {
			recName = baseName[20:]
		}

		recs = append(recs, RecordingInfo{
			Filename:  name,
			Name:      recName,
			Timestamp: ts,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Timestamp.After(recs[j].Timestamp)
	})

	return recs, nil
}

// Recorder appends frames to a JSONL file, one frame per line. It is
// safe to feed from the ingest path while the engine consumes the
// same frames.
type Recorder struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *bufio.Writer
	enc  *json.Encoder
	n    int
}

// NewRecorder opens a timestamp-named recording in the recordings
// directory. An optional name becomes a filename suffix.
func NewRecorder(name string) (*Recorder, error) {
	dir, err := RecordingsDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	filename := time.Now().Format("2006-01-02_15-04-05")
	if name != "" {
		filename += "_" + sanitizeFilename(name)
	}
	filename += ".jsonl"

	return NewRecorderAt(filepath.Join(dir, filename))
}

// NewRecorderAt opens a recording at an explicit path
func NewRecorderAt(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	w := bufio.NewWriter(f)
	return &Recorder{
		path: path,
		f:    f,
		w:    w,
		enc:  json.NewEncoder(w),
	}, nil
}

// Write appends one frame
func (r *Recorder) Write(f gesture.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return fmt.Errorf("recording %s already closed", r.path)
	}
	if err := r.enc.Encode(f); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	r.n++
	return nil
}

// Count returns frames written so far
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Path returns the recording file path
func (r *Recorder) Path() string {
	return r.path
}

// Close flushes and closes the file
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	flushErr := r.w.Flush()
	closeErr := r.f.Close()
	r.f = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, ":", "-")
	name = strings.ReplaceAll(name, "*", "")
	name = strings.ReplaceAll(name, "?", "")
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "<", "")
	name = strings.ReplaceAll(name, ">", "")
	name = strings.ReplaceAll(name, "|", "")
	return name
}
