package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	file    *os.File
	enabled bool
	counts  = make(map[string]int)
)

// LogPath returns where debug output goes when enabled. The TUI owns
// the terminal, so logs go to a file instead of stderr.
func LogPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "airchord", "debug.log")
}

// Enable starts debug logging, truncating any previous log
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	path := LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	file = f
	enabled = true
	write("debug", "=== debug logging started ===")
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// write assumes the caller holds mu and logging is enabled
func write(category, format string, args ...any) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(file, "[%s] %-8s %s\n", ts, category, fmt.Sprintf(format, args...))
	file.Sync() // flush immediately so we see logs even on crash
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || file == nil {
		return
	}
	write(category, format, args...)
}

// LogEvery logs only every nth call with the same category and format.
// Gesture frames arrive at camera rate; use this for anything logged
// per frame.
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || file == nil {
		return
	}
	key := category + format
	counts[key]++
	if c := counts[key]; n > 0 && c%n == 0 {
		write(category, format+" (count=%d)", append(args, c)...)
	}
}
