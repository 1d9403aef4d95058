package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"airchord/debug"
	"airchord/engine"
	"airchord/gesture"
	"airchord/music"
	"airchord/synth"
	"airchord/tracker"
	"airchord/voice"
)

// MusicConfig selects the key the quantizers play in
type MusicConfig struct {
	Root      string  `json:"root"`
	Scale     string  `json:"scale"`
	Octave    int     `json:"octave"`
	Sevenths  bool    `json:"sevenths,omitempty"`
	ChordLow  float64 `json:"chordLow"`
	ChordHigh float64 `json:"chordHigh"`
}

// FilterConfig tunes change detection per axis
type FilterConfig struct {
	NoteIntervalMs  int     `json:"noteIntervalMs"`
	NoteThreshold   float64 `json:"noteThreshold"`
	ChordIntervalMs int     `json:"chordIntervalMs"`
	ChordThreshold  float64 `json:"chordThreshold"`
}

// VoiceConfig tunes the polyphony allocator
type VoiceConfig struct {
	MaxVoices     int     `json:"maxVoices"`
	FastVelocity  float64 `json:"fastVelocity"`
	CrawlVelocity float64 `json:"crawlVelocity"`
	SettleMs      int     `json:"settleMs"`
	AttackDelayMs int     `json:"attackDelayMs"`
}

// SynthConfig selects the MIDI output and per-axis channels
type SynthConfig struct {
	PortName       string  `json:"portName,omitempty"`
	MelodyChannel  int     `json:"melodyChannel"`
	HarmonyChannel int     `json:"harmonyChannel"`
	MelodyProgram  string  `json:"melodyProgram"`
	HarmonyProgram string  `json:"harmonyProgram"`
	Glide          float64 `json:"glide"`
}

// TrackerConfig tunes the frame ingest server
type TrackerConfig struct {
	Addr          string `json:"addr"`
	BufferSize    int    `json:"bufferSize,omitempty"`
	AbsentAfterMs int    `json:"absentAfterMs,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	PaletteFile string `json:"paletteFile,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Music   MusicConfig   `json:"music"`
	Filters FilterConfig  `json:"filters"`
	Voices  VoiceConfig   `json:"voices"`
	Synth   SynthConfig   `json:"synth"`
	Tracker TrackerConfig `json:"tracker"`
	UI      UIConfig      `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Music: MusicConfig{
			Root:      "C",
			Scale:     "major",
			Octave:    4,
			ChordLow:  0.15,
			ChordHigh: 0.85,
		},
		Filters: FilterConfig{
			NoteIntervalMs:  80,
			NoteThreshold:   0.04,
			ChordIntervalMs: 150,
			ChordThreshold:  0.08,
		},
		Voices: VoiceConfig{
			MaxVoices:     6,
			FastVelocity:  0.6,
			CrawlVelocity: 0.15,
			SettleMs:      200,
			AttackDelayMs: 30,
		},
		Synth: SynthConfig{
			MelodyChannel:  0,
			HarmonyChannel: 1,
			MelodyProgram:  synth.DefaultMelodyProgram,
			HarmonyProgram: synth.DefaultHarmonyProgram,
			Glide:          0.35,
		},
		Tracker: TrackerConfig{
			Addr: ":8433",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "airchord"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Fields the file omits keep their defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Resolved is a config validated once into the concrete values the
// rest of the program runs on. Past this point nothing re-checks
// configuration.
type Resolved struct {
	Engine  engine.Config
	Tracker tracker.Config

	PortName       string
	MelodyChannel  uint8
	HarmonyChannel uint8
	MelodyProgram  uint8
	HarmonyProgram uint8
	Glide          float64
}

// Resolve validates the config and builds the runtime views. Typos in
// names fail loudly; out-of-range numerics clamp to usable values.
func (c *Config) Resolve() (*Resolved, error) {
	root, err := music.ParsePitchClass(c.Music.Root)
	if err != nil {
		return nil, fmt.Errorf("music.root: %w", err)
	}
	if _, ok := music.Scales[c.Music.Scale]; !ok {
		return nil, fmt.Errorf("music.scale: unknown scale %q (have %s)",
			c.Music.Scale, strings.Join(music.ScaleNames(), ", "))
	}

	octave := c.Music.Octave
	if octave < music.MinOctave+1 {
		octave = music.MinOctave + 1
	}
	if octave > music.MaxOctave-2 {
		octave = music.MaxOctave - 2
	}
	if octave != c.Music.Octave {
		debug.Log("CONFIG", "music.octave %d out of range, using %d", c.Music.Octave, octave)
	}

	lo, hi := c.Music.ChordLow, c.Music.ChordHigh
	if !(lo >= 0 && hi <= 1 && lo < hi) {
		def := DefaultConfig().Music
		lo, hi = def.ChordLow, def.ChordHigh
		debug.Log("CONFIG", "music.chordLow/chordHigh invalid, using [%.2f, %.2f]", lo, hi)
	}

	key := music.Key{
		Root:      root,
		Scale:     music.GetScale(c.Music.Scale),
		Octave:    octave,
		ChordLow:  lo,
		ChordHigh: hi,
	}

	voices, err := c.resolveVoices()
	if err != nil {
		return nil, err
	}

	if c.Synth.MelodyChannel < 0 || c.Synth.MelodyChannel > 15 ||
		c.Synth.HarmonyChannel < 0 || c.Synth.HarmonyChannel > 15 {
		return nil, fmt.Errorf("synth: channels must be 0-15")
	}
	if c.Synth.MelodyChannel == c.Synth.HarmonyChannel {
		return nil, fmt.Errorf("synth: melody and harmony need distinct channels")
	}

	glide := c.Synth.Glide
	if glide < 0 {
		glide = 0
	}
	if glide > 1 {
		glide = 1
	}

	r := &Resolved{
		Engine: engine.Config{
			Key:         key,
			Sevenths:    c.Music.Sevenths,
			NoteFilter:  c.noteFilter(),
			ChordFilter: c.chordFilter(),
			Voices:      voices,
		},
		Tracker:        c.resolveTracker(),
		PortName:       c.Synth.PortName,
		MelodyChannel:  uint8(c.Synth.MelodyChannel),
		HarmonyChannel: uint8(c.Synth.HarmonyChannel),
		MelodyProgram:  synth.GetProgram(c.Synth.MelodyProgram).PC,
		HarmonyProgram: synth.GetProgram(c.Synth.HarmonyProgram).PC,
		Glide:          glide,
	}
	return r, nil
}

func (c *Config) resolveVoices() (voice.Config, error) {
	def := voice.DefaultConfig()
	v := voice.Config{
		MaxVoices:     c.Voices.MaxVoices,
		FastVelocity:  c.Voices.FastVelocity,
		CrawlVelocity: c.Voices.CrawlVelocity,
		SettleAfter:   time.Duration(c.Voices.SettleMs) * time.Millisecond,
		AttackDelay:   time.Duration(c.Voices.AttackDelayMs) * time.Millisecond,
	}
	if v.MaxVoices < 1 {
		debug.Log("CONFIG", "voices.maxVoices %d invalid, using 1", v.MaxVoices)
		v.MaxVoices = 1
	}
	if v.FastVelocity <= 0 {
		v.FastVelocity = def.FastVelocity
	}
	if v.CrawlVelocity < 0 {
		v.CrawlVelocity = def.CrawlVelocity
	}
	if v.CrawlVelocity >= v.FastVelocity {
		return voice.Config{}, fmt.Errorf("voices: crawlVelocity %.2f must be below fastVelocity %.2f",
			v.CrawlVelocity, v.FastVelocity)
	}
	if v.SettleAfter <= 0 {
		v.SettleAfter = def.SettleAfter
	}
	if v.AttackDelay < 0 {
		v.AttackDelay = def.AttackDelay
	}
	return v, nil
}

func (c *Config) noteFilter() gesture.FilterConfig {
	def := DefaultConfig().Filters
	f := gesture.FilterConfig{
		MinInterval: time.Duration(c.Filters.NoteIntervalMs) * time.Millisecond,
		Threshold:   c.Filters.NoteThreshold,
	}
	if f.MinInterval <= 0 {
		f.MinInterval = time.Duration(def.NoteIntervalMs) * time.Millisecond
	}
	if f.Threshold <= 0 {
		f.Threshold = def.NoteThreshold
	}
	return f
}

func (c *Config) chordFilter() gesture.FilterConfig {
	def := DefaultConfig().Filters
	f := gesture.FilterConfig{
		MinInterval: time.Duration(c.Filters.ChordIntervalMs) * time.Millisecond,
		Threshold:   c.Filters.ChordThreshold,
	}
	if f.MinInterval <= 0 {
		f.MinInterval = time.Duration(def.ChordIntervalMs) * time.Millisecond
	}
	if f.Threshold <= 0 {
		f.Threshold = def.ChordThreshold
	}
	return f
}

func (c *Config) resolveTracker() tracker.Config {
	t := tracker.DefaultConfig()
	if c.Tracker.Addr != "" {
		t.Addr = c.Tracker.Addr
	}
	if c.Tracker.BufferSize > 0 {
		t.Buffer = c.Tracker.BufferSize
	}
	if c.Tracker.AbsentAfterMs > 0 {
		t.AbsentAfter = time.Duration(c.Tracker.AbsentAfterMs) * time.Millisecond
	}
	return t
}
