package music

// Degree is one entry of a scale's chord progression table: the chord
// quality built on that scale degree, and its 7th-chord upgrade
type Degree struct {
	Triad   ChordType
	Seventh ChordType
}

// Scale is a named set of semitone offsets from a root, plus the chord
// quality assigned to each degree. ID is the registry key a Scale was
// looked up under; Name is for display.
type Scale struct {
	ID        string
	Name      string
	Intervals []int
	Degrees   []Degree
}

// Scales contains all built-in scales
var Scales = map[string]Scale{
	"major": {
		ID:        "major",
		Name:      "Major",
		Intervals: []int{0, 2, 4, 5, 7, 9, 11},
		Degrees: []Degree{
			{Major, Major7},       // I
			{Minor, Minor7},       // ii
			{Minor, Minor7},       // iii
			{Major, Major7},       // IV
			{Major, Dominant7},    // V
			{Minor, Minor7},       // vi
			{Diminished, Diminished7}, // vii
		},
	},
	"minor": {
		ID:        "minor",
		Name:      "Natural Minor",
		Intervals: []int{0, 2, 3, 5, 7, 8, 10},
		Degrees: []Degree{
			{Minor, Minor7},       // i
			{Diminished, Diminished7}, // ii
			{Major, Major7},       // III
			{Minor, Minor7},       // iv
			{Minor, Minor7},       // v
			{Major, Major7},       // VI
			{Major, Dominant7},    // VII
		},
	},
	"harmonic-minor": {
		ID:        "harmonic-minor",
		Name:      "Harmonic Minor",
		Intervals: []int{0, 2, 3, 5, 7, 8, 11},
		Degrees: []Degree{
			{Minor, Minor7},       // i
			{Diminished, Diminished7}, // ii
			{Augmented, Augmented},    // III+
			{Minor, Minor7},       // iv
			{Major, Dominant7},    // V
			{Major, Major7},       // VI
			{Diminished, Diminished7}, // vii
		},
	},
	"dorian": {
		ID:        "dorian",
		Name:      "Dorian",
		Intervals: []int{0, 2, 3, 5, 7, 9, 10},
		Degrees: []Degree{
			{Minor, Minor7},       // i
			{Minor, Minor7},       // ii
			{Major, Major7},       // III
			{Major, Dominant7},    // IV
			{Minor, Minor7},       // v
			{Diminished, Diminished7}, // vi
			{Major, Major7},       // VII
		},
	},
	"mixolydian": {
		ID:        "mixolydian",
		Name:      "Mixolydian",
		Intervals: []int{0, 2, 4, 5, 7, 9, 10},
		Degrees: []Degree{
			{Major, Dominant7},    // I
			{Minor, Minor7},       // ii
			{Diminished, Diminished7}, // iii
			{Major, Major7},       // IV
			{Minor, Minor7},       // v
			{Minor, Minor7},       // vi
			{Major, Major7},       // VII
		},
	},
	"pentatonic": {
		ID:        "pentatonic",
		Name:      "Major Pentatonic",
		Intervals: []int{0, 2, 4, 7, 9},
		Degrees: []Degree{
			{Major, Major7},    // I
			{Minor, Minor7},    // ii
			{Minor, Minor7},    // iii
			{Major, Dominant7}, // V
			{Minor, Minor7},    // vi
		},
	},
	"minor-pentatonic": {
		ID:        "minor-pentatonic",
		Name:      "Minor Pentatonic",
		Intervals: []int{0, 3, 5, 7, 10},
		Degrees: []Degree{
			{Minor, Minor7},    // i
			{Major, Major7},    // III
			{Minor, Minor7},    // iv
			{Minor, Minor7},    // v
			{Major, Dominant7}, // VII
		},
	},
	"blues": {
		ID:        "blues",
		Name:      "Blues",
		Intervals: []int{0, 3, 5, 6, 7, 10},
		Degrees: []Degree{
			{Major, Dominant7},    // I
			{Major, Dominant7},    // III
			{Sus4, Dominant7},     // IV
			{Diminished, Diminished7}, // bV
			{Major, Dominant7},    // V
			{Minor, Minor7},       // VII
		},
	},
}

// ScaleNames returns the list of available scale names
func ScaleNames() []string {
	return []string{
		"major", "minor", "harmonic-minor", "dorian",
		"mixolydian", "pentatonic", "minor-pentatonic", "blues",
	}
}

// GetScale returns a scale by name, defaulting to major if not found
func GetScale(name string) Scale {
	if s, ok := Scales[name]; ok {
		return s
	}
	return Scales["major"]
}

// DefaultScale is the default scale name
const DefaultScale = "major"
