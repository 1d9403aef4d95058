package synth

// Program is a General MIDI patch preset
type Program struct {
	Name string
	PC   uint8 // program change number, 0-based
}

// Programs contains all available patch presets
var Programs = map[string]Program{
	"lead": {
		Name: "Square Lead",
		PC:   80,
	},
	"keys": {
		Name: "Electric Piano",
		PC:   4,
	},
	"pad": {
		Name: "Warm Pad",
		PC:   89,
	},
	"pluck": {
		Name: "Pizzicato Strings",
		PC:   45,
	},
	"organ": {
		Name: "Drawbar Organ",
		PC:   16,
	},
	"strings": {
		Name: "String Ensemble",
		PC:   48,
	},
	"bass": {
		Name: "Synth Bass",
		PC:   38,
	},
}

// ProgramNames returns the list of available preset names
func ProgramNames() []string {
	return []string{"lead", "keys", "pad", "pluck", "organ", "strings", "bass"}
}

// GetProgram returns a preset by name, defaulting to the lead patch
func GetProgram(name string) Program {
	if p, ok := Programs[name]; ok {
		return p
	}
	return Programs[DefaultMelodyProgram]
}

// Default presets per axis role
const (
	DefaultMelodyProgram  = "lead"
	DefaultHarmonyProgram = "pad"
)
