package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"airchord/engine"
	"airchord/music"
	"airchord/synth"
	"airchord/theme"
	"airchord/voice"
	"airchord/widgets"
)

const meterWidth = 24

type Model struct {
	Engine *engine.Engine
	Theme  *theme.Theme

	// Program cycling state; the engine only sees program numbers
	melodyProg  int
	harmonyProg int

	quitting bool
}

type UpdateMsg struct{}

// NewModel builds the UI around a running engine. The program names
// seed the p/P cycling position.
func NewModel(e *engine.Engine, th *theme.Theme, melodyProgram, harmonyProgram string) Model {
	return Model{
		Engine:      e,
		Theme:       th,
		melodyProg:  programIndex(melodyProgram),
		harmonyProg: programIndex(harmonyProgram),
	}
}

func programIndex(name string) int {
	for i, n := range synth.ProgramNames() {
		if n == name {
			return i
		}
	}
	return 0
}

// ListenForUpdates wakes the UI whenever the engine publishes
func ListenForUpdates(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		<-e.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Engine)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Engine.Panic()
			return m, tea.Quit

		case "r":
			m.Engine.CycleRoot()

		case "s":
			m.Engine.CycleScale()

		case "o":
			m.Engine.OctaveDown()

		case "O":
			m.Engine.OctaveUp()

		case "7":
			m.Engine.ToggleSevenths()

		case "m":
			m.Engine.Panic()

		case "d":
			m.Engine.ToggleRecording()

		case "p":
			names := synth.ProgramNames()
			m.melodyProg = (m.melodyProg + 1) % len(names)
			m.Engine.SetMelodyProgram(synth.GetProgram(names[m.melodyProg]).PC)

		case "P":
			names := synth.ProgramNames()
			m.harmonyProg = (m.harmonyProg + 1) % len(names)
			m.Engine.SetHarmonyProgram(synth.GetProgram(names[m.harmonyProg]).PC)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Engine.Snapshot()
	sym := m.Theme.Symbols

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	recStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())

	// Header: key signature plus capture state
	seventh := ""
	if snap.Sevenths {
		seventh = "  7ths"
	}
	header := headerStyle.Render(fmt.Sprintf("airchord  %s %s  oct%d%s",
		snap.Key.Root.Name(), snap.Key.Scale.Name, snap.Key.Octave, seventh))
	if snap.Recording {
		header += "  " + recStyle.Render(fmt.Sprintf("%c REC", sym.Recording))
	}

	names := synth.ProgramNames()
	melody := m.axisPanel("MELODY", "right hand", snap.Melody, false, names[m.melodyProg])
	harmony := m.axisPanel("HARMONY", "left hand", snap.Harmony, true, names[m.harmonyProg])
	panels := lipgloss.JoinHorizontal(lipgloss.Top, melody, "    ", harmony)

	// Intensity flashes, colored along the palette ramp
	intensity := widgets.LabeledMeter("explosion", snap.Explosion, meterWidth,
		m.Theme.Color(snap.Explosion), sym.MeterFill, sym.MeterEmpty) + "\n" +
		widgets.LabeledMeter("pulse", snap.Pulse, meterWidth,
			m.Theme.Color(snap.Pulse), sym.MeterFill, sym.MeterEmpty)

	keyboard := m.keyboard(snap)

	help := dimStyle.Render(widgets.RenderKeyHelp([]widgets.KeySection{
		{Keys: []widgets.KeyBinding{
			{Key: "r / s", Desc: "cycle root / scale"},
			{Key: "o / O", Desc: "octave down / up"},
			{Key: "7", Desc: "toggle sevenths"},
			{Key: "p / P", Desc: "melody / harmony sound"},
			{Key: "d", Desc: "record frames"},
			{Key: "m", Desc: "silence everything"},
			{Key: "q", Desc: "quit"},
		}},
	}))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(panels)
	out.WriteString("\n\n")
	out.WriteString(intensity)
	out.WriteString("\n\n")
	out.WriteString(keyboard)
	out.WriteString("\n\n")
	out.WriteString(help)
	if snap.Recording {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render("recording " + snap.RecordingPath))
	}

	return out.String()
}

// axisPanel renders one hand's status block
func (m Model) axisPanel(title, hand string, ax engine.AxisSnapshot, showPhase bool, program string) string {
	sym := m.Theme.Symbols
	titleStyle := lipgloss.NewStyle().Foreground(m.Theme.FG()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	labelStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)

	presence := widgets.Swatch(m.Theme.Muted(), sym.HandAbsent)
	if ax.Present {
		presence = widgets.Swatch(m.Theme.Success(), sym.HandPresent)
	}

	label := ax.Label
	if label == "" {
		label = "--"
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("%s %s %s", presence, titleStyle.Render(title), dimStyle.Render(hand)))
	lines = append(lines, labelStyle.Render(label))

	if showPhase {
		lines = append(lines, m.phaseLine(ax.Phase))
	} else {
		lines = append(lines, dimStyle.Render("legato glide"))
	}

	vel := ax.Velocity
	if vel > 1 {
		vel = 1
	}
	lines = append(lines, widgets.LabeledMeter("speed", vel, meterWidth,
		m.Theme.Color(0.4+vel/2), sym.MeterFill, sym.MeterEmpty))

	volNorm := (ax.Volume + 40) / 40
	lines = append(lines, widgets.LabeledMeter("volume", volNorm, meterWidth,
		m.Theme.Cursor(), sym.MeterFill, sym.MeterEmpty))

	lines = append(lines, dimStyle.Render("sound: "+program))

	return strings.Join(lines, "\n")
}

func (m Model) phaseLine(p voice.Phase) string {
	var color lipgloss.Color
	switch p {
	case voice.PhaseMoving:
		color = m.Theme.Warning()
	case voice.PhaseSettling:
		color = m.Theme.Cursor()
	default:
		color = m.Theme.Success()
	}
	return lipgloss.NewStyle().Foreground(color).Render(p.String())
}

// keyboard renders the full playing range: chord register through the
// two melodic octaves
func (m Model) keyboard(snap engine.Snapshot) string {
	low := music.NewPitch(music.C, snap.Key.Octave-1)
	high := music.NewPitch(music.B, snap.Key.Octave+1)

	sounding := append([]music.Pitch{}, snap.Melody.Sounding...)
	sounding = append(sounding, snap.Harmony.Sounding...)

	return widgets.Keyboard(low, high, sounding, widgets.KeyboardStyle{
		Idle:          m.Theme.Symbols.KeyIdle,
		Sounding:      m.Theme.Symbols.KeySounding,
		IdleColor:     m.Theme.Muted(),
		SoundingColor: m.Theme.Success(),
	})
}
