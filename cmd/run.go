package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"airchord/config"
	"airchord/debug"
	"airchord/engine"
	"airchord/synth"
	"airchord/theme"
	"airchord/tracker"
	"airchord/tui"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the instrument",
	Long:  `Starts the tracker server, connects the synth, and opens the TUI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstrument()
	},
}

func runInstrument() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	r, err := cfg.Resolve()
	if err != nil {
		return err
	}

	palette, err := theme.Load(cfg.UI.PaletteFile)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	sender := synth.NewLazySender(r.PortName)
	if err := sender.TryOpen(); err != nil {
		fmt.Printf("synth not connected: %v (will keep trying; see `airchord ports`)\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	player := synth.NewPlayer(sender.Send)
	go player.Run(ctx)

	melody := synth.NewChannel(player, r.MelodyChannel)
	harmony := synth.NewChannel(player, r.HarmonyChannel)
	melody.Program(r.MelodyProgram)
	harmony.Program(r.HarmonyProgram)
	melody.EnableGlide(r.Glide)

	server := tracker.NewServer(r.Tracker)
	go func() {
		if err := server.Run(ctx); err != nil {
			debug.Log("TRACKER", "server stopped: %v", err)
		}
	}()

	eng := engine.New(r.Engine, server.Frames(), melody, harmony)
	go eng.Run(ctx)

	fmt.Println("airchord")
	fmt.Printf("POST hand frames to http://localhost%s/v1/frames\n", r.Tracker.Addr)
	fmt.Println("")

	m := tui.NewModel(eng, th, cfg.Synth.MelodyProgram, cfg.Synth.HarmonyProgram)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
