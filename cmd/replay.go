package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"airchord/config"
	"airchord/engine"
	"airchord/gesture"
	"airchord/music"
	"airchord/synth"
	"airchord/tracker"
)

var (
	replaySpeed  float64
	replaySilent bool
)

func init() {
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0,
		"playback speed multiplier, 0 plays as fast as possible")
	replayCmd.Flags().BoolVar(&replaySilent, "silent", false,
		"log synth calls instead of sending MIDI")
	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   "replay <recording>",
	Short: "Replay a recorded session without the TUI",
	Long: `Feeds a recorded frame file back through the engine. The argument
is a path, or the bare filename of a recording under the config
directory. Useful for regression-checking engine tuning against a
known performance.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return replay(args[0])
	},
}

// initLogger configures slog for headless commands. The TUI owns the
// terminal when running the instrument, so only replay uses this.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debugFlag,
	})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func replay(path string) error {
	logger := initLogger()

	rec, err := tracker.LoadRecording(path)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	r, err := cfg.Resolve()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var melodyOut, harmonyOut engine.Output
	if replaySilent {
		melodyOut = &logOutput{log: logger.With("axis", "melody")}
		harmonyOut = &logOutput{log: logger.With("axis", "harmony")}
	} else {
		send, err := synth.OpenPort(r.PortName)
		if err != nil {
			return err
		}
		player := synth.NewPlayer(send)
		go player.Run(ctx)

		melody := synth.NewChannel(player, r.MelodyChannel)
		harmony := synth.NewChannel(player, r.HarmonyChannel)
		melody.Program(r.MelodyProgram)
		harmony.Program(r.HarmonyProgram)
		melody.EnableGlide(r.Glide)
		melodyOut, harmonyOut = melody, harmony
	}

	frames := make(chan gesture.Frame, 16)
	eng := engine.New(r.Engine, frames, melodyOut, harmonyOut)

	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	logger.Info("replaying", "file", path, "frames", rec.Len(), "speed", replaySpeed)
	start := time.Now()

	err = rec.Play(ctx, frames, replaySpeed)
	close(frames)
	<-done
	if err != nil {
		return err
	}

	snap := eng.Snapshot()
	logger.Info("done",
		"frames", snap.FramesSeen,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// logOutput narrates synth calls instead of sounding them
type logOutput struct {
	log *slog.Logger
}

func pitchNames(notes []music.Pitch) []string {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.String()
	}
	return names
}

func (o *logOutput) Attack(notes []music.Pitch, velocity float64, at time.Time) error {
	o.log.Info("attack", "notes", pitchNames(notes), "velocity", velocity)
	return nil
}

func (o *logOutput) Release(notes []music.Pitch, at time.Time) error {
	o.log.Info("release", "notes", pitchNames(notes))
	return nil
}

func (o *logOutput) ReleaseAll(at time.Time) error {
	o.log.Info("release all")
	return nil
}

func (o *logOutput) Glide(from, to music.Pitch, at time.Time) error {
	o.log.Info("glide", "from", from.String(), "to", to.String())
	return nil
}

func (o *logOutput) SetVolume(db float64) error {
	o.log.Debug("volume", "db", db)
	return nil
}

func (o *logOutput) Program(program uint8) error {
	o.log.Info("program", "pc", program)
	return nil
}
