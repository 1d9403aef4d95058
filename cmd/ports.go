package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"airchord/config"
	"airchord/music"
	"airchord/synth"
)

var portsTest bool

func init() {
	portsCmd.Flags().BoolVar(&portsTest, "test", false,
		"play a short arpeggio on the configured port")
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Long:  `Lists available MIDI outputs. Use --test to verify the configured port makes sound.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ports()
	},
}

func ports() error {
	// Port enumeration can hang when the OS MIDI service is wedged;
	// don't let it take the terminal with it
	type result struct{ names []string }
	ch := make(chan result, 1)
	go func() {
		ch <- result{names: synth.ListPorts()}
	}()

	var names []string
	select {
	case r := <-ch:
		names = r.names
	case <-time.After(3 * time.Second):
		return fmt.Errorf("timed out listing MIDI ports; the system MIDI service may be hung")
	}

	if len(names) == 0 {
		fmt.Println("no MIDI output ports found")
		return nil
	}
	fmt.Println("MIDI output ports:")
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}

	if !portsTest {
		return nil
	}
	return testTone()
}

// testTone plays an ascending arpeggio through the scheduler, the same
// path the instrument uses
func testTone() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	r, err := cfg.Resolve()
	if err != nil {
		return err
	}

	send, err := synth.OpenPort(r.PortName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	player := synth.NewPlayer(send)
	go player.Run(ctx)

	channel := synth.NewChannel(player, r.MelodyChannel)
	if err := channel.Program(r.MelodyProgram); err != nil {
		return err
	}

	fmt.Println("\nplaying test arpeggio...")

	root := music.NewPitch(music.C, 4)
	start := time.Now().Add(100 * time.Millisecond)
	step := 200 * time.Millisecond
	for i, semis := range []int{0, 4, 7, 12} {
		note := []music.Pitch{root.Transpose(semis)}
		at := start.Add(time.Duration(i) * step)
		if err := channel.Attack(note, 0.8, at); err != nil {
			return err
		}
		if err := channel.Release(note, at.Add(step-20*time.Millisecond)); err != nil {
			return err
		}
	}

	time.Sleep(time.Until(start) + time.Duration(4)*step + 100*time.Millisecond)
	fmt.Println("done")
	return nil
}
