package cmd

import (
	"github.com/spf13/cobra"

	"airchord/debug"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "airchord",
	Short: "Play music by moving your hands",
	Long: `airchord turns hand positions from a camera tracker into MIDI.
Point a tracker at /v1/frames and raise your hands: the right hand
plays melody, the left hand plays chords.

Run with no subcommand to start the instrument.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugFlag {
			return debug.Enable()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstrument()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log to "+debug.LogPath())
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
