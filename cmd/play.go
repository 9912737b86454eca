package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/output"
	"github.com/manav03panchal/keyline/internal/timer"
)

// Play command flags.
var (
	playFlagFrom  float64
	playFlagTo    float64
	playFlagSpeed float64
	playFlagLoop  bool
)

// playCmd previews a clip in real time.
var playCmd = &cobra.Command{
	Use:   "play [CLIP]",
	Short: "Preview a clip in real time",
	Long: `Play a clip from --from to --to (seconds), drawing the playhead as it moves.
Press SPACE to pause and Q to stop.

Examples:
  keyline play
  keyline play walk --loop
  keyline play walk --from 0.5 --to 1.5 --speed 0.25`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeClips,
	RunE:              runPlay,
}

func init() {
	playCmd.Flags().Float64Var(&playFlagFrom, "from", 0, "Start time in seconds")
	playCmd.Flags().Float64Var(&playFlagTo, "to", 0, "End time in seconds (clip end if omitted)")
	playCmd.Flags().Float64Var(&playFlagSpeed, "speed", 1, "Playback speed")
	playCmd.Flags().BoolVar(&playFlagLoop, "loop", false, "Loop until stopped")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	doc, err := ctx.ResolveClip(name)
	if err != nil {
		return err
	}

	s := ctx.OpenSession(doc, editor.Hooks{})
	p := timer.NewPlayer(s, timer.Config{
		From:  playFlagFrom,
		To:    playFlagTo,
		Speed: playFlagSpeed,
		Loop:  playFlagLoop,
	})

	fd := int(os.Stdin.Fd())
	if ctx.IsJSON() || !term.IsTerminal(fd) {
		// Nothing to draw on: step through without waiting.
		p.PlayToEnd()
		st := p.GetState()
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(st)
		}
		ctx.CLIFormatter().Success("Played to " + output.FormatSeconds(st.Playhead))
		return nil
	}

	display := timer.NewPlaybackDisplay()
	display.UseColor = ctx.Formatter.IsColorEnabled()
	p.SetDisplay(display)

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	c, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	c, cancel := context.WithCancel(c)
	defer cancel()

	go p.ListenKeyboard(c, os.Stdin)

	if err := p.Run(c); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
