package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/validate"
)

// Bake command flags.
var bakeFlagOutput string

// bakeCmd samples a clip into per-frame values.
var bakeCmd = &cobra.Command{
	Use:   "bake [CLIP]",
	Short: "Sample every keyed curve once per frame",
	Long: `Bake a clip: every keyed main curve is sampled at each frame from 0 to
the clip length. Ctrl+C stops after the curve being sampled.

Examples:
  keyline bake
  keyline bake walk -o walk.baked.json
  keyline bake walk --format json`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeClips,
	RunE:              runBake,
}

func init() {
	bakeCmd.Flags().StringVarP(&bakeFlagOutput, "output", "o", "", "Write samples to this file ('.' for <clip>.baked.json)")
	rootCmd.AddCommand(bakeCmd)
}

func runBake(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	doc, err := ctx.ResolveClip(name)
	if err != nil {
		return err
	}

	c, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := ctx.OpenSession(doc, editor.Hooks{})
	baked, err := bakeSession(c, ctx, s)
	if err != nil {
		return err
	}

	path := bakeFlagOutput
	if path == "." {
		path = validate.SafeFilename(doc.Name) + ".baked.json"
	}
	return writeBaked(ctx, baked, path)
}
