package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/tui"
)

// viewFlagNoSave keeps browser edits out of the store.
var viewFlagNoSave bool

// viewCmd opens the full-screen clip browser.
var viewCmd = &cobra.Command{
	Use:     "view [CLIP]",
	Aliases: []string{"ui", "browse"},
	Short:   "Browse and edit a clip's keyframes full-screen",
	Long: `Open a full-screen timeline of the clip. Move along the frames, switch the
edit mode with TAB, delete, nudge, copy and paste keyframes, and undo or
redo. Changes are saved on exit unless --no-save is given.

Examples:
  keyline view
  keyline view walk
  keyline view walk --no-save`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeClips,
	RunE:              runView,
}

func init() {
	viewCmd.Flags().BoolVar(&viewFlagNoSave, "no-save", false, "Discard changes on exit")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return errors.NewUserError("view needs a terminal", "Use 'keyline show' or 'keyline edit -s FILE' instead.")
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	doc, err := ctx.ResolveClip(name)
	if err != nil {
		return err
	}

	s := ctx.OpenSession(doc, editor.Hooks{})
	save := func() error {
		if err := s.Flush(); err != nil {
			return err
		}
		if err := ctx.SaveClip(s.Clip(), doc); err != nil {
			return err
		}
		s.MarkClean()
		return nil
	}

	cfg := tui.BrowserConfig{Session: s, Save: save}
	if viewFlagNoSave {
		cfg.Save = nil
	}
	if err := tui.Run(cfg); err != nil {
		return errors.NewSystemError("browser failed", err)
	}

	if s.IsDirty() && !viewFlagNoSave {
		if err := save(); err != nil {
			return err
		}
		ctx.CLIFormatter().Success("Saved " + doc.Name)
	}
	return nil
}
