package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manav03panchal/keyline/internal/parser"
)

// Edit command flags.
var (
	editFlagScript string
	editFlagNoSave bool
)

// editCmd represents the edit command.
var editCmd = &cobra.Command{
	Use:     "edit [CLIP]",
	Aliases: []string{"e", "run"},
	Short:   "Edit a clip with keyframe commands",
	Long: `Open an edit session on a clip. Commands are read from a script file,
from piped stdin, or typed at a prompt when stdin is a terminal. The clip is
saved when the session ends with unsaved changes.

Examples:
  keyline edit walk
  keyline edit walk --script fix-feet.kl
  echo "move 0-3 +2" | keyline edit walk
  keyline edit --script - < tweaks.kl`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeClips,
	RunE:              runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editFlagScript, "script", "s", "", "Script file to run ('-' for stdin)")
	editCmd.Flags().BoolVar(&editFlagNoSave, "no-save", false, "Discard changes when the session ends")

	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
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

	r := newRunner(ctx, doc)
	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))

	switch {
	case editFlagScript != "" && editFlagScript != "-":
		f, err := os.Open(editFlagScript)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := runScript(c, r, f); err != nil {
			return err
		}
	case editFlagScript == "-" || !stdinTTY:
		if err := runScript(c, r, os.Stdin); err != nil {
			return err
		}
	default:
		if err := runInteractive(c, r); err != nil {
			return err
		}
	}

	return finishEdit(r)
}

// runScript parses all of src before executing anything, so a syntax error
// leaves the clip untouched.
func runScript(c context.Context, r *runner, src io.Reader) error {
	cmds, err := parser.ParseScript(src)
	if err != nil {
		return userScriptError(err)
	}
	return r.Run(c, cmds)
}

// runInteractive reads commands from a terminal prompt until quit or EOF.
// Errors are reported and the session continues.
func runInteractive(c context.Context, r *runner) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(screen, r.doc.Name+"> ")

	// Output has to go through the terminal while it owns the line.
	prev := ctx.Formatter.Writer
	ctx.Formatter.Writer = t
	defer func() { ctx.Formatter.Writer = prev }()

	ctx.CLIFormatter().Muted("Type 'help' for commands, 'quit' to leave.")
	for n := 1; !r.quit; n++ {
		line, err := t.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		cmd, err := parser.ParseLine(line, 0)
		if err != nil {
			reportInline(err)
			continue
		}
		if cmd == nil {
			continue
		}
		cmd.Line = n
		if err := r.Exec(c, cmd); err != nil {
			reportInline(err)
		}
	}
	return nil
}

// finishEdit saves the clip if the session left it dirty.
func finishEdit(r *runner) error {
	if editFlagNoSave || !r.Dirty() {
		return nil
	}
	if err := r.Save(); err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintResult("save", 0, "Saved "+r.doc.Name)
	}
	ctx.CLIFormatter().Success("Saved " + ctx.CLIFormatter().ClipName(r.doc.Name))
	return nil
}

// reportInline shows a failed prompt command without ending the session.
// Script errors list their valid forms on a terminal.
func reportInline(err error) {
	if se, ok := parser.AsScriptError(err); ok && ctx.IsCLI() && !ctx.Debug {
		ctx.CLIFormatter().Error(se.FormatWithExamples())
		return
	}
	ctx.ReportInline(userScriptError(err))
}

// userScriptError turns parse errors into user errors with examples.
func userScriptError(err error) error {
	if se, ok := parser.AsScriptError(err); ok {
		return se.ToUserError()
	}
	return err
}
