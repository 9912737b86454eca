package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/model"
	"github.com/manav03panchal/keyline/internal/parser"
	"github.com/manav03panchal/keyline/internal/validate"
)

// Clip command flags.
var (
	newFlagFPS    float64
	newFlagLength int
	newFlagBones  []string
	newFlagProps  []string
	newFlagNoUse  bool

	showFlagFrame int
	showFlagScope string

	deleteFlagForce bool
)

// newCmd creates a clip.
var newCmd = &cobra.Command{
	Use:   "new NAME",
	Short: "Create a new clip",
	Long: `Create an empty clip and make it the active clip.

Examples:
  keyline new walk
  keyline new walk --fps 24 --length 48
  keyline new blink --bone head --prop face.blink`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

// listCmd lists clips.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "clips"},
	Short:   "List stored clips",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

// useCmd selects the active clip.
var useCmd = &cobra.Command{
	Use:               "use NAME",
	Aliases:           []string{"switch"},
	Short:             "Select the active clip",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeClips,
	RunE:              runUse,
}

// showCmd prints a clip, its keyed frames, or the keys on one frame.
var showCmd = &cobra.Command{
	Use:   "show [CLIP]",
	Short: "Show a clip",
	Long: `Show a clip summary. With --scope the keyed frames of that edit mode are
listed; with --frame the keys on that frame are printed.

Examples:
  keyline show
  keyline show walk --scope bone:hips
  keyline show walk --frame 12 --scope global`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeClips,
	RunE:              runShow,
}

// deleteCmd removes a clip.
var deleteCmd = &cobra.Command{
	Use:               "delete NAME",
	Aliases:           []string{"rm"},
	Short:             "Delete a clip",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeClips,
	RunE:              runDelete,
}

func init() {
	newCmd.Flags().Float64Var(&newFlagFPS, "fps", 0, "Frame rate (config default if omitted)")
	newCmd.Flags().IntVarP(&newFlagLength, "length", "l", 0, "Last frame index (config default if omitted)")
	newCmd.Flags().StringSliceVarP(&newFlagBones, "bone", "b", nil, "Bone to add (repeatable)")
	newCmd.Flags().StringSliceVarP(&newFlagProps, "prop", "p", nil, "Property track to add (repeatable)")
	newCmd.Flags().BoolVar(&newFlagNoUse, "no-use", false, "Keep the current active clip")

	showCmd.Flags().IntVar(&showFlagFrame, "frame", -1, "Show the keys on this frame")
	showCmd.Flags().StringVar(&showFlagScope, "scope", "", "Edit mode: global, events, bone:NAME, property:PATH")

	_ = showCmd.RegisterFlagCompletionFunc("scope", completeScopes)

	deleteCmd.Flags().BoolVarP(&deleteFlagForce, "force", "F", false, "Delete even if it is the active clip")

	rootCmd.AddCommand(newCmd, listCmd, useCmd, showCmd, deleteCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	name := validate.SanitizeName(args[0])
	if err := validate.ClipName(name); err != nil {
		return err
	}
	if cmd.Flags().Changed("fps") {
		if err := validate.FrameRate(newFlagFPS); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("length") {
		if err := validate.ClipLength(newFlagLength); err != nil {
			return err
		}
	}

	base := ctx.NewClip(name, newFlagFPS, newFlagLength)
	clip := base.ToClip()
	for _, b := range newFlagBones {
		if err := validate.BoneName(b); err != nil {
			return err
		}
		clip.AddBone(b)
	}
	for _, p := range newFlagProps {
		if err := validate.PropertyPath(p); err != nil {
			return err
		}
		clip.AddProperty(p)
	}

	doc := model.FromClip(clip)
	if err := ctx.Clips.Create(doc); err != nil {
		return err
	}
	if !newFlagNoUse {
		if err := ctx.Active.SetActive(name); err != nil {
			return err
		}
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintClip(doc, !newFlagNoUse)
	}
	cli := ctx.CLIFormatter()
	cli.Success("Created clip " + cli.ClipName(name))
	cli.PrintClip(doc, !newFlagNoUse)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	docs, err := ctx.Clips.List()
	if err != nil {
		return err
	}
	active, err := ctx.Active.Get()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintClips(docs, active.ClipName)
	}
	ctx.CLIFormatter().PrintClips(docs, active.ClipName)
	return nil
}

func runUse(cmd *cobra.Command, args []string) error {
	name := args[0]
	ok, err := ctx.Clips.Exists(name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrClipNotFound, "clip %q", name)
	}
	if err := ctx.Active.SetActive(name); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintResult("use", 0, "Active clip is "+name)
	}
	cli := ctx.CLIFormatter()
	cli.Success("Active clip is " + cli.ClipName(name))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	doc, err := ctx.ResolveClip(name)
	if err != nil {
		return err
	}

	if showFlagFrame < 0 && showFlagScope == "" {
		return showClip(doc)
	}

	scope := keyframe.Global()
	if showFlagScope != "" {
		if scope, err = parser.ParseScope(showFlagScope); err != nil {
			return userScriptError(err)
		}
	}
	return showScope(ctx.OpenSession(doc, editor.Hooks{}), scope, showFlagFrame)
}

func showClip(doc *model.ClipDoc) error {
	active, err := ctx.Active.Get()
	if err != nil {
		return err
	}
	isActive := active.ClipName == doc.Name

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintClip(doc, isActive)
	}
	ctx.CLIFormatter().PrintClip(doc, isActive)
	return nil
}

// showScope prints the keyed frames of scope, or the keys on frame when it
// is not negative.
func showScope(s *editor.Session, scope keyframe.Scope, frame int) error {
	if frame >= 0 {
		a, err := s.FrameEntries(scope, frame)
		if err != nil {
			return err
		}
		if ctx.IsJSON() {
			return ctx.JSONFormatter().PrintAggregate(a)
		}
		ctx.CLIFormatter().PrintAggregate(a)
		return nil
	}

	frames, err := s.Frames(scope)
	if err != nil {
		return err
	}
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintFrames(scope, frames)
	}
	ctx.CLIFormatter().PrintFrames(scope, frames)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	active, err := ctx.Active.Get()
	if err != nil {
		return err
	}
	isActive := active.ClipName == name
	if isActive && !deleteFlagForce {
		return errors.NewUserErrorWithField("clip", name,
			"Clip is active",
			"Use --force to delete it anyway, or 'keyline use' another clip first")
	}

	if err := ctx.Clips.Delete(name); err != nil {
		return err
	}
	if isActive {
		if err := ctx.Active.Clear(); err != nil {
			return err
		}
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintResult("delete", 1, "Deleted "+name)
	}
	ctx.CLIFormatter().Success("Deleted clip " + name)
	return nil
}
