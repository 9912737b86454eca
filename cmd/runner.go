package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/logging"
	"github.com/manav03panchal/keyline/internal/model"
	"github.com/manav03panchal/keyline/internal/output"
	"github.com/manav03panchal/keyline/internal/parser"
	"github.com/manav03panchal/keyline/internal/runtime"
	"github.com/manav03panchal/keyline/internal/storage"
	"github.com/manav03panchal/keyline/internal/timer"
)

// scriptClock is the session clock while running commands. It only moves
// when a tick command advances it, so drag coalescing does not depend on
// how fast lines arrive.
type scriptClock struct {
	now time.Time
}

func (c *scriptClock) Now() time.Time { return c.now }

func (c *scriptClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// runner executes parsed edit commands against one session.
type runner struct {
	rt      *runtime.Context
	doc     *model.ClipDoc
	session *editor.Session
	clock   *scriptClock
	gesture context.Context

	dirty bool
	quit  bool
}

func newRunner(rt *runtime.Context, doc *model.ClipDoc) *runner {
	r := &runner{
		rt:      rt,
		doc:     doc,
		clock:   &scriptClock{now: time.Now()},
		gesture: logging.NewGestureContext(),
	}
	opts := rt.SessionOptions(editor.Hooks{
		Dirty: func() { r.dirty = true },
	})
	opts.Clock = r.clock.Now
	r.session = editor.NewSession(doc.ToClip(), opts)
	return r
}

// Run executes cmds in order and stops at the first failure.
func (r *runner) Run(c context.Context, cmds []*parser.Command) error {
	for _, cmd := range cmds {
		if err := r.Exec(c, cmd); err != nil {
			return errors.Wrapf(err, "line %d", cmd.Line)
		}
		if r.quit {
			break
		}
	}
	return nil
}

// Exec executes one command.
func (r *runner) Exec(c context.Context, cmd *parser.Command) error {
	s := r.session
	logging.DebugContext(r.gesture, "exec", logging.KeyOperation, cmd.Verb, "line", cmd.Line)
	r.rt.Debugf("line %d: %s (mode %s, history %d)", cmd.Line, cmd.Verb, s.Mode(), s.HistoryLength())

	switch cmd.Op {
	case parser.OpKeyBone:
		key := curve.Key{Time: cmd.Time, Value: cmd.Value}
		return r.done(cmd, 1, s.KeyBone(cmd.Target, cmd.Channel, key),
			"Keyed %s %s at %ss", cmd.Target, cmd.Channel, output.FormatSeconds(cmd.Time))

	case parser.OpKeyProperty:
		key := curve.Key{Time: cmd.Time, Value: cmd.Value}
		return r.done(cmd, 1, s.KeyProperty(cmd.Target, key),
			"Keyed %s at %ss", cmd.Target, output.FormatSeconds(cmd.Time))

	case parser.OpKeyLinear:
		key := curve.FrameKey{Frame: cmd.Frame, Values: cmd.Values}
		return r.done(cmd, 1, s.KeyLinear(cmd.Target, key),
			"Keyed %s at frame %d", cmd.Target, cmd.Frame)

	case parser.OpDrag:
		return r.drag(cmd)

	case parser.OpTick:
		r.clock.Advance(cmd.Wait)
		committed, err := s.Tick(r.clock.Now())
		if err != nil {
			return err
		}
		if committed {
			return r.done(cmd, 1, nil, "Committed drag")
		}
		if due, ok := s.DragDue(); ok {
			return r.done(cmd, 0, nil, "Drag pending, due in %s", due.Sub(r.clock.Now()))
		}
		return r.done(cmd, 0, nil, "Nothing to commit")

	case parser.OpFlush:
		return r.done(cmd, 0, s.Flush(), "Flushed pending drag")

	case parser.OpEvent:
		ev, err := s.AddEvent(cmd.Target, cmd.Time)
		return r.done(cmd, 1, err, "Added event %s at %ss", ev.Name, output.FormatSeconds(ev.Time))

	case parser.OpPose:
		return r.pose(cmd)

	case parser.OpPlayhead:
		s.SetPlayhead(cmd.Time)
		return r.done(cmd, 0, nil, "Playhead at %ss", output.FormatSeconds(cmd.Time))

	case parser.OpPlay:
		return r.play(cmd)

	case parser.OpMove:
		n, err := s.MoveFrames(cmd.Frames, cmd.Delta)
		return r.done(cmd, n, err, "Moved %d frame(s) by %+d", n, cmd.Delta)

	case parser.OpDelete:
		n, err := s.DeleteFrames(cmd.Frames)
		return r.done(cmd, n, err, "Deleted %d frame(s)", n)

	case parser.OpCopy:
		n, err := s.CopyFrames(cmd.Frames)
		return r.done(cmd, n, err, "Copied %d frame(s)", n)

	case parser.OpPaste:
		n, err := s.PasteFrames(cmd.Delta)
		return r.done(cmd, n, err, "Pasted %d frame(s) at %+d", n, cmd.Delta)

	case parser.OpUndo:
		n, err := r.repeat(cmd.Count, s.Undo)
		return r.done(cmd, n, err, "Undid %d step(s)", n)

	case parser.OpRedo:
		n, err := r.repeat(cmd.Count, s.Redo)
		return r.done(cmd, n, err, "Redid %d step(s)", n)

	case parser.OpHistory:
		if r.rt.IsJSON() {
			return r.rt.JSONFormatter().PrintHistory(s.History(), s.HistoryPosition(), s.CanUndo(), s.CanRedo())
		}
		r.rt.CLIFormatter().PrintHistory(s.History(), s.HistoryPosition())
		return nil

	case parser.OpFrames:
		frames, err := s.Frames(s.Mode())
		if err != nil {
			return err
		}
		if r.rt.IsJSON() {
			return r.rt.JSONFormatter().PrintFrames(s.Mode(), frames)
		}
		r.rt.CLIFormatter().PrintFrames(s.Mode(), frames)
		return nil

	case parser.OpShow:
		agg, err := s.FrameEntries(s.Mode(), cmd.Frame)
		if err != nil {
			return err
		}
		if r.rt.IsJSON() {
			return r.rt.JSONFormatter().PrintAggregate(agg)
		}
		r.rt.CLIFormatter().PrintAggregate(agg)
		return nil

	case parser.OpMode:
		return r.done(cmd, 0, s.SetEditMode(cmd.Scope), "Edit mode %s", cmd.Scope)

	case parser.OpAddBone:
		_, err := s.AddBone(cmd.Target)
		return r.done(cmd, 1, err, "Added bone %s", cmd.Target)

	case parser.OpRemoveBone:
		return r.done(cmd, 1, s.RemoveBone(cmd.Target), "Removed bone %s", cmd.Target)

	case parser.OpBake:
		return r.bake(c, cmd.Path)

	case parser.OpSave:
		return r.done(cmd, 0, r.Save(), "Saved %s", r.doc.Name)

	case parser.OpHelp:
		r.help()
		return nil

	case parser.OpQuit:
		r.quit = true
		return nil
	}
	return parser.NewCommandError(cmd.Verb)
}

// done reports the outcome of an edit command.
func (r *runner) done(cmd *parser.Command, count int, err error, format string, args ...any) error {
	if err != nil {
		return err
	}
	msg := fmt.Sprintf(format, args...)
	if r.rt.IsJSON() {
		return r.rt.JSONFormatter().PrintResult(cmd.Verb, count, msg)
	}
	r.rt.CLIFormatter().Success(msg)
	return nil
}

func (r *runner) repeat(n int, fn func() error) (int, error) {
	for i := 0; i < n; i++ {
		if err := fn(); err != nil {
			if i > 0 && (errors.Is(err, errors.ErrNothingToUndo) || errors.Is(err, errors.ErrNothingToRedo)) {
				return i, nil
			}
			return i, err
		}
	}
	return n, nil
}

// drag rewrites one main-curve key as part of the running drag gesture.
func (r *runner) drag(cmd *parser.Command) error {
	bone := r.session.Clip().Bone(cmd.Target)
	if bone == nil {
		return errors.Wrapf(errors.ErrBoneNotFound, "%s", cmd.Target)
	}
	slot := bone.Main.Slot(cmd.Channel)
	if slot == nil {
		return errors.NewUserErrorWithField("channel", cmd.Channel.String(),
			"Channel has no keys", "Key it first with 'key bone'")
	}
	key, ok := slot.Key(cmd.Index)
	if !ok {
		return errors.NewUserErrorWithField("index", fmt.Sprint(cmd.Index),
			"No key at that index", fmt.Sprintf("%s %s has %d key(s)", cmd.Target, cmd.Channel, slot.Len()))
	}

	err := r.session.Mutate(bone.Main, func() {
		key.Value = cmd.Value
		slot.UpdateKey(cmd.Index, key)
	})
	return r.done(cmd, 1, err, "Dragged %s %s[%d] to %s", cmd.Target, cmd.Channel, cmd.Index, output.FormatValue(cmd.Value))
}

// pose sets a bone's live position, keeping its rotation and scale.
func (r *runner) pose(cmd *parser.Command) error {
	bone := r.session.Clip().Bone(cmd.Target)
	if bone == nil {
		return errors.Wrapf(errors.ErrBoneNotFound, "%s", cmd.Target)
	}
	st := bone.Node.Snapshot()
	st.Position = curve.Vec3{X: cmd.Values[0], Y: cmd.Values[1], Z: cmd.Values[2]}
	return r.done(cmd, 1, r.session.SetPose(cmd.Target, st),
		"Posed %s at %s", cmd.Target, output.FormatValues(cmd.Values))
}

// play previews the clip from the playhead without waiting. With no
// duration it plays to the end.
func (r *runner) play(cmd *parser.Command) error {
	p := timer.NewPlayer(r.session, timer.Config{From: r.session.Playhead()})
	ended := false
	p.SetCallback(func(ev timer.Event, _ timer.PlaybackState) {
		if ev == timer.EventComplete {
			ended = true
		}
	})
	if cmd.Wait > 0 {
		p.Advance(cmd.Wait)
	} else {
		p.PlayToEnd()
	}
	st := p.GetState()
	msg := fmt.Sprintf("Played to %ss (frame %d)", output.FormatSeconds(st.Playhead), st.Frame)
	if ended {
		msg += ", end of clip"
	}
	return r.done(cmd, st.Frame, nil, "%s", msg)
}

// bake samples every keyed main curve. The result is written to path, or
// printed when path is empty.
func (r *runner) bake(c context.Context, path string) error {
	baked, err := bakeSession(c, r.rt, r.session)
	if err != nil {
		return err
	}
	return writeBaked(r.rt, baked, path)
}

// Save flushes any pending drag and stores the clip.
func (r *runner) Save() error {
	if err := r.session.Flush(); err != nil {
		return err
	}
	if err := r.rt.SaveClip(r.session.Clip(), r.doc); err != nil {
		return err
	}
	r.session.MarkClean()
	r.dirty = false
	return nil
}

// Dirty reports whether there are unsaved edits.
func (r *runner) Dirty() bool {
	return r.dirty || r.session.IsDirty()
}

func (r *runner) help() {
	if r.rt.IsJSON() {
		_ = r.rt.Formatter.JSON(map[string][]string{"commands": parser.Verbs()})
		return
	}
	cli := r.rt.CLIFormatter()
	cli.Title("Commands")
	for _, u := range parser.Verbs() {
		cli.Println("  " + u)
	}
}

// bakeSession compiles the bake jobs of s, drawing a progress bar on a
// terminal.
func bakeSession(c context.Context, rt *runtime.Context, s *editor.Session) (*editor.Baked, error) {
	jobs, baked := s.BakeJobs()

	var progress editor.Progress
	if rt.IsCLI() && isatty.IsTerminal(os.Stderr.Fd()) {
		progress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "\r%s %d/%d", output.ProgressBar(float64(done)/float64(total)*100, 30), done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	if err := s.Compile(c, jobs, progress); err != nil {
		return nil, err
	}
	if logging.DebugEnabled() {
		samples := 0
		for _, tr := range baked.Tracks {
			samples += len(tr.Samples)
		}
		logging.DebugLog("bake sampled", logging.KeyClip, baked.Clip, logging.KeyCount, len(baked.Tracks), "samples", samples)
	}
	return baked, nil
}

// writeBaked stores baked as JSON at path and reports it. An empty path
// only reports.
func writeBaked(rt *runtime.Context, baked *editor.Baked, path string) error {
	if path != "" {
		data, err := json.MarshalIndent(baked, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode bake")
		}
		if err := storage.SafeWrite(path, data, 0o644); err != nil {
			return err
		}
	}
	if rt.IsJSON() {
		return rt.JSONFormatter().PrintBaked(baked, path)
	}
	rt.CLIFormatter().PrintBaked(baked, path)
	return nil
}
