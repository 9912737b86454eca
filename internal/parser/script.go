// Package parser reads keyline edit scripts: one command per line, with
// blank lines and '#' comments ignored.
package parser

import (
	"bufio"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/validate"
)

// Op identifies what a Command does.
type Op int

const (
	OpKeyBone Op = iota + 1
	OpKeyProperty
	OpKeyLinear
	OpDrag
	OpTick
	OpFlush
	OpEvent
	OpPose
	OpPlayhead
	OpPlay
	OpMove
	OpDelete
	OpCopy
	OpPaste
	OpUndo
	OpRedo
	OpHistory
	OpFrames
	OpShow
	OpMode
	OpAddBone
	OpRemoveBone
	OpBake
	OpSave
	OpHelp
	OpQuit
)

// Command is one parsed script line.
type Command struct {
	Op   Op
	Verb string
	Line int
	Raw  string

	// Target is the bone, property path or event name the command acts on.
	Target  string
	Channel curve.Channel
	Time    float64
	Value   float64
	Values  []float64
	Index   int
	Frame   int
	Frames  []int
	Delta   int
	Count   int
	Wait    time.Duration
	Scope   keyframe.Scope
	// Path is the output file of bake.
	Path string
}

type verb struct {
	usage string
	parse func(c *Command, args []string) error
}

var verbs map[string]verb

func init() {
	verbs = map[string]verb{
		"key": {
			usage: "key bone <bone> <channel> <time> <value> | key prop <path> <time> <value> | key linear <target> <frame> <values>",
			parse: parseKey,
		},
		"drag":        {"drag <bone> <channel> <index> <value>", parseDrag},
		"tick":        {"tick [duration]", parseTick},
		"flush":       {"flush", noArgs(OpFlush)},
		"event":       {"event <name> <time>", parseEvent},
		"pose":        {"pose <bone> <x> <y> <z>", parsePose},
		"playhead":    {"playhead <time>", parsePlayhead},
		"play":        {"play [duration]", parsePlay},
		"move":        {"move <frames> <offset>", parseMove},
		"delete":      {"delete <frames>", framesOnly(OpDelete)},
		"copy":        {"copy <frames>", framesOnly(OpCopy)},
		"paste":       {"paste <offset>", parsePaste},
		"undo":        {"undo [count]", counted(OpUndo)},
		"redo":        {"redo [count]", counted(OpRedo)},
		"history":     {"history", noArgs(OpHistory)},
		"frames":      {"frames", noArgs(OpFrames)},
		"show":        {"show <frame>", parseShow},
		"mode":        {"mode global | mode events | mode bone <name> | mode property <path>", parseMode},
		"scope":       {"scope global | scope events | scope bone <name> | scope property <path>", parseMode},
		"add-bone":    {"add-bone <name>", boneOnly(OpAddBone)},
		"remove-bone": {"remove-bone <name>", boneOnly(OpRemoveBone)},
		"bake":        {"bake [file]", parseBake},
		"save":        {"save", noArgs(OpSave)},
		"help":        {"help", noArgs(OpHelp)},
		"quit":        {"quit", noArgs(OpQuit)},
		"exit":        {"exit", noArgs(OpQuit)},
	}
}

// Usage returns the usage line of a verb, or an empty string.
func Usage(name string) string {
	return verbs[name].usage
}

// Verbs returns the usage line of every command, sorted by verb.
func Verbs() []string {
	names := make([]string, 0, len(verbs))
	for name := range verbs {
		if name == "scope" || name == "exit" {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = verbs[name].usage
	}
	return out
}

// ParseLine parses one script line. Blank lines and comments return nil.
func ParseLine(line string, n int) (*Command, error) {
	raw := strings.TrimSpace(validate.StripControlChars(line))
	if raw == "" || strings.HasPrefix(raw, "#") {
		return nil, nil
	}

	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return nil, nil
	}
	name := strings.ToLower(tokens[0])
	v, ok := verbs[name]
	if !ok {
		err := NewCommandError(tokens[0])
		err.Line = n
		return nil, err
	}

	cmd := &Command{Verb: name, Line: n, Raw: raw, Channel: keyframe.NoChannel, Count: 1}
	if err := v.parse(cmd, tokens[1:]); err != nil {
		if se, ok := AsScriptError(err); ok {
			se.Line = n
			return nil, se
		}
		return nil, err
	}
	return cmd, nil
}

// ParseScript parses every line of r. It stops at the first bad line.
func ParseScript(r io.Reader) ([]*Command, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}

	var cmds []*Command
	sc := bufio.NewScanner(strings.NewReader(validate.SanitizeScript(string(data))))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		n++
		cmd, err := ParseLine(sc.Text(), n)
		if err != nil {
			return nil, err
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read script")
	}
	return cmds, nil
}

// -----------------------------------------------------------------------------
// Verb parsers
// -----------------------------------------------------------------------------

func parseKey(c *Command, args []string) error {
	if len(args) == 0 {
		return NewUsageError("key", "")
	}
	kind, rest := strings.ToLower(args[0]), args[1:]
	switch kind {
	case "bone":
		if len(rest) != 4 {
			return NewUsageError("key", strings.Join(args, " "))
		}
		c.Op = OpKeyBone
		if err := bone(c, rest[0]); err != nil {
			return err
		}
		ch, err := ParseChannel(rest[1])
		if err != nil {
			return err
		}
		c.Channel = ch
		if c.Time, err = ParseTime(rest[2]); err != nil {
			return err
		}
		c.Value, err = ParseValue(rest[3])
		return err
	case "prop", "property":
		if len(rest) != 3 {
			return NewUsageError("key", strings.Join(args, " "))
		}
		c.Op = OpKeyProperty
		if err := property(c, rest[0]); err != nil {
			return err
		}
		var err error
		if c.Time, err = ParseTime(rest[1]); err != nil {
			return err
		}
		c.Value, err = ParseValue(rest[2])
		return err
	case "linear":
		if len(rest) != 3 {
			return NewUsageError("key", strings.Join(args, " "))
		}
		c.Op = OpKeyLinear
		c.Target = rest[0]
		var err error
		if c.Frame, err = ParseFrame(rest[1]); err != nil {
			return err
		}
		c.Values, err = ParseValues(rest[2])
		return err
	}
	return NewUsageError("key", strings.Join(args, " "))
}

func parseDrag(c *Command, args []string) error {
	if len(args) != 4 {
		return NewUsageError("drag", strings.Join(args, " "))
	}
	c.Op = OpDrag
	if err := bone(c, args[0]); err != nil {
		return err
	}
	ch, err := ParseChannel(args[1])
	if err != nil {
		return err
	}
	c.Channel = ch
	if c.Index, err = ParseFrame(args[2]); err != nil {
		return NewScriptError("index", args[2], "expected a key index", "0", "1")
	}
	c.Value, err = ParseValue(args[3])
	return err
}

func parseTick(c *Command, args []string) error {
	c.Op = OpTick
	switch len(args) {
	case 0:
		return nil
	case 1:
		var err error
		c.Wait, err = ParseWait(args[0])
		return err
	}
	return NewUsageError("tick", strings.Join(args, " "))
}

func parseEvent(c *Command, args []string) error {
	if len(args) != 2 {
		return NewUsageError("event", strings.Join(args, " "))
	}
	c.Op = OpEvent
	name := validate.SanitizeName(args[0])
	if err := validate.EventName(name); err != nil {
		return fieldError("event", args[0], err)
	}
	c.Target = name
	var err error
	c.Time, err = ParseTime(args[1])
	return err
}

func parsePose(c *Command, args []string) error {
	if len(args) != 4 {
		return NewUsageError("pose", strings.Join(args, " "))
	}
	c.Op = OpPose
	if err := bone(c, args[0]); err != nil {
		return err
	}
	c.Values = make([]float64, 3)
	for i, a := range args[1:] {
		v, err := ParseValue(a)
		if err != nil {
			return err
		}
		c.Values[i] = v
	}
	return nil
}

func parsePlayhead(c *Command, args []string) error {
	if len(args) != 1 {
		return NewUsageError("playhead", strings.Join(args, " "))
	}
	c.Op = OpPlayhead
	var err error
	c.Time, err = ParseTime(args[0])
	return err
}

func parsePlay(c *Command, args []string) error {
	c.Op = OpPlay
	switch len(args) {
	case 0:
		return nil
	case 1:
		var err error
		c.Wait, err = ParseWait(args[0])
		return err
	}
	return NewUsageError("play", strings.Join(args, " "))
}

func parseMove(c *Command, args []string) error {
	if len(args) != 2 {
		return NewUsageError("move", strings.Join(args, " "))
	}
	c.Op = OpMove
	var err error
	if c.Frames, err = ParseFrames(args[0]); err != nil {
		return err
	}
	c.Delta, err = ParseDelta(args[1])
	return err
}

func parsePaste(c *Command, args []string) error {
	if len(args) != 1 {
		return NewUsageError("paste", strings.Join(args, " "))
	}
	c.Op = OpPaste
	var err error
	c.Delta, err = ParseDelta(args[0])
	return err
}

func parseShow(c *Command, args []string) error {
	if len(args) != 1 {
		return NewUsageError("show", strings.Join(args, " "))
	}
	c.Op = OpShow
	var err error
	c.Frame, err = ParseFrame(args[0])
	return err
}

func parseMode(c *Command, args []string) error {
	if len(args) == 0 {
		return NewUsageError(c.Verb, "")
	}
	c.Op = OpMode
	kind, ok := keyframe.ParseScopeKind(strings.ToLower(args[0]))
	if !ok {
		return scopeError(args[0])
	}
	switch kind {
	case keyframe.ScopeGlobal, keyframe.ScopeEvents:
		if len(args) != 1 {
			return NewUsageError(c.Verb, strings.Join(args, " "))
		}
		c.Scope = keyframe.Scope{Kind: kind}
	case keyframe.ScopeBone:
		if len(args) != 2 {
			return NewUsageError(c.Verb, strings.Join(args, " "))
		}
		if err := bone(c, args[1]); err != nil {
			return err
		}
		c.Scope = keyframe.BoneScope(c.Target)
	case keyframe.ScopeProperty:
		if len(args) != 2 {
			return NewUsageError(c.Verb, strings.Join(args, " "))
		}
		if err := property(c, args[1]); err != nil {
			return err
		}
		c.Scope = keyframe.PropertyScope(c.Target)
	}
	return nil
}

func parseBake(c *Command, args []string) error {
	c.Op = OpBake
	switch len(args) {
	case 0:
		return nil
	case 1:
		c.Path = args[0]
		return nil
	}
	return NewUsageError("bake", strings.Join(args, " "))
}

func noArgs(op Op) func(*Command, []string) error {
	return func(c *Command, args []string) error {
		if len(args) != 0 {
			return NewUsageError(c.Verb, strings.Join(args, " "))
		}
		c.Op = op
		return nil
	}
}

func counted(op Op) func(*Command, []string) error {
	return func(c *Command, args []string) error {
		if len(args) > 1 {
			return NewUsageError(c.Verb, strings.Join(args, " "))
		}
		c.Op = op
		var err error
		if len(args) == 1 {
			c.Count, err = ParseCount(args[0])
		}
		return err
	}
}

func framesOnly(op Op) func(*Command, []string) error {
	return func(c *Command, args []string) error {
		if len(args) != 1 {
			return NewUsageError(c.Verb, strings.Join(args, " "))
		}
		c.Op = op
		var err error
		c.Frames, err = ParseFrames(args[0])
		return err
	}
}

func boneOnly(op Op) func(*Command, []string) error {
	return func(c *Command, args []string) error {
		if len(args) != 1 {
			return NewUsageError(c.Verb, strings.Join(args, " "))
		}
		c.Op = op
		return bone(c, args[0])
	}
}

func bone(c *Command, name string) error {
	if err := validate.BoneName(name); err != nil {
		return fieldError("bone", name, err)
	}
	c.Target = name
	return nil
}

func property(c *Command, path string) error {
	if err := validate.PropertyPath(path); err != nil {
		return fieldError("property", path, err)
	}
	c.Target = path
	return nil
}

// fieldError carries a validation failure as a ScriptError so it picks up
// the line number.
func fieldError(field, input string, err error) *ScriptError {
	se := &ScriptError{Input: input, Field: field, Message: err.Error()}
	if ue, ok := errors.AsUserError(err); ok {
		se.Message = ue.Message
		se.Suggestion = ue.Suggestion
	}
	return se
}

// tokenize splits input on whitespace, keeping quoted runs together.
func tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, r := range input {
		if (r == '"' || r == '\'') && !inQuote {
			inQuote = true
			quoteChar = r
			continue
		}
		if r == quoteChar && inQuote {
			inQuote = false
			quoteChar = 0
			continue
		}
		if (r == ' ' || r == '\t') && !inQuote {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
