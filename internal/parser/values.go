package parser

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/validate"
)

// MaxFrameSpan caps how many frames one range may expand to.
const MaxFrameSpan = 1 << 16

// ParseFrames parses a frame list such as "0-3,7,9-10". The result is sorted
// and free of duplicates.
func ParseFrames(input string) ([]int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, NewFrameError(input)
	}

	var frames []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			f, err := parseFrame(part)
			if err != nil {
				return nil, NewFrameError(input)
			}
			frames = append(frames, f)
			continue
		}
		from, err1 := parseFrame(lo)
		to, err2 := parseFrame(hi)
		if err1 != nil || err2 != nil || to < from || to-from >= MaxFrameSpan {
			return nil, NewFrameError(input)
		}
		for f := from; f <= to; f++ {
			frames = append(frames, f)
		}
	}

	slices.Sort(frames)
	return slices.Compact(frames), nil
}

func parseFrame(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '+' {
		return 0, strconv.ErrSyntax
	}
	f, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, strconv.ErrRange
	}
	return f, nil
}

// ParseFrame parses a single non-negative frame index.
func ParseFrame(input string) (int, error) {
	f, err := parseFrame(input)
	if err != nil {
		return 0, NewFrameError(input)
	}
	return f, nil
}

// ParseDelta parses a signed frame offset such as "+3" or "-2".
func ParseDelta(input string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, NewDeltaError(input)
	}
	return d, nil
}

// ParseTime parses a clip time in seconds.
func ParseTime(input string) (float64, error) {
	t, err := parseFloat(input)
	if err != nil || t < 0 {
		return 0, NewScriptError("time", input, "expected a non-negative number of seconds", "0", "0.5", "1.25")
	}
	return t, nil
}

// ParseValue parses a single key value.
func ParseValue(input string) (float64, error) {
	v, err := parseFloat(input)
	if err != nil {
		return 0, NewScriptError("value", input, "expected a number", "1", "-0.5", "2.75")
	}
	return v, nil
}

// ParseValues parses a comma separated value list such as "1,0.5".
func ParseValues(input string) ([]float64, error) {
	parts := strings.Split(input, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := parseFloat(p)
		if err != nil {
			return nil, NewScriptError("values", input, "expected comma separated numbers", "1", "1,0.5", "0,0,1")
		}
		values = append(values, v)
	}
	return values, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// ParseChannel parses a transform channel name such as "rot.w".
func ParseChannel(input string) (curve.Channel, error) {
	ch, ok := curve.ParseChannel(input)
	if !ok {
		return -1, NewChannelError(input)
	}
	return ch, nil
}

// ParseWait parses a tick duration. A bare number is read as milliseconds.
func ParseWait(input string) (time.Duration, error) {
	s := strings.TrimSpace(input)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, waitError(input)
		}
		return time.Duration(n * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, waitError(input)
	}
	return d, nil
}

func waitError(input string) *ScriptError {
	return &ScriptError{
		Input:      input,
		Field:      "duration",
		Message:    "could not parse duration",
		Examples:   WaitExamples,
		Suggestion: "Durations use ms or s units; bare numbers are milliseconds.",
	}
}

// ParseCount parses an optional repeat count. An empty input means one.
func ParseCount(input string) (int, error) {
	if input == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 {
		return 0, NewScriptError("count", input, "expected a positive whole number", "1", "3")
	}
	return n, nil
}

// ParseScope parses an edit mode written as "kind" or "kind:target", e.g.
// "global" or "bone:hips".
func ParseScope(input string) (keyframe.Scope, error) {
	kindStr, target, _ := strings.Cut(strings.TrimSpace(input), ":")
	kind, ok := keyframe.ParseScopeKind(strings.ToLower(kindStr))
	if !ok {
		return keyframe.Scope{}, scopeError(input)
	}
	switch kind {
	case keyframe.ScopeBone:
		if validate.BoneName(target) != nil {
			return keyframe.Scope{}, scopeError(input)
		}
		return keyframe.BoneScope(target), nil
	case keyframe.ScopeProperty:
		if validate.PropertyPath(target) != nil {
			return keyframe.Scope{}, scopeError(input)
		}
		return keyframe.PropertyScope(target), nil
	}
	if target != "" {
		return keyframe.Scope{}, scopeError(input)
	}
	return keyframe.Scope{Kind: kind}, nil
}

func scopeError(input string) *ScriptError {
	return &ScriptError{
		Input:    input,
		Field:    "scope",
		Message:  "unknown edit mode",
		Examples: ScopeExamples,
	}
}
