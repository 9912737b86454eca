// Package validate provides input validation helpers for the keyline CLI.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
)

const (
	// MaxClipNameLength is the maximum length for a clip name.
	MaxClipNameLength = 64
	// MaxTargetLength is the maximum length for a bone name or property path.
	MaxTargetLength = 128
	// MaxEventNameLength is the maximum length for an event name.
	MaxEventNameLength = 128
	// MaxFrameRate is the highest accepted frames-per-second value.
	MaxFrameRate = 240
	// MaxClipLength is the highest accepted clip length in frames.
	MaxClipLength = 1 << 20
)

// clipNameRegex validates clip names (alphanumeric, dashes, underscores, periods).
var clipNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// targetRegex accepts bone names and dotted property paths.
var targetRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.:/-]*$`)

// ClipName validates a clip name.
func ClipName(name string) error {
	if err := NonEmpty("clip name", name); err != nil {
		return err
	}
	if len(name) > MaxClipNameLength {
		return errors.NewUserErrorWithField("clip", name,
			"Clip name too long",
			"Clip names must be 64 characters or fewer")
	}
	if !clipNameRegex.MatchString(name) {
		return errors.NewUserErrorWithField("clip", name,
			"Invalid clip name",
			"Clip names must start with a letter or number and contain only letters, numbers, dashes, underscores, or periods")
	}
	return nil
}

// BoneName validates a bone name.
func BoneName(name string) error {
	return target("bone", name)
}

// PropertyPath validates a property path such as "material.alpha".
func PropertyPath(path string) error {
	if err := target("property", path); err != nil {
		return err
	}
	if strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") || strings.Contains(path, "..") {
		return errors.NewUserErrorWithField("property", path,
			"Invalid property path",
			"Separate path segments with single dots, e.g. 'material.alpha'")
	}
	return nil
}

func target(field, name string) error {
	if err := NonEmpty(field+" name", name); err != nil {
		return err
	}
	if utf8.RuneCountInString(name) > MaxTargetLength {
		return errors.NewUserErrorWithField(field, name,
			field+" name too long",
			"Names must be 128 characters or fewer")
	}
	if !targetRegex.MatchString(name) {
		return errors.NewUserErrorWithField(field, name,
			"Invalid "+field+" name",
			"Names must start with a letter or underscore and contain no spaces")
	}
	return nil
}

// EventName validates an event name.
func EventName(name string) error {
	if err := NonEmpty("event name", name); err != nil {
		return err
	}
	if utf8.RuneCountInString(name) > MaxEventNameLength {
		return errors.NewUserErrorWithField("event", name,
			"Event name too long",
			"Event names must be 128 characters or fewer")
	}
	return nil
}

// Channel parses and validates a transform channel name.
func Channel(s string) (curve.Channel, error) {
	ch, ok := curve.ParseChannel(s)
	if !ok {
		return -1, errors.NewUserErrorWithField("channel", s,
			errors.ErrInvalidChannel.Error(),
			"Use one of pos.x, pos.y, pos.z, rot.x, rot.y, rot.z, rot.w, scale.x, scale.y, scale.z")
	}
	return ch, nil
}

// FrameRate validates a frames-per-second value.
func FrameRate(rate float64) error {
	if rate <= 0 || rate > MaxFrameRate {
		return errors.NewUserErrorWithField("fps", fmt.Sprint(rate),
			"Frame rate out of range",
			fmt.Sprintf("Use a frame rate between 1 and %d", MaxFrameRate))
	}
	return nil
}

// ClipLength validates a clip length in frames.
func ClipLength(frames int) error {
	return InRange("length", frames, 1, MaxClipLength)
}

// NonEmpty rejects a value that is empty or only whitespace. Every name
// check runs it first.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewUserError(
			field+" cannot be empty",
			"Provide a value for "+field)
	}
	return nil
}

// InRange validates that an integer is within a range.
func InRange(field string, value, min, max int) error {
	if value < min || value > max {
		return errors.NewUserErrorWithField(field, fmt.Sprint(value),
			"Value out of range",
			fmt.Sprintf("Must be between %d and %d", min, max))
	}
	return nil
}
