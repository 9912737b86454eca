package parser

import (
	"fmt"
	"strings"

	"github.com/manav03panchal/keyline/internal/errors"
)

// ScriptError represents an edit script error with helpful suggestions.
type ScriptError struct {
	Line       int
	Input      string
	Field      string
	Message    string
	Examples   []string
	Suggestion string
	Err        error
}

func (e *ScriptError) Error() string {
	msg := fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Input, e.Message)
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Unwrap returns the sentinel the error was classified under, if any.
func (e *ScriptError) Unwrap() error {
	return e.Err
}

// NewScriptError creates a new script error with examples.
func NewScriptError(field, input, message string, examples ...string) *ScriptError {
	return &ScriptError{
		Input:    input,
		Field:    field,
		Message:  message,
		Examples: examples,
	}
}

// FormatWithExamples returns the error message with example suggestions.
func (e *ScriptError) FormatWithExamples() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Examples) > 0 {
		sb.WriteString("\n\nValid examples:\n")
		for _, ex := range e.Examples {
			sb.WriteString("  - ")
			sb.WriteString(ex)
			sb.WriteString("\n")
		}
	}

	if e.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

// FrameExamples provides example frame list formats.
var FrameExamples = []string{
	"12",
	"2,5,9",
	"10-20",
	"0-3,7,9-10",
}

// DeltaExamples provides example frame offsets.
var DeltaExamples = []string{
	"+3",
	"-2",
	"4",
}

// ChannelExamples lists the transform channel names.
var ChannelExamples = []string{
	"pos.x", "pos.y", "pos.z",
	"rot.x", "rot.y", "rot.z", "rot.w",
	"scale.x", "scale.y", "scale.z",
}

// ScopeExamples provides example edit modes.
var ScopeExamples = []string{
	"global",
	"events",
	"bone:hips",
	"property:material.alpha",
}

// WaitExamples provides example tick durations.
var WaitExamples = []string{
	"150ms",
	"0.5s",
	"200",
}

// NewFrameError creates a frame list error with standard examples.
func NewFrameError(input string) *ScriptError {
	return &ScriptError{
		Input:      input,
		Field:      "frames",
		Message:    "could not parse frame list",
		Examples:   FrameExamples,
		Suggestion: "Frames are non-negative integers; combine them with commas and ranges.",
		Err:        errors.ErrInvalidFrame,
	}
}

// NewDeltaError creates a frame offset error with standard examples.
func NewDeltaError(input string) *ScriptError {
	return &ScriptError{
		Input:      input,
		Field:      "offset",
		Message:    "could not parse frame offset",
		Examples:   DeltaExamples,
		Suggestion: "Offsets are whole frames and may carry a sign.",
		Err:        errors.ErrInvalidFrame,
	}
}

// NewChannelError creates a channel error listing every channel.
func NewChannelError(input string) *ScriptError {
	return &ScriptError{
		Input:    input,
		Field:    "channel",
		Message:  "unknown transform channel",
		Examples: ChannelExamples,
		Err:      errors.ErrInvalidChannel,
	}
}

// NewCommandError creates an unknown command error.
func NewCommandError(input string) *ScriptError {
	return &ScriptError{
		Input:      input,
		Field:      "command",
		Message:    "unknown command",
		Suggestion: "Type 'help' to list the available commands.",
		Err:        errors.ErrUnknownCommand,
	}
}

// NewUsageError reports a command invoked with the wrong arguments.
func NewUsageError(verb, input string) *ScriptError {
	return &ScriptError{
		Input:      input,
		Field:      verb,
		Message:    "wrong arguments",
		Suggestion: "Usage: " + Usage(verb),
	}
}

// ToUserError converts a ScriptError to a UserError for consistent handling.
func (e *ScriptError) ToUserError() *errors.UserError {
	suggestion := e.Suggestion
	if len(e.Examples) > 0 && suggestion == "" {
		suggestion = fmt.Sprintf("Try: %s", strings.Join(e.Examples[:min(3, len(e.Examples))], ", "))
	}

	message := e.Message
	if e.Line > 0 {
		message = fmt.Sprintf("line %d: %s", e.Line, message)
	}
	return errors.NewUserErrorWithField(e.Field, e.Input, message, suggestion)
}

// AsScriptError returns err as a *ScriptError if it is one.
func AsScriptError(err error) (*ScriptError, bool) {
	var se *ScriptError
	ok := errors.As(err, &se)
	return se, ok
}
