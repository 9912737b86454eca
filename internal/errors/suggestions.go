package errors

import "errors"

// Suggestions maps sentinel errors to a next step for the user.
var Suggestions = map[error]string{
	ErrClipNotFound:     "Use 'keyline list' to see stored clips.",
	ErrClipExists:       "Pick another name or remove the old clip with 'keyline delete <clip>'.",
	ErrNoActiveClip:     "Select a clip with 'keyline use <clip>' or pass one explicitly.",
	ErrBoneNotFound:     "Use 'keyline show <clip>' to list the bones in the clip.",
	ErrPropertyNotFound: "Use 'keyline show <clip>' to list the animated properties.",
	ErrFrameOccupied:    "Another key already sits on the target frame. Delete it first or move by a different offset.",
	ErrFrameOutOfRange:  "Frames must lie between 0 and the clip length.",
	ErrInvalidFrame:     "Frames are whole numbers, optionally given as a list like '2,5,9' or a range like '10-20'.",
	ErrInvalidChannel:   "Channels are pos.x, pos.y, pos.z, rot.x, rot.y, rot.z, rot.w, scale.x, scale.y and scale.z.",
	ErrInvalidClipName:  "Clip names may contain letters, digits, dashes, underscores and periods (max 64 chars).",
	ErrSessionBusy:      "Wait for the preview or compile to finish before editing.",
	ErrCompileActive:    "A compile is already running for this clip.",
	ErrNothingToUndo:    "The history is empty or already at its oldest entry.",
	ErrNothingToRedo:    "There is nothing newer in the history to redo.",
	ErrEmptyClipboard:   "Copy some frames with 'copy <frames>' before pasting.",
	ErrUnknownCommand:   "Type 'help' in the editor for the list of commands.",

	ErrDiskFull:          "Free up disk space and try again.",
	ErrDatabaseCorrupted: "Move the data directory aside and re-create your clips.",
	ErrLockHeld:          "Another keyline process has the clip store open. Close it and try again.",
	ErrTimeout:           "The operation took too long. Try again.",
	ErrPermissionDenied:  "Check file permissions in your data directory (~/.local/share/keyline/).",
}

// GetSuggestion returns a suggestion for err, if one is known.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}
	if re, ok := AsRecoverableError(err); ok && re.Hint != "" {
		return re.Hint
	}

	return ""
}

// GetCategorySuggestion returns a generic suggestion for err's category.
// FormatByCategory falls back to it when no specific suggestion is known.
func GetCategorySuggestion(err error) string {
	switch GetCategory(err) {
	case CategoryUser:
		return "Check your input and try again. Use --help for usage information."
	case CategorySystem:
		return "This is a system error. Check system resources and try again."
	case CategoryRecoverable:
		return "This error may resolve itself. Try the operation again."
	}
	return ""
}

// CommandExamples lists example invocations for common errors.
var CommandExamples = map[error][]string{
	ErrNoActiveClip: {
		"keyline use walk-cycle",
		"keyline edit walk-cycle",
	},
	ErrClipNotFound: {
		"keyline new walk-cycle --bone hips --prop material.alpha",
		"keyline list",
	},
	ErrInvalidFrame: {
		"move 2,5,9 +3",
		"delete 10-20",
		"copy 0,12",
	},
	ErrInvalidChannel: {
		"key bone hips pos.x 0.5 1.5",
		"drag hips rot.y 0 0.25",
	},
}

// GetExamples returns example commands for err.
func GetExamples(err error) []string {
	for knownErr, examples := range CommandExamples {
		if errors.Is(err, knownErr) {
			return examples
		}
	}
	return nil
}
