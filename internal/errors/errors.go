// Package errors provides the error types shared by the keyline packages.
// Errors fall into three groups: UserError (bad input the user can fix),
// SystemError (storage and OS failures) and RecoverableError (transient
// conditions worth retrying).
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the edit engine and the CLI around it.
var (
	ErrClipNotFound      = errors.New("clip not found")
	ErrClipExists        = errors.New("clip already exists")
	ErrNoActiveClip      = errors.New("no active clip")
	ErrBoneNotFound      = errors.New("bone not found")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrFrameOccupied     = errors.New("target frame is occupied")
	ErrFrameOutOfRange   = errors.New("frame out of range")
	ErrInvalidFrame      = errors.New("invalid frame")
	ErrInvalidChannel    = errors.New("invalid channel")
	ErrInvalidClipName   = errors.New("invalid clip name")
	ErrSessionBusy       = errors.New("session is busy")
	ErrCompileActive     = errors.New("compile already running")
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrNothingToRedo     = errors.New("nothing to redo")
	ErrEmptyClipboard    = errors.New("clipboard is empty")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrDiskFull          = errors.New("disk full")
	ErrDatabaseCorrupted = errors.New("database corrupted")
	ErrLockHeld          = errors.New("database locked by another process")
	ErrTimeout           = errors.New("operation timed out")
	ErrPermissionDenied  = errors.New("permission denied")
)

// UserError is an error caused by input the user can correct.
type UserError struct {
	Message    string
	Reason     string
	Suggestion string
	Field      string
	Value      string
}

func (e *UserError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return e.Message
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion}
}

// NewUserErrorWithField creates a UserError that names the offending input.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// SystemError is a failure outside the user's control.
type SystemError struct {
	Message string
	Cause   error
	Op      string
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{Message: message, Cause: cause}
}

// NewSystemErrorWithOp creates a SystemError tagged with the failing operation.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{Message: message, Cause: cause, Op: op}
}

// RecoverableError is a transient failure: running the command again
// may succeed once the condition clears, e.g. another keyline process
// lets go of the database.
type RecoverableError struct {
	Message string
	Cause   error
	Hint    string
}

func (e *RecoverableError) Error() string {
	return e.Message
}

func (e *RecoverableError) Unwrap() error {
	return e.Cause
}

// NewRecoverableError creates a new RecoverableError.
func NewRecoverableError(message string, cause error, hint string) *RecoverableError {
	return &RecoverableError{Message: message, Cause: cause, Hint: hint}
}

func asType[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

// IsUserError reports whether err's chain holds a *UserError.
func IsUserError(err error) bool {
	_, ok := asType[*UserError](err)
	return ok
}

// IsSystemError reports whether err's chain holds a *SystemError.
func IsSystemError(err error) bool {
	_, ok := asType[*SystemError](err)
	return ok
}

// IsRecoverableError reports whether err's chain holds a *RecoverableError.
func IsRecoverableError(err error) bool {
	_, ok := asType[*RecoverableError](err)
	return ok
}

// AsUserError extracts a UserError from an error chain.
func AsUserError(err error) (*UserError, bool) { return asType[*UserError](err) }


// AsRecoverableError extracts a RecoverableError from an error chain.
func AsRecoverableError(err error) (*RecoverableError, bool) {
	return asType[*RecoverableError](err)
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
