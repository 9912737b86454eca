package errors

import (
	"errors"
	"syscall"
)

// Category says who can act on an error: the user, the system, or nobody
// yet because a retry may succeed.
type Category int

const (
	// CategoryUnknown is the default for unclassified errors.
	CategoryUnknown Category = iota
	// CategoryUser marks errors fixed by changing the input or the edit.
	CategoryUser
	// CategorySystem marks disk, permission and corruption failures.
	CategorySystem
	// CategoryRecoverable marks errors that may clear on retry.
	CategoryRecoverable
	// CategoryInternal marks bugs and impossible states.
	CategoryInternal
)

var categoryNames = map[Category]string{
	CategoryUser:        "user",
	CategorySystem:      "system",
	CategoryRecoverable: "recoverable",
	CategoryInternal:    "internal",
}

// String returns the lower-case category name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// sentinelCategories maps bare sentinels to the category they imply when
// they reach the CLI without a typed wrapper.
var sentinelCategories = []struct {
	err      error
	category Category
}{
	{ErrClipNotFound, CategoryUser},
	{ErrClipExists, CategoryUser},
	{ErrNoActiveClip, CategoryUser},
	{ErrBoneNotFound, CategoryUser},
	{ErrPropertyNotFound, CategoryUser},
	{ErrFrameOccupied, CategoryUser},
	{ErrFrameOutOfRange, CategoryUser},
	{ErrInvalidFrame, CategoryUser},
	{ErrInvalidChannel, CategoryUser},
	{ErrInvalidClipName, CategoryUser},
	{ErrSessionBusy, CategoryUser},
	{ErrCompileActive, CategoryUser},
	{ErrNothingToUndo, CategoryUser},
	{ErrNothingToRedo, CategoryUser},
	{ErrEmptyClipboard, CategoryUser},
	{ErrUnknownCommand, CategoryUser},
	{ErrDiskFull, CategorySystem},
	{ErrDatabaseCorrupted, CategorySystem},
	{ErrPermissionDenied, CategorySystem},
	{ErrLockHeld, CategoryRecoverable},
	{ErrTimeout, CategoryRecoverable},
}

var errnoCategories = map[syscall.Errno]Category{
	syscall.ENOSPC:    CategorySystem,
	syscall.EACCES:    CategorySystem,
	syscall.EPERM:     CategorySystem,
	syscall.ENOENT:    CategorySystem,
	syscall.EIO:       CategorySystem,
	syscall.EROFS:     CategorySystem,
	syscall.EAGAIN:    CategoryRecoverable,
	syscall.EINTR:     CategoryRecoverable,
	syscall.ETIMEDOUT: CategoryRecoverable,
}

// Classify determines the category of an error. Typed errors win over
// sentinels, and sentinels win over raw errno values.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case IsUserError(err):
		return CategoryUser
	case IsSystemError(err):
		return CategorySystem
	case IsRecoverableError(err):
		return CategoryRecoverable
	}

	for _, sc := range sentinelCategories {
		if errors.Is(err, sc.err) {
			return sc.category
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if c, ok := errnoCategories[errno]; ok {
			return c
		}
	}
	return CategoryUnknown
}

// ClassifiedError pins an explicit category on an error.
type ClassifiedError struct {
	Err      error
	Category Category
}

func (e *ClassifiedError) Error() string { return e.Err.Error() }

func (e *ClassifiedError) Unwrap() error { return e.Err }

// WithCategory wraps err with an explicit category.
func WithCategory(err error, category Category) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Err: err, Category: category}
}

// GetCategory returns the pinned category if any, else Classify(err).
func GetCategory(err error) Category {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}
	return Classify(err)
}

// IsUserCategory reports whether the user can fix err.
func IsUserCategory(err error) bool {
	return GetCategory(err) == CategoryUser
}

// FormatByCategory renders err as a short prompt line with a hint: the
// specific suggestion when one is known, else the category's generic one.
func FormatByCategory(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	hint := GetSuggestion(err)
	if hint == "" {
		hint = GetCategorySuggestion(err)
	}

	switch GetCategory(err) {
	case CategoryUser:
		return msg + "\nTry: " + hint
	case CategorySystem:
		return "System error: " + msg + "\n" + hint
	case CategoryRecoverable:
		return msg + " (" + hint + ")"
	}
	return msg
}
