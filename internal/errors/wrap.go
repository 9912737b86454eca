package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const maxStackDepth = 32

// StackFrame is one caller captured by WithStack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line)
}

// ContextError wraps an error with a message and, optionally, the stack at
// the point it was wrapped.
type ContextError struct {
	Message string
	Cause   error
	Stack   []StackFrame
}

func (e *ContextError) Error() string {
	if e.Cause != nil && e.Message != e.Cause.Error() {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext prepends message to err.
func WithContext(err error, message string) error {
	if err == nil {
		return nil
	}
	return &ContextError{Message: message, Cause: err}
}

// WithContextf is WithContext with a format string.
func WithContextf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &ContextError{Message: fmt.Sprintf(format, args...), Cause: err}
}

// WithStack records the caller's stack on err. Errors that already carry a
// stack are returned unchanged.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if len(GetStack(err)) > 0 {
		return err
	}
	return &ContextError{
		Message: err.Error(),
		Cause:   err,
		Stack:   captureStack(2),
	}
}

func captureStack(skip int) []StackFrame {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := make([]StackFrame, 0, n)
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") &&
			!strings.HasPrefix(frame.Function, "testing.") {
			stack = append(stack, StackFrame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})
		}
		if !more {
			break
		}
	}
	return stack
}

// GetStack returns the stack captured anywhere in err's chain.
func GetStack(err error) []StackFrame {
	var ce *ContextError
	for err != nil {
		if errors.As(err, &ce) {
			if len(ce.Stack) > 0 {
				return ce.Stack
			}
			err = ce.Cause
			continue
		}
		break
	}
	return nil
}

// Chain returns the message of every error in err's chain, outermost first.
func Chain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}

// RootCause returns the innermost wrapped error.
func RootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// FormatDebugError renders err with its chain, category, suggestion and
// stack. Used when --debug is set.
func FormatDebugError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", err)

	if chain := Chain(err); len(chain) > 1 {
		sb.WriteString("\nError chain:\n")
		for i, msg := range chain {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, msg)
		}
	}

	fmt.Fprintf(&sb, "\nCategory: %s\n", GetCategory(err))

	if suggestion := GetSuggestion(err); suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", suggestion)
	}

	if stack := GetStack(err); len(stack) > 0 {
		sb.WriteString("\nStack trace:\n")
		for i, frame := range stack {
			fmt.Fprintf(&sb, "  %d. %s\n       at %s:%d\n", i+1, frame.Function, frame.File, frame.Line)
		}
	}

	if root := RootCause(err); root != err {
		fmt.Fprintf(&sb, "\nRoot cause: %v\n", root)
	}

	return sb.String()
}

// FormatUserError renders err for the terminal: the message, then a
// suggestion and example commands when they are known.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(err.Error())

	if suggestion := GetSuggestion(err); suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(suggestion)
	}

	if IsUserCategory(err) {
		if examples := GetExamples(err); len(examples) > 0 {
			sb.WriteString("\n\nExamples:\n")
			for _, ex := range examples {
				sb.WriteString("  ")
				sb.WriteString(ex)
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
