package runtime

import (
	"github.com/manav03panchal/keyline/internal/errors"
)

// ExitCode maps an error to the process exit status: 1 for user mistakes,
// 2 for system failures, 3 for conditions worth retrying.
func ExitCode(err error) int {
	switch errors.GetCategory(err) {
	case errors.CategorySystem:
		return 2
	case errors.CategoryRecoverable:
		return 3
	default:
		return 1
	}
}

// ReportError writes err through the context's formatter: a JSON error
// object in JSON mode, otherwise the user-facing message with its
// suggestion, or the full debug report when debug is on.
func (c *Context) ReportError(err error) {
	if err == nil {
		return
	}
	if c.IsJSON() {
		c.JSONFormatter().PrintError("error", err.Error(), errors.GetSuggestion(err))
		return
	}
	if c.Debug {
		c.Formatter.Println(errors.FormatDebugError(errors.WithStack(err)))
		return
	}
	c.CLIFormatter().Error(errors.FormatUserError(err))
}

// ReportInline writes err as a short entry for the interactive editor,
// where the session carries on after a failed command. JSON and debug
// output match ReportError.
func (c *Context) ReportInline(err error) {
	if err == nil {
		return
	}
	if c.IsJSON() || c.Debug {
		c.ReportError(err)
		return
	}
	c.CLIFormatter().Error(errors.FormatByCategory(err))
}
