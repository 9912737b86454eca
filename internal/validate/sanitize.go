package validate

import (
	"strings"
	"unicode"
)

// maxFilenameRunes bounds names derived from clip names, e.g. bake output.
const maxFilenameRunes = 200

func dropRune(keep func(rune) bool) func(rune) rune {
	return func(r rune) rune {
		if keep(r) {
			return r
		}
		return -1
	}
}

// SanitizeName trims a clip or event name and drops control characters.
func SanitizeName(name string) string {
	return strings.Map(dropRune(func(r rune) bool { return !unicode.IsControl(r) }), strings.TrimSpace(name))
}

// SanitizeScript drops NUL bytes and folds CRLF and CR line endings to LF
// before an edit script is split into lines.
func SanitizeScript(src string) string {
	src = strings.ReplaceAll(src, "\x00", "")
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return strings.ReplaceAll(src, "\r", "\n")
}

// StripControlChars removes control characters other than newline and tab.
func StripControlChars(s string) string {
	return strings.Map(dropRune(func(r rune) bool {
		return r == '\n' || r == '\t' || !unicode.IsControl(r)
	}), s)
}

// SafeFilename turns a clip name into something every filesystem accepts:
// path separators and reserved characters become '_', NULs vanish, and
// leading or trailing dots and spaces are trimmed.
func SafeFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == 0:
			return -1
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, s)
	s = strings.Trim(s, " .")

	if r := []rune(s); len(r) > maxFilenameRunes {
		s = string(r[:maxFilenameRunes])
	}
	return s
}
