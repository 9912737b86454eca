package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ResolveLogPath places a bare file name such as "keyline.log" in the
// keyline directory under the XDG state home. Paths with a directory part
// are returned unchanged.
func ResolveLogPath(file string) string {
	if file == "" || filepath.IsAbs(file) || filepath.Dir(file) != "." {
		return file
	}
	return filepath.Join(xdg.StateHome, "keyline", file)
}

// ParseLevel resolves a level name. Unknown names map to WARN.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// OpenFile opens path for appending, creating its directory. A file already
// larger than maxSize is first moved to path+".old", replacing any earlier
// backup.
func OpenFile(path string, maxSize int64) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if maxSize > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() >= maxSize {
			backup := path + ".old"
			_ = os.Remove(backup)
			if err := os.Rename(path, backup); err != nil {
				return nil, fmt.Errorf("rotate log: %w", err)
			}
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
