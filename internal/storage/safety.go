package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manav03panchal/keyline/internal/errors"
)

const (
	// MinFreeSpace is the headroom every write leaves on the volume (10MB).
	MinFreeSpace = 10 << 20
	// MinFreeSpaceWarning is the free space below which doctor warns (50MB).
	MinFreeSpaceWarning = 50 << 20
)

// DiskSpaceInfo describes the volume holding a path.
type DiskSpaceInfo struct {
	Path       string
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64
}

// FreePercent returns the share of free space.
func (d *DiskSpaceInfo) FreePercent() float64 {
	if d.TotalBytes == 0 {
		return 0
	}
	return float64(d.FreeBytes) / float64(d.TotalBytes) * 100
}

// FreeMB returns the free space in whole megabytes.
func (d *DiskSpaceInfo) FreeMB() uint64 {
	return d.FreeBytes >> 20
}

// GetDiskSpace reports the volume holding path, or its nearest existing
// parent.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	path = existingParent(path)
	total, free, err := volumeStats(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk space: %w", err)
	}
	return &DiskSpaceInfo{Path: path, TotalBytes: total, FreeBytes: free, UsedBytes: total - free}, nil
}

// requireSpace fails with ErrDiskFull unless dir's volume can take size
// more bytes and still keep MinFreeSpace. An unreadable volume passes.
func requireSpace(dir string, size int) error {
	info, err := GetDiskSpace(dir)
	if err != nil {
		return nil
	}
	need := uint64(MinFreeSpace + size)
	if info.FreeBytes >= need {
		return nil
	}
	return errors.NewSystemError(
		fmt.Sprintf("insufficient disk space: %d MB free, need at least %d MB", info.FreeMB(), need>>20),
		errors.ErrDiskFull,
	)
}

// CheckDiskSpace fails with ErrDiskFull when path has less than
// MinFreeSpace available.
func CheckDiskSpace(path string) error {
	return requireSpace(path, 0)
}

// CheckDiskSpaceWarning returns a warning line when space is low, or "".
func CheckDiskSpaceWarning(path string) string {
	info, err := GetDiskSpace(path)
	if err != nil || info.FreeBytes >= MinFreeSpaceWarning {
		return ""
	}
	return fmt.Sprintf("Warning: Low disk space (%d MB free, %.1f%% of the volume)", info.FreeMB(), info.FreePercent())
}

func existingParent(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

// SafeWrite replaces path with data atomically: the bytes go to a synced
// temp file in the same directory which is then renamed over path. Bakes,
// exports and the config file are written this way.
func SafeWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := requireSpace(dir, len(data)); err != nil {
		return err
	}

	tmp, err := writeTemp(dir, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// writeTemp writes data to a new temp file in dir and returns its name.
// The file is removed again on any failure.
func writeTemp(dir string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(dir, ".keyline-*.tmp")
	if err != nil {
		return "", diskError("create temp file", err)
	}
	tmp := f.Name()

	fail := func(err error) (string, error) {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		return fail(diskError("write", err))
	}
	if err := f.Sync(); err != nil {
		return fail(diskError("sync", err))
	}
	if err := f.Chmod(perm); err != nil {
		return fail(fmt.Errorf("failed to set permissions: %w", err))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", diskError("close", err)
	}
	return tmp, nil
}

func diskError(op string, err error) error {
	if isDiskFullError(err) {
		return errors.NewSystemErrorWithOp(op, "disk full", errors.ErrDiskFull)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// EnsureDirectory creates path with owner-only permissions.
func EnsureDirectory(path string) error {
	if err := CheckDiskSpace(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return diskError("mkdir", err)
	}
	return nil
}
