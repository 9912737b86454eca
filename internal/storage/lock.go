package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	kerrors "github.com/manav03panchal/keyline/internal/errors"
)

// LockFileName is the name of the lock file inside the database directory.
const LockFileName = "keyline.lock"

var (
	// ErrLockAcquireFailed is returned when the lock file cannot be set up.
	ErrLockAcquireFailed = errors.New("failed to acquire database lock")
	// ErrLockAlreadyHeld is returned when another process holds the lock.
	ErrLockAlreadyHeld = errors.New("database is locked by another process")
)

// FileLock keeps two keyline processes from opening the same clip
// database. The lock file holds the owner's PID on its first line and the
// time it was taken on the second.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a lock in dir. Nothing is touched until Acquire.
func NewFileLock(dir string) *FileLock {
	return &FileLock{path: filepath.Join(dir, LockFileName)}
}

// Path returns the lock file path.
func (l *FileLock) Path() string { return l.path }

// Held reports whether this lock is currently acquired.
func (l *FileLock) Held() bool { return l.file != nil }

// Acquire takes the lock without blocking. A lock file left by a process
// that no longer exists is removed first.
func (l *FileLock) Acquire() error {
	if l.file != nil {
		return nil
	}
	if pid := l.readPID(); pid > 0 && !processAlive(pid) {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: stale lock: %v", ErrLockAcquireFailed, err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}

	held, err := tryLock(f)
	switch {
	case err != nil:
		f.Close()
		return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	case !held:
		f.Close()
		return &LockError{Err: ErrLockAlreadyHeld, PID: l.readPID()}
	}

	if err := stamp(f); err != nil {
		unlock(f)
		f.Close()
		return fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	l.file = f
	return nil
}

func stamp(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	body := fmt.Sprintf("%d\n%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := f.WriteAt([]byte(body), 0); err != nil {
		return err
	}
	return f.Sync()
}

// Release drops the lock and removes the lock file. Releasing a lock that
// is not held is a no-op.
func (l *FileLock) Release() error {
	f := l.file
	if f == nil {
		return nil
	}
	l.file = nil

	err := errors.Join(unlock(f), f.Close())
	if err != nil {
		return err
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// readPID returns the PID stored in the lock file, or 0.
func (l *FileLock) readPID() int {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return pid
}

// LockError reports which process is holding the database.
type LockError struct {
	Err error
	PID int
}

func (e *LockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("cannot open clip database: another keyline process (PID %d) is using it", e.PID)
	}
	return fmt.Sprintf("cannot open clip database: %v", e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }

// Is matches ErrLockHeld so callers outside storage can test for it.
func (e *LockError) Is(target error) bool {
	return target == kerrors.ErrLockHeld
}
