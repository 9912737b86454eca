//go:build windows

package storage

import "os"

// Windows has no advisory flock; the PID in the lock file is the only
// guard, so a live owner makes the lock look held.
func tryLock(f *os.File) (bool, error) {
	if pid := readPIDFrom(f); pid > 0 && pid != os.Getpid() && processAlive(pid) {
		return false, nil
	}
	return true, nil
}

func unlock(*os.File) error { return nil }

func processAlive(pid int) bool {
	_, err := os.FindProcess(pid)
	return err == nil
}

func readPIDFrom(f *os.File) int {
	return (&FileLock{path: f.Name()}).readPID()
}
