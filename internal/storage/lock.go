package storage

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrLocked is returned by Lock when another process holds the data file.
var ErrLocked = errors.New("data file is locked by another process")

// FileLock marks a data file as owned by one process. The lock is a
// sibling file "<path>.lock" holding the owner's pid.
type FileLock struct {
	path string
}

// Lock claims the data file at path. It fails with ErrLocked while another
// FileLock for the same path is held, including one left behind by a process
// that exited without releasing it.
func Lock(path string) (*FileLock, error) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s (owner pid %s; remove the file if that process is gone)",
				ErrLocked, lockPath, lockOwner(lockPath))
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	_, werr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(lockPath)
		return nil, fmt.Errorf("failed to lock %s: %w", path, werr)
	}
	return &FileLock{path: lockPath}, nil
}

// Path returns the lock file.
func (l *FileLock) Path() string {
	return l.path
}

// Unlock releases the lock. It is safe to call more than once.
func (l *FileLock) Unlock() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func lockOwner(lockPath string) string {
	// #nosec G304 -- lockPath is derived from the configured data file
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return "unknown"
	}
	if pid := strings.TrimSpace(string(data)); pid != "" {
		return pid
	}
	return "unknown"
}
