// Package filelock provides file locking, locked appends, and atomic writes
// for files shared between goroutines and between concurrent processes.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileLock wraps a flock file lock for coordinating access to files.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock for the given path.
// The lock file is created on first Lock.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// LockAndAppend appends data to path with a single write while holding the
// exclusive lock path+".lock". The file is created if missing. Readers see
// either none or all of data, and concurrent appenders never interleave.
func LockAndAppend(path string, data []byte) error {
	lock := NewFileLock(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// AtomicWrite replaces path with data. The bytes go to a hidden sibling
// first and are renamed into place once synced, so a report reader sees
// either the previous run's file or the new one. Parent directories are
// created as needed.
func AtomicWrite(path string, data []byte) (err error) {
	dir, base := filepath.Dir(path), filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	staged, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			staged.Close()
			os.Remove(staged.Name())
		}
	}()

	if err := staged.Chmod(0o644); err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	if _, err := staged.Write(data); err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	if err := staged.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", staged.Name(), err)
	}
	if err := staged.Close(); err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	if err := os.Rename(staged.Name(), path); err != nil {
		return fmt.Errorf("install %s: %w", path, err)
	}
	return nil
}
