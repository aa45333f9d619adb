// Package postaction applies the configured disposition to an original file
// after it has been converted: leave it, delete it, or move it into a backup
// directory and record where it came from.
package postaction

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/backmassage/audioconv/internal/config"
	"github.com/backmassage/audioconv/internal/filelock"
)

// Sentinel errors. Every failure returned by Apply wraps exactly one.
var (
	ErrDeletionFailed   = errors.New("deletion failed")
	ErrMoveFailed       = errors.New("move failed")
	ErrProvenanceFailed = errors.New("provenance log append failed")
	ErrUnknownAction    = errors.New("unknown post-action")
)

// Result describes what Apply did.
type Result struct {
	Action config.PostAction
	Input  string

	// Destination is where the original now lives (move only). It is set
	// even when the provenance append failed afterwards.
	Destination string
}

// Executor applies post-actions. It is safe for concurrent use; moves are
// serialized so the destination check and the rename cannot race, and
// provenance appends are serialized in-process on top of the file lock that
// guards them against other processes.
type Executor struct {
	mu    sync.Mutex
	logMu sync.Mutex
}

// New returns an Executor.
func New() *Executor { return &Executor{} }

// Apply performs action on input, which was converted to output. backupDir
// is only used by ActionMove. Failures never touch output.
func (e *Executor) Apply(action config.PostAction, input, output, backupDir string) (Result, error) {
	res := Result{Action: action, Input: input}
	switch action {
	case config.ActionNone, "":
		return res, nil
	case config.ActionRemove:
		return res, remove(input, output)
	case config.ActionMove:
		dest, err := e.move(input, backupDir)
		res.Destination = dest
		return res, err
	default:
		return res, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// remove deletes input, but only once output is known to exist.
func remove(input, output string) error {
	if _, err := os.Stat(output); err != nil {
		return fmt.Errorf("%w: %s: converted output missing, original kept: %v", ErrDeletionFailed, input, err)
	}
	if err := os.Remove(input); err != nil {
		return fmt.Errorf("%w: %v", ErrDeletionFailed, err)
	}
	return nil
}

func (e *Executor) move(input, backupDir string) (string, error) {
	if backupDir == "" {
		return "", fmt.Errorf("%w: %s: no backup directory configured", ErrMoveFailed, input)
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}
	// MkdirAll treats an existing directory as success, which covers
	// workers racing to create it.
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrMoveFailed, backupDir, err)
	}
	dest := filepath.Join(backupDir, filepath.Base(abs))

	e.mu.Lock()
	err = moveFile(abs, dest)
	e.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}

	logPath := filepath.Join(backupDir, config.ProvenanceFile)
	e.logMu.Lock()
	err = filelock.LockAndAppend(logPath, []byte(abs+"\n"))
	e.logMu.Unlock()
	if err != nil {
		return dest, fmt.Errorf("%w: %v", ErrProvenanceFailed, err)
	}
	return dest, nil
}

// moveFile renames src to dst, refusing to replace an existing dst. Across
// filesystems it falls back to copy and remove.
func moveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%s already exists", dst)
	} else if !os.IsNotExist(err) {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		return copyAndRemove(src, dst)
	}
	return err
}

func copyAndRemove(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())

	in.Close()
	if rmErr := os.Remove(src); rmErr != nil {
		return fmt.Errorf("remove original after copy: %w", rmErr)
	}
	return nil
}
