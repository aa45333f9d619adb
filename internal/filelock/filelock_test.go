package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "test.lock"))

	require.NoError(t, lock.Lock())
	require.NoError(t, lock.Unlock())
}

func TestLockAndAppend_ConcurrentLinesDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")

	const goroutines = 8
	const perGoroutine = 25

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				line := fmt.Sprintf("/music/worker-%d/track-%03d.wma\n", g, i)
				if err := LockAndAppend(path, []byte(line)); err != nil {
					t.Errorf("append: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, goroutines*perGoroutine)

	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "/music/worker-") && strings.HasSuffix(l, ".wma"), "corrupt line %q", l)
		seen[l] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestLockAndAppend_MissingDirectory(t *testing.T) {
	err := LockAndAppend(filepath.Join(t.TempDir(), "nope", "log.txt"), []byte("x\n"))
	assert.Error(t, err)
}

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "report.yaml")

	require.NoError(t, AtomicWrite(path, []byte("first")))
	require.NoError(t, AtomicWrite(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestAtomicWrite_Mode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, AtomicWrite(path, []byte("run_id: x\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestAtomicWrite_FailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "occupied"), 0o755))

	assert.Error(t, AtomicWrite(target, []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "report.yaml", entries[0].Name())
}
