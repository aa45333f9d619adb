package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/backmassage/audioconv/internal/catalog"
	"github.com/backmassage/audioconv/internal/config"
	"github.com/backmassage/audioconv/internal/ffmpeg"
	"github.com/backmassage/audioconv/internal/postaction"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errEngine = errors.New("exit status 1")

// fakeEngine writes outputBytes bytes per job and fails for inputs listed
// in fail (by base name) after leaving a partial output behind.
type fakeEngine struct {
	outputBytes int
	fail        map[string]bool
	calls       atomic.Int32

	// block, when set, makes Transcode wait for ctx and signal started.
	block   bool
	started chan string
}

func (f *fakeEngine) Transcode(ctx context.Context, job ffmpeg.Job) error {
	f.calls.Add(1)
	if f.block {
		if f.started != nil {
			f.started <- job.Input
		}
		<-ctx.Done()
		return ctx.Err()
	}
	if f.fail[filepath.Base(job.Input)] {
		_ = os.WriteFile(job.Output, []byte("partial"), 0o644)
		return errEngine
	}
	n := f.outputBytes
	if n == 0 {
		n = 10
	}
	return os.WriteFile(job.Output, make([]byte, n), 0o644)
}

// recordingSink keeps every event for later assertions.
type recordingSink struct {
	mu          sync.Mutex
	info        RunInfo
	discovered  int
	noInputs    bool
	collisions  []Collision
	unreadable  []string
	converted   []Outcome
	skipped     []Outcome
	failed      []Outcome
	postApplied []postaction.Result
	postFailed  []error
	progress    []int
	finished    []RunSummary
}

func (s *recordingSink) RunStarted(info RunInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
}

func (s *recordingSink) Discovered(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discovered = total
}

func (s *recordingSink) Unreadable(path string, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreadable = append(s.unreadable, path)
}

func (s *recordingSink) NoInputs(string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noInputs = true
}

func (s *recordingSink) Collision(c Collision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collisions = append(s.collisions, c)
}

func (s *recordingSink) Converted(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.converted = append(s.converted, o)
}

func (s *recordingSink) Skipped(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped = append(s.skipped, o)
}

func (s *recordingSink) Failed(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, o)
}

func (s *recordingSink) PostActionApplied(res postaction.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postApplied = append(s.postApplied, res)
}

func (s *recordingSink) PostActionFailed(_ postaction.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postFailed = append(s.postFailed, err)
}

func (s *recordingSink) Progress(done, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, done)
}

func (s *recordingSink) RunFinished(sum RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, sum)
}

// mockSink is a testify mock; unexpected events fail the test.
type mockSink struct {
	mock.Mock
}

func (m *mockSink) RunStarted(info RunInfo)                           { m.Called(info) }
func (m *mockSink) Discovered(total int)                              { m.Called(total) }
func (m *mockSink) Unreadable(path string, err error)                 { m.Called(path, err) }
func (m *mockSink) NoInputs(root string)                              { m.Called(root) }
func (m *mockSink) Collision(c Collision)                             { m.Called(c) }
func (m *mockSink) Converted(o Outcome)                               { m.Called(o) }
func (m *mockSink) Skipped(o Outcome)                                 { m.Called(o) }
func (m *mockSink) Failed(o Outcome)                                  { m.Called(o) }
func (m *mockSink) PostActionApplied(res postaction.Result)           { m.Called(res) }
func (m *mockSink) PostActionFailed(res postaction.Result, err error) { m.Called(res, err) }
func (m *mockSink) Progress(done, total int)                          { m.Called(done, total) }
func (m *mockSink) RunFinished(s RunSummary)                          { m.Called(s) }

// touch creates dir/name (and parents) with a few bytes of content.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("audio data"), 0o644))
	return path
}

func testConfig(root string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.RootDir = root
	cfg.InputFormat = catalog.FormatWMA
	cfg.OutputFormat = catalog.FormatMP3
	cfg.Workers = 4
	return &cfg
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
