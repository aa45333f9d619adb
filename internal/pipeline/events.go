package pipeline

import (
	"github.com/backmassage/audioconv/internal/catalog"
	"github.com/backmassage/audioconv/internal/config"
	"github.com/backmassage/audioconv/internal/postaction"
)

// RunInfo describes a run as it starts.
type RunInfo struct {
	RunID        string
	Root         string
	InputFormat  catalog.Format
	OutputFormat catalog.Format
	Quality      catalog.Quality
	Overwrite    bool
	Action       config.PostAction
	BackupDir    string
	Workers      int
	DryRun       bool
}

// EventSink receives the run's semantic events. The runner calls it from a
// single goroutine, in order; implementations need no locking of their own.
type EventSink interface {
	RunStarted(info RunInfo)
	Discovered(total int)
	Unreadable(path string, err error)
	NoInputs(root string)
	Collision(c Collision)
	Converted(o Outcome)
	Skipped(o Outcome)
	Failed(o Outcome)
	PostActionApplied(res postaction.Result)
	PostActionFailed(res postaction.Result, err error)
	Progress(done, total int)
	RunFinished(s RunSummary)
}

// NopSink discards every event. Embed it to implement only some methods.
type NopSink struct{}

func (NopSink) RunStarted(RunInfo)                        {}
func (NopSink) Discovered(int)                            {}
func (NopSink) Unreadable(string, error)                  {}
func (NopSink) NoInputs(string)                           {}
func (NopSink) Collision(Collision)                       {}
func (NopSink) Converted(Outcome)                         {}
func (NopSink) Skipped(Outcome)                           {}
func (NopSink) Failed(Outcome)                            {}
func (NopSink) PostActionApplied(postaction.Result)       {}
func (NopSink) PostActionFailed(postaction.Result, error) {}
func (NopSink) Progress(int, int)                         {}
func (NopSink) RunFinished(RunSummary)                    {}

// MultiSink fans every event out to each sink in order.
type MultiSink []EventSink

func (m MultiSink) RunStarted(info RunInfo) {
	for _, s := range m {
		s.RunStarted(info)
	}
}

func (m MultiSink) Discovered(total int) {
	for _, s := range m {
		s.Discovered(total)
	}
}

func (m MultiSink) Unreadable(path string, err error) {
	for _, s := range m {
		s.Unreadable(path, err)
	}
}

func (m MultiSink) NoInputs(root string) {
	for _, s := range m {
		s.NoInputs(root)
	}
}

func (m MultiSink) Collision(c Collision) {
	for _, s := range m {
		s.Collision(c)
	}
}

func (m MultiSink) Converted(o Outcome) {
	for _, s := range m {
		s.Converted(o)
	}
}

func (m MultiSink) Skipped(o Outcome) {
	for _, s := range m {
		s.Skipped(o)
	}
}

func (m MultiSink) Failed(o Outcome) {
	for _, s := range m {
		s.Failed(o)
	}
}

func (m MultiSink) PostActionApplied(res postaction.Result) {
	for _, s := range m {
		s.PostActionApplied(res)
	}
}

func (m MultiSink) PostActionFailed(res postaction.Result, err error) {
	for _, s := range m {
		s.PostActionFailed(res, err)
	}
}

func (m MultiSink) Progress(done, total int) {
	for _, s := range m {
		s.Progress(done, total)
	}
}

func (m MultiSink) RunFinished(sum RunSummary) {
	for _, s := range m {
		s.RunFinished(sum)
	}
}
