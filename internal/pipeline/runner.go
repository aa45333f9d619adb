// Package pipeline discovers input files, converts them on a fixed worker
// pool, applies the post-action to each converted original, and aggregates
// the outcomes into a RunSummary. It reports progress only through an
// EventSink.
package pipeline

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/backmassage/audioconv/internal/catalog"
	"github.com/backmassage/audioconv/internal/config"
	"github.com/backmassage/audioconv/internal/ffmpeg"
	"github.com/backmassage/audioconv/internal/postaction"
	"github.com/google/uuid"
)

// State is the runner's lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateDiscovering
	StateScheduling
	StateDraining
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateScheduling:
		return "scheduling"
	case StateDraining:
		return "draining"
	default:
		return "finalized"
	}
}

// Runner executes one conversion run. Create it with NewRunner and call Run
// once.
type Runner struct {
	cfg   *config.Config
	task  *Task
	post  *postaction.Executor
	sink  EventSink
	state atomic.Int32
}

// NewRunner wires a runner. A nil sink discards events.
func NewRunner(cfg *config.Config, engine ffmpeg.Engine, sink EventSink) *Runner {
	if sink == nil {
		sink = NopSink{}
	}
	return &Runner{
		cfg:  cfg,
		task: &Task{Engine: engine},
		post: postaction.New(),
		sink: sink,
	}
}

// State returns the current lifecycle state. Safe to call concurrently.
func (r *Runner) State() State { return State(r.state.Load()) }

func (r *Runner) setState(s State) { r.state.Store(int32(s)) }

// result is what a worker hands to the drain loop.
type result struct {
	outcome Outcome
	post    *postaction.Result
	postErr error
}

// Run discovers, converts and finalizes. It returns a *ConfigError or a
// *DiscoveryError for run-wide failures; per-file failures are counted in
// the summary instead. Every discovered file yields exactly one outcome,
// also when ctx is cancelled mid-run.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateDiscovering)) {
		return RunSummary{}, ErrRunnerUsed
	}
	defer r.setState(StateFinalized)

	summary := RunSummary{RunID: uuid.NewString(), Started: time.Now(), DryRun: r.cfg.DryRun}

	if err := r.checkConfig(); err != nil {
		return summary, err
	}

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	r.sink.RunStarted(RunInfo{
		RunID:        summary.RunID,
		Root:         r.cfg.RootDir,
		InputFormat:  r.cfg.InputFormat,
		OutputFormat: r.cfg.OutputFormat,
		Quality:      r.cfg.Quality,
		Overwrite:    r.cfg.Overwrite,
		Action:       r.cfg.Action,
		BackupDir:    r.cfg.BackupDir,
		Workers:      workers,
		DryRun:       r.cfg.DryRun,
	})

	opts := DiscoverOptions{OnSkip: r.sink.Unreadable}
	if r.cfg.Action == config.ActionMove && r.cfg.BackupDir != "" {
		opts.Prune = []string{r.cfg.BackupDir}
	}
	inputs, err := Discover(r.cfg.RootDir, r.cfg.InputFormat, opts)
	if err != nil {
		return summary, &DiscoveryError{Root: r.cfg.RootDir, Err: err}
	}

	summary.Total = len(inputs)
	r.sink.Discovered(summary.Total)
	if summary.Total == 0 {
		r.sink.NoInputs(r.cfg.RootDir)
		return r.finish(summary), nil
	}

	for _, c := range DetectCollisions(inputs, r.cfg.OutputFormat) {
		r.sink.Collision(c)
	}

	r.setState(StateScheduling)
	if workers > summary.Total {
		workers = summary.Total
	}

	// Both channels hold every request, so neither submission nor a
	// worker handing back its result ever blocks.
	jobs := make(chan Request, summary.Total)
	results := make(chan result, summary.Total)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range jobs {
				results <- r.process(ctx, req)
			}
		}()
	}

	for _, in := range inputs {
		jobs <- Request{
			InputPath:    in,
			InputFormat:  r.cfg.InputFormat,
			OutputFormat: r.cfg.OutputFormat,
			Quality:      r.cfg.Quality,
			Overwrite:    r.cfg.Overwrite,
			DryRun:       r.cfg.DryRun,
		}
	}
	close(jobs)

	r.setState(StateDraining)
	for done := 1; done <= summary.Total; done++ {
		res := <-results
		summary.Merge(res.outcome)
		r.emitOutcome(res.outcome)
		if res.post != nil {
			if res.postErr != nil {
				summary.PostActionFailures++
				r.sink.PostActionFailed(*res.post, res.postErr)
			} else {
				r.sink.PostActionApplied(*res.post)
			}
		}
		r.sink.Progress(done, summary.Total)
	}
	wg.Wait()

	return r.finish(summary), nil
}

// checkConfig enforces the run-wide preconditions. It runs before discovery
// so that a bad configuration never reaches the engine.
func (r *Runner) checkConfig() error {
	if _, err := catalog.ParseFormat(string(r.cfg.InputFormat)); err != nil {
		return &ConfigError{Err: err}
	}
	if r.cfg.InputFormat == r.cfg.OutputFormat {
		return &ConfigError{Err: config.ErrSameFormat}
	}
	if _, err := catalog.Lookup(r.cfg.OutputFormat, r.cfg.Quality); err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

// process runs inside a worker: the conversion, then the post-action for a
// real conversion.
func (r *Runner) process(ctx context.Context, req Request) result {
	o := r.task.Execute(ctx, req)
	if o.Kind != KindConverted || o.DryRun || r.cfg.Action == config.ActionNone || r.cfg.Action == "" {
		return result{outcome: o}
	}
	res, err := r.post.Apply(r.cfg.Action, o.InputPath, o.OutputPath, r.cfg.BackupDir)
	return result{outcome: o, post: &res, postErr: err}
}

func (r *Runner) emitOutcome(o Outcome) {
	switch o.Kind {
	case KindConverted:
		r.sink.Converted(o)
	case KindSkipped:
		r.sink.Skipped(o)
	default:
		r.sink.Failed(o)
	}
}

func (r *Runner) finish(s RunSummary) RunSummary {
	s.Duration = time.Since(s.Started)
	r.setState(StateFinalized)
	r.sink.RunFinished(s)
	return s
}
