package pipeline

import "time"

// RunSummary tracks aggregate counters and byte totals across a run. Only
// the runner's drain loop writes to it.
type RunSummary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	DryRun   bool

	Total              int
	Converted          int
	Skipped            int
	Failed             int
	PostActionFailures int

	// Byte totals over converted files (real runs only).
	InputBytes  int64
	OutputBytes int64
}

// Merge counts one outcome.
func (s *RunSummary) Merge(o Outcome) {
	switch o.Kind {
	case KindConverted:
		s.Converted++
		if !o.DryRun {
			s.InputBytes += o.InputBytes
			s.OutputBytes += o.OutputBytes
		}
	case KindSkipped:
		s.Skipped++
	case KindFailed:
		s.Failed++
	}
}

// Processed is the number of outcomes merged so far.
func (s *RunSummary) Processed() int {
	return s.Converted + s.Skipped + s.Failed
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s *RunSummary) SpaceSaved() int64 {
	return s.InputBytes - s.OutputBytes
}

// OK reports whether the run finished without any failed conversion or
// post-action.
func (s *RunSummary) OK() bool {
	return s.Failed == 0 && s.PostActionFailures == 0
}
