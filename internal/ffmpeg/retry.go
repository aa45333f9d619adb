package ffmpeg

// RetryAction identifies which fix was applied (or none).
type RetryAction int

const (
	RetryNone          RetryAction = iota
	RetryDropVideo                 // Discard picture streams.
	RetryFixTimestamps             // Enable +genpts+discardcorrupt.
)

func (a RetryAction) String() string {
	switch a {
	case RetryDropVideo:
		return "drop picture streams"
	case RetryFixTimestamps:
		return "regenerate timestamps"
	default:
		return "none"
	}
}

const maxAttempts = 3

// RetryState tracks which fallback fixes have been applied across ffmpeg
// attempts for a single file.
type RetryState struct {
	Attempt     int
	MaxAttempts int

	DropVideo    bool
	TimestampFix bool
}

// NewRetryState returns the state for a first attempt.
func NewRetryState() *RetryState {
	return &RetryState{MaxAttempts: maxAttempts}
}

// Advance inspects stderr from a failed run, applies the first matching fix
// that has not been applied yet, and returns it. It returns RetryNone when
// nothing matches or the attempt limit is reached.
//
// Pattern order: picture stream, then timestamps. One fix per attempt.
func (s *RetryState) Advance(stderr string) RetryAction {
	s.Attempt++
	if s.Attempt >= s.MaxAttempts {
		return RetryNone
	}

	if !s.DropVideo && MatchPictureStreamIssue(stderr) {
		s.DropVideo = true
		return RetryDropVideo
	}
	if !s.TimestampFix && MatchTimestampIssue(stderr) {
		s.TimestampFix = true
		return RetryFixTimestamps
	}

	return RetryNone
}
