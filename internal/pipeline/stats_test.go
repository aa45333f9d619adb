package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSummary_Merge(t *testing.T) {
	var s RunSummary
	s.Merge(Outcome{Kind: KindConverted, InputBytes: 1000, OutputBytes: 600})
	s.Merge(Outcome{Kind: KindConverted, InputBytes: 500, OutputBytes: 0, DryRun: true})
	s.Merge(Outcome{Kind: KindSkipped, Reason: ReasonOutputExists})
	s.Merge(Outcome{Kind: KindFailed, Err: errors.New("boom")})

	assert.Equal(t, 2, s.Converted)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 4, s.Processed())
	assert.Equal(t, int64(1000), s.InputBytes, "dry-run bytes are not counted")
	assert.Equal(t, int64(400), s.SpaceSaved())
	assert.False(t, s.OK())
}

func TestRunSummary_SpaceSaved(t *testing.T) {
	s := RunSummary{InputBytes: 1000, OutputBytes: 600}
	assert.Equal(t, int64(400), s.SpaceSaved())

	s = RunSummary{InputBytes: 100, OutputBytes: 150}
	assert.Equal(t, int64(-50), s.SpaceSaved())
}

func TestRunSummary_OK(t *testing.T) {
	s := RunSummary{Converted: 3, Skipped: 1}
	assert.True(t, s.OK())

	s.PostActionFailures = 1
	assert.False(t, s.OK())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "converted", KindConverted.String())
	assert.Equal(t, "skipped", KindSkipped.String())
	assert.Equal(t, "failed", KindFailed.String())
}
