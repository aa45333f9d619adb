package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/audioconv/internal/catalog"
	"github.com/backmassage/audioconv/internal/ffmpeg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wmaRequest(input string) Request {
	return Request{
		InputPath:    input,
		InputFormat:  catalog.FormatWMA,
		OutputFormat: catalog.FormatMP3,
		Quality:      catalog.QualityHigh,
	}
}

func TestOutputPathFor(t *testing.T) {
	assert.Equal(t, "/m/a.mp3", OutputPathFor("/m/a.wma", catalog.FormatMP3))
	assert.Equal(t, "/m/a.b.flac", OutputPathFor("/m/a.b.WMA", catalog.FormatFLAC))
	assert.Equal(t, "/m/v1.0/a.mp3", OutputPathFor("/m/v1.0/a.wma", catalog.FormatMP3))
}

func TestTask_Converted(t *testing.T) {
	in := touch(t, t.TempDir(), "a.wma")
	engine := &fakeEngine{outputBytes: 4}

	o := (&Task{Engine: engine}).Execute(context.Background(), wmaRequest(in))

	require.Equal(t, KindConverted, o.Kind, "err: %v", o.Err)
	assert.Equal(t, in, o.InputPath)
	assert.Equal(t, filepath.Join(filepath.Dir(in), "a.mp3"), o.OutputPath)
	assert.Equal(t, int64(len("audio data")), o.InputBytes)
	assert.Equal(t, int64(4), o.OutputBytes)
	assert.EqualValues(t, 1, engine.calls.Load())

	data, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "audio data", string(data), "input must be untouched")
}

func TestTask_SkipsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, dir, "a.wma")
	touch(t, dir, "a.mp3")
	engine := &fakeEngine{}

	o := (&Task{Engine: engine}).Execute(context.Background(), wmaRequest(in))

	assert.Equal(t, KindSkipped, o.Kind)
	assert.Equal(t, ReasonOutputExists, o.Reason)
	assert.EqualValues(t, 0, engine.calls.Load())
}

func TestTask_OverwriteReplacesOutput(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, dir, "a.wma")
	touch(t, dir, "a.mp3")
	engine := &fakeEngine{outputBytes: 7}

	req := wmaRequest(in)
	req.Overwrite = true
	o := (&Task{Engine: engine}).Execute(context.Background(), req)

	assert.Equal(t, KindConverted, o.Kind)
	assert.Equal(t, int64(7), o.OutputBytes)
	assert.EqualValues(t, 1, engine.calls.Load())
}

func TestTask_EngineFailureRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, dir, "bad.wma")
	engine := &fakeEngine{fail: map[string]bool{"bad.wma": true}}

	o := (&Task{Engine: engine}).Execute(context.Background(), wmaRequest(in))

	assert.Equal(t, KindFailed, o.Kind)
	assert.ErrorIs(t, o.Err, errEngine)
	assert.NoFileExists(t, filepath.Join(dir, "bad.mp3"))
	assert.FileExists(t, in)
}

// outputOnlyEngine records the job it received and fails without writing.
type outputOnlyEngine struct {
	job ffmpeg.Job
}

func (e *outputOnlyEngine) Transcode(_ context.Context, job ffmpeg.Job) error {
	e.job = job
	return errEngine
}

func TestTask_FailedOverwriteKeepsEarlierOutput(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, dir, "a.wma")
	out := filepath.Join(dir, "a.mp3")
	require.NoError(t, os.WriteFile(out, []byte("good previous mp3"), 0o644))
	engine := &outputOnlyEngine{}

	req := wmaRequest(in)
	req.Overwrite = true
	o := (&Task{Engine: engine}).Execute(context.Background(), req)

	assert.Equal(t, KindFailed, o.Kind)
	data, err := os.ReadFile(out)
	require.NoError(t, err, "earlier output must survive a failed conversion")
	assert.Equal(t, "good previous mp3", string(data))

	assert.Equal(t, dir, filepath.Dir(engine.job.Output))
	assert.Equal(t, ".mp3", filepath.Ext(engine.job.Output))
	assert.NotEqual(t, out, engine.job.Output)
	assert.NoFileExists(t, engine.job.Output)
}

func TestTask_LeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	good := touch(t, dir, "good.wma")
	bad := touch(t, dir, "bad.wma")
	task := &Task{Engine: &fakeEngine{fail: map[string]bool{"bad.wma": true}}}

	assert.Equal(t, KindConverted, task.Execute(context.Background(), wmaRequest(good)).Kind)
	assert.Equal(t, KindFailed, task.Execute(context.Background(), wmaRequest(bad)).Kind)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"bad.wma", "good.mp3", "good.wma"}, names)
}

func TestTask_DryRun(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, dir, "a.wma")
	engine := &fakeEngine{}

	req := wmaRequest(in)
	req.DryRun = true
	o := (&Task{Engine: engine}).Execute(context.Background(), req)

	assert.Equal(t, KindConverted, o.Kind)
	assert.True(t, o.DryRun)
	assert.Zero(t, o.OutputBytes)
	assert.EqualValues(t, 0, engine.calls.Load())
	assert.NoFileExists(t, filepath.Join(dir, "a.mp3"))
}

func TestTask_CancelledContext(t *testing.T) {
	in := touch(t, t.TempDir(), "a.wma")
	engine := &fakeEngine{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := (&Task{Engine: engine}).Execute(ctx, wmaRequest(in))

	assert.Equal(t, KindFailed, o.Kind)
	assert.ErrorIs(t, o.Err, context.Canceled)
	assert.EqualValues(t, 0, engine.calls.Load())
}

func TestTask_UnsupportedQuality(t *testing.T) {
	in := touch(t, t.TempDir(), "a.wma")
	req := wmaRequest(in)
	req.Quality = "ultra"

	o := (&Task{Engine: &fakeEngine{}}).Execute(context.Background(), req)

	assert.Equal(t, KindFailed, o.Kind)
	assert.ErrorIs(t, o.Err, catalog.ErrUnsupportedQuality)
}

func TestTask_MissingInput(t *testing.T) {
	engine := &fakeEngine{}
	o := (&Task{Engine: engine}).Execute(context.Background(), wmaRequest(filepath.Join(t.TempDir(), "gone.wma")))

	assert.Equal(t, KindFailed, o.Kind)
	assert.EqualValues(t, 0, engine.calls.Load())
}
