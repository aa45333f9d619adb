package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpProgressBar(t *testing.T) {
	var bar ProgressBar = NoOpProgressBar{}
	assert.NoError(t, bar.Add(1))
	bar.Describe("x")
	assert.NoError(t, bar.Clear())
	assert.NoError(t, bar.Close())
}

func TestNewProgressBar_CountsToTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(3, &buf, false)
	for i := 0; i < 3; i++ {
		assert.NoError(t, bar.Add(1))
	}
	assert.NoError(t, bar.Close())
	assert.NotEmpty(t, buf.String())
}
