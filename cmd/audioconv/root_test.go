package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/audioconv/internal/config"
	"github.com/backmassage/audioconv/internal/pipeline"
	"github.com/backmassage/audioconv/internal/report"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// executeCommand runs a fresh root command and captures its output.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := newRootCmd()
	outBuf, errBuf := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// musicDir creates a small library of wma files.
func musicDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"one.wma", filepath.Join("album", "two.wma")} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("wma"), 0o644))
	}
	return root
}

func readReport(t *testing.T, path string) report.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r report.Report
	require.NoError(t, yaml.Unmarshal(data, &r))
	return r
}

func TestRootCmdHelp_AllFlagsPresent(t *testing.T) {
	stdout, stderr, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "audioconv [folder]")

	newRootCmd().Flags().VisitAll(func(f *pflag.Flag) {
		assert.Contains(t, stdout, "--"+f.Name, "help should list --%s", f.Name)
		if f.Shorthand != "" {
			assert.Contains(t, stdout, "-"+f.Shorthand+",", "help should list -%s", f.Shorthand)
		}
	})
}

func TestRootCmdVersion(t *testing.T) {
	prevVersion, prevCommit := version, commit
	version, commit = "9.9.9", "abc123"
	defer func() { version, commit = prevVersion, prevCommit }()

	stdout, _, err := executeCommand("--version")
	require.NoError(t, err)
	assert.Equal(t, "audioconv version 9.9.9 (commit: abc123)\n", stdout)
}

func TestRootCmd_SameFormat(t *testing.T) {
	_, _, err := executeCommand("-i", "mp3", "-o", "MP3", t.TempDir())
	assert.ErrorIs(t, err, config.ErrSameFormat)
}

func TestRootCmd_UnknownFormat(t *testing.T) {
	_, _, err := executeCommand("-o", "aiff", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aiff")
}

func TestRootCmd_NeedsFolder(t *testing.T) {
	_, _, err := executeCommand("--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder")
}

func TestRootCmd_TooManyArgs(t *testing.T) {
	_, _, err := executeCommand("a", "b")
	assert.Error(t, err)
}

func TestRootCmd_FolderGivenTwice(t *testing.T) {
	_, _, err := executeCommand("-f", t.TempDir(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder given twice")
}

func TestRootCmd_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, _, err := executeCommand("--dry-run", "--no-color", missing)
	assert.ErrorIs(t, err, pipeline.ErrPathNotFound)
}

func TestRootCmd_DryRunWritesReport(t *testing.T) {
	root := musicDir(t)
	reportPath := filepath.Join(t.TempDir(), "run.yaml")

	stdout, _, err := executeCommand("--dry-run", "--no-color", "--report", reportPath, root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "|_|", "banner is printed")

	assert.NoFileExists(t, filepath.Join(root, "one.mp3"))
	assert.FileExists(t, filepath.Join(root, "one.wma"))

	r := readReport(t, reportPath)
	assert.True(t, r.DryRun)
	assert.Equal(t, "mp3", r.OutputFormat)
	assert.Equal(t, "high", r.Quality)
	assert.Equal(t, 2, r.Totals.Discovered)
	assert.Equal(t, 2, r.Totals.Converted)
	require.Len(t, r.Files, 2)
	for _, f := range r.Files {
		assert.Equal(t, "would convert", f.Status)
	}
}

func TestRootCmd_ConfigFileWithFlagOverride(t *testing.T) {
	root := musicDir(t)
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "run.yaml")
	cfgPath := filepath.Join(dir, "audioconv.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"folder_path: "+root+"\n"+
			"output_format: flac\n"+
			"audio_quality: low\n"+
			"jobs: 2\n"), 0o644))

	_, _, err := executeCommand("--config", cfgPath, "-o", "ogg", "--dry-run", "--no-color", "--report", reportPath)
	require.NoError(t, err)

	r := readReport(t, reportPath)
	assert.Equal(t, "ogg", r.OutputFormat, "flag beats file")
	assert.Equal(t, "low", r.Quality, "file beats default")
	assert.Equal(t, 2, r.Workers)
	assert.Equal(t, root, r.Root)
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	_, _, err := executeCommand("--config", filepath.Join(t.TempDir(), "absent.yaml"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestRun_ExitCodes(t *testing.T) {
	assert.Equal(t, 0, run([]string{"--dry-run", "--no-color", musicDir(t)}))
	assert.Equal(t, 1, run([]string{"-i", "wma", "-o", "wma", t.TempDir()}))
}
