package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Andrej220/go-utils/pqueue/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommandPrintsReport(t *testing.T) {
	out, err := execute(t, "run",
		"--count=12", "--producers=2", "--consumers=2",
		"--sleep=10ms", "--log-level=error",
		"--config", filepath.Join(t.TempDir(), "none.toml"),
	)
	require.NoError(t, err)
	require.Contains(t, out, "produced")
	require.Contains(t, out, "peak heap")
	require.Regexp(t, `consumed\s+│\s+12`, out)
}

func TestRunCommandReportsTruncatedSplit(t *testing.T) {
	out, err := execute(t, "run",
		"--count=7", "--producers=2", "--sleep=0s", "--log-level=error",
	)
	require.NoError(t, err)
	require.Regexp(t, `dropped by split\s+│\s+1`, out)
	require.Regexp(t, `produced\s+│\s+6`, out)
}

func TestRunCommandUsesConfigFile(t *testing.T) {
	cfg := config.Default()
	cfg.Run.TotalItems = 5
	cfg.Run.ConsumerDelay = "0s"
	cfg.Logging.Level = "error"

	path := filepath.Join(t.TempDir(), "pqdemo.toml")
	writeConfig(t, path, cfg)

	out, err := execute(t, "--config", path, "run")
	require.NoError(t, err)
	require.Regexp(t, `expected\s+│\s+5`, out)
}

func TestRunCommandRejectsInvalidFlags(t *testing.T) {
	_, err := execute(t, "run", "--producers=-1", "--log-level=error")
	require.Error(t, err)
}

func TestRunCommandRejectsZeroCount(t *testing.T) {
	out, err := execute(t, "run", "--count=0", "--log-level=error",
		"--config", filepath.Join(t.TempDir(), "none.toml"),
	)
	require.ErrorContains(t, err, "total_items")
	require.NotContains(t, out, "produced")
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "pqdemo.toml")

	out, err := execute(t, "config", "init", "--path", target)
	require.NoError(t, err)
	require.Contains(t, out, target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, config.SampleConfig(), data)

	_, err = execute(t, "config", "init", "--path", target)
	require.Error(t, err, "existing file must not be overwritten")

	_, err = execute(t, "config", "init", "--path", target, "--overwrite")
	require.NoError(t, err)
}

func TestConfigShowPrintsEffectiveValues(t *testing.T) {
	out, err := execute(t, "config", "show", "--config", filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "total_items = 1000000"), out)
}
