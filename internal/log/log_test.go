package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"chatty", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestInit_WritesJSONFileWithCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gitguru.log")
	cleanup, err := Init(Config{Enabled: true, Level: "debug", Path: path})
	require.NoError(t, err)

	With("invocation", "abc")
	Info(CatGit, "Ran git", "args", "status")
	Debug(CatTree, "Built tree")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "Ran git", rec["msg"])
	require.Equal(t, "git", rec["cat"])
	require.Equal(t, "status", rec["args"])
	require.Equal(t, "abc", rec["invocation"])
}

func TestInit_VerboseMirrorsToStderrAndRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cleanup, err := Init(Config{Level: "warn", Verbose: true, Stderr: &buf})
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	Info(CatFlow, "hidden")
	Warn(CatFlow, "shown", "branch", "main")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.Contains(t, out, "cat=flow")
	require.Contains(t, out, "branch=main")
}

func TestInit_RejectsBadLevel(t *testing.T) {
	_, err := Init(Config{Level: "loud"})
	require.Error(t, err)
}

func TestDefaultPath_UsesXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	p, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/tmp/state", "gitguru", "gitguru.log"), p)
}
