package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"trace", LevelInfo, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestFileOutputWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")

	l, err := New(&Config{
		Level:     LevelDebug,
		Format:    FormatJSON,
		Output:    "file",
		FilePath:  path,
		Component: "test",
	})
	require.NoError(t, err)

	l.Info("hello", "answer", 42)
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan(), "expected one log line")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, float64(42), entry["answer"])
	assert.Equal(t, "test", entry["component"])
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	l, err := New(&Config{
		Level:    LevelWarn,
		Format:   FormatText,
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestWithComponent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	l, err := New(&Config{
		Level:     LevelInfo,
		Format:    FormatJSON,
		Output:    "file",
		FilePath:  path,
		Component: "daemon",
	})
	require.NoError(t, err)

	l.WithComponent("engine").Info("scoped")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "engine", entry["component"])
}
