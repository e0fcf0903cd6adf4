package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleIncludesCallerAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Options{Console: &buf, NoColor: true})
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Msg("Generated fatalities_by_state")
	log.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "[logging_test.go:")
	assert.Contains(t, out, "Generated fatalities_by_state")
	assert.NotContains(t, out, "hidden")
}

func TestDebugFlagLowersLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Options{Level: "warn", Debug: true, Console: &buf, NoColor: true})
	require.NoError(t, err)
	defer closer.Close()

	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestInvalidLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestFileReceivesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	var buf bytes.Buffer
	log, closer, err := New(Options{File: path, Console: &buf, NoColor: true})
	require.NoError(t, err)

	log.Info().Str("report", "fatalities_by_age").Msg("Generated")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(b))
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "Generated", rec["message"])
	assert.Equal(t, "fatalities_by_age", rec["report"])
	assert.Equal(t, "info", rec["level"])
}
