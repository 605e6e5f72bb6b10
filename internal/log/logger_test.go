package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	apperrors "filephile/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Info("info message")
	assert.Contains(t, buf.String(), "level=info")
	assert.Contains(t, buf.String(), "info message")
	buf.Reset()

	l.Warnf("formatted %s", "warning")
	assert.Contains(t, buf.String(), "level=warning")
	assert.Contains(t, buf.String(), "formatted warning")
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l = NewLogger(WithOutput(&buf), WithDebug(true))
	l.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithJSON())
	l.With(F("op", "copy"), F("items", 3)).Info("operation started")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "copy", line["op"])
	assert.Equal(t, float64(3), line["items"])
	assert.Equal(t, "operation started", line["msg"])
}

func TestLogWithError(t *testing.T) {
	var buf bytes.Buffer
	Configure(WithOutput(&buf))
	defer Configure()

	LogWithError(apperrors.NewOperationError("rename", apperrors.AlreadyExists, "/tmp/b", nil)).Error("rename rejected")
	assert.Contains(t, buf.String(), "kind=\"already exists\"")
	assert.Contains(t, buf.String(), "rename rejected")

	buf.Reset()
	LogWithError(nil).Info("nil error")
	assert.Contains(t, buf.String(), "nil error")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "filephile.log")
	Configure(WithFile(path))
	Info("to file")
	require.NoError(t, Close())
	defer Configure()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
