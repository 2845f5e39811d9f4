package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugLogger(t *testing.T) {
	t.Parallel()
	logger := NewDebugLogger()
	logger.Debug("debug message")
	logger.Infof("info %s", "message")
	logger.Warn("warn message")
	logger.Error("error message")

	assert.Equal(t, "DEBUG  debug message\n", logger.DebugMessages())
	assert.Equal(t, "INFO  info message\n", logger.InfoMessages())
	assert.Equal(t, "WARN  warn message\nERROR  error message\n", logger.WarnAndErrorMessages())

	logger.Truncate()
	assert.Equal(t, "", logger.AllMessages())
}

func TestDebugLogger_ConnectTo(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	logger := NewDebugLogger()
	logger.ConnectTo(&out)
	logger.Info("forwarded")
	assert.Equal(t, "INFO  forwarded\n", out.String())
}

func TestCliLogger_Levels(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	logger := NewCliLogger(&stdout, &stderr, false)
	logger.Debug("hidden")
	logger.Info("visible")
	logger.Warn("warned")
	assert.NoError(t, logger.Sync())

	assert.Equal(t, "visible\n", stdout.String())
	assert.Contains(t, stderr.String(), "warned")
	assert.NotContains(t, stdout.String(), "hidden")
}

func TestCliLogger_Verbose(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	logger := NewCliLogger(&stdout, &stderr, true)
	logger.Debug("shown")
	assert.NoError(t, logger.Sync())
	assert.Contains(t, stdout.String(), "shown")
}

func TestLevelWriter(t *testing.T) {
	t.Parallel()
	logger := NewDebugLogger()
	logger.WarnWriter().WriteString("line one\nline two")
	assert.Equal(t, "WARN  line one\nWARN  line two\n", logger.WarnMessages())
}
