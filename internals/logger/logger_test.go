package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelSelectsFormatter(t *testing.T) {
	debug := NewLogrusLoggerWithLevel("DEBUG").(*LogrusLogger)
	assert.Equal(t, logrus.DebugLevel, debug.entry.Logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, debug.entry.Logger.Formatter)

	fallback := NewLogrusLoggerWithLevel("verbose please").(*LogrusLogger)
	assert.Equal(t, logrus.InfoLevel, fallback.entry.Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, fallback.entry.Logger.Formatter)
}

func TestWithFieldsWritesJSON(t *testing.T) {
	l := NewLogrusLoggerWithLevel("info").(*LogrusLogger)
	var buf bytes.Buffer
	l.entry.Logger.SetOutput(&buf)

	l.WithFields(map[string]interface{}{"job": "expire_classifieds"}).Warn("expired %d rows", 3)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "expired 3 rows", line["msg"])
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "expire_classifieds", line["job"])
	assert.Equal(t, "marketplace", line["service"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	l := NewLogrusLoggerWithLevel("info").(*LogrusLogger)
	var buf bytes.Buffer
	l.entry.Logger.SetOutput(&buf)

	l.Debug("noisy %s", "detail")
	assert.Zero(t, buf.Len())
}
