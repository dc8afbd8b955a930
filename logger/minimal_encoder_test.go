package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestEncodeEntryBasicFormat(t *testing.T) {
	enc := newMinimalEncoder()

	ent := zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Date(2025, 3, 1, 13, 4, 35, 0, time.UTC),
		Message: "Resolving join path",
	}

	buf, err := enc.EncodeEntry(ent, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "13:04:35")
	assert.Contains(t, out, "Resolving join path")
	// INFO entries carry no level marker
	assert.NotContains(t, out, "INFO")
}

func TestEncodeEntryWarnShowsLevel(t *testing.T) {
	enc := newMinimalEncoder()

	ent := zapcore.Entry{
		Level:   zapcore.WarnLevel,
		Time:    time.Now(),
		Message: "unmatched records present",
	}

	buf, err := enc.EncodeEntry(ent, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "WARN")
}

func TestExtractFieldValues(t *testing.T) {
	fields := []zapcore.Field{
		zap.String("run_id", "run_3f2a"),
		zap.Int("rows", 1042),
		zap.Int("unresolved", 7),
	}

	out := extractFieldValues(fields)
	assert.Contains(t, out, "run_3f2a")
	assert.Contains(t, out, "1042")
	assert.Contains(t, out, "unresolved")
}

func TestExtractFieldValuesHopAndTiming(t *testing.T) {
	fields := []zapcore.Field{
		zap.Int("hop", 1),
		zap.Int64("duration_ms", 42),
	}

	out := extractFieldValues(fields)
	assert.Contains(t, out, "hop")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "ms")
}

func TestCloneIsIndependent(t *testing.T) {
	enc := newMinimalEncoder()
	clone := enc.Clone()
	require.NotNil(t, clone)
	assert.NotSame(t, enc, clone)
}
