package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityTrace))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}

func TestShouldOutput(t *testing.T) {
	// Defaults always visible
	assert.True(t, ShouldOutput(VerbosityUser, OutputResults))
	assert.True(t, ShouldOutput(VerbosityUser, OutputErrors))

	// Progress needs -v
	assert.False(t, ShouldOutput(VerbosityUser, OutputProgress))
	assert.True(t, ShouldOutput(VerbosityInfo, OutputProgress))

	// Per-hop detail needs -vv
	assert.False(t, ShouldOutput(VerbosityInfo, OutputHopDetail))
	assert.True(t, ShouldOutput(VerbosityDebug, OutputHopDetail))

	// Per-record unmatched entries need -vvv
	assert.False(t, ShouldOutput(VerbosityDebug, OutputUnmatchedRecords))
	assert.True(t, ShouldOutput(VerbosityTrace, OutputUnmatchedRecords))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Info (-v)", LevelName(1))
	assert.Equal(t, "Trace (-vvv+)", LevelName(9))
}
