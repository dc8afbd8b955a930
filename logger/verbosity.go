package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
//
// These levels control WHAT categories of output are shown, not just log
// severity. See ShouldOutput below.
//
// Example usage:
//
//	if logger.ShouldOutput(verbosity, logger.OutputHopDetail) {
//	    fmt.Printf("hop %d: %d live, %d unresolved\n", i, live, lost)
//	}
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + stage progress, source row counts
	VerbosityDebug = 2 // -vv: + per-hop detail, timing, config values
	VerbosityTrace = 3 // -vvv: + per-record unmatched entries, SQL
)

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels
//
// Mapping:
//
//	0 (none)  -> WarnLevel  (errors and warnings only)
//	1 (-v)    -> InfoLevel  (+ informational messages)
//	2+ (-vv)  -> DebugLevel (+ debug messages)
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults OutputCategory = iota // Run results, final status
	OutputErrors                        // Errors with hints

	// Level 1 (-v) - Informational
	OutputProgress // Stage progress ("resolving hop 1/2")
	OutputSources  // Source files loaded, row counts

	// Level 2 (-vv) - Detailed
	OutputHopDetail // Per-hop live/unresolved counts
	OutputTiming    // Stage timing
	OutputConfig    // Config values applied

	// Level 3 (-vvv) - Debug
	OutputUnmatchedRecords // Individual unmatched entries
	OutputSQLQueries       // Run-store SQL
)

var categoryLevels = map[OutputCategory]int{
	OutputResults: VerbosityUser,
	OutputErrors:  VerbosityUser,

	OutputProgress: VerbosityInfo,
	OutputSources:  VerbosityInfo,

	OutputHopDetail: VerbosityDebug,
	OutputTiming:    VerbosityDebug,
	OutputConfig:    VerbosityDebug,

	OutputUnmatchedRecords: VerbosityTrace,
	OutputSQLQueries:       VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

// LevelName returns a human-readable name for verbosity level
func LevelName(verbosity int) string {
	switch verbosity {
	case VerbosityUser:
		return "User"
	case VerbosityInfo:
		return "Info (-v)"
	case VerbosityDebug:
		return "Debug (-vv)"
	case VerbosityTrace:
		return "Trace (-vvv)"
	default:
		if verbosity > VerbosityTrace {
			return "Trace (-vvv+)"
		}
		return "Unknown"
	}
}
