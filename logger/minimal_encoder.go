package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes for the console encoder (muted, easy on eyes)
const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"

	colorTime    = "\x1b[38;5;108m" // muted cyan-green, timestamps
	colorFg      = "\x1b[38;5;223m" // soft cream, message text
	colorNumber  = "\x1b[38;5;175m" // muted purple, counts and durations
	colorID      = "\x1b[38;5;109m" // soft blue, run IDs and key values
	colorWarnFg  = "\x1b[38;5;214m"
	colorWarnBg  = "\x1b[48;5;58m"
	colorErrorFg = "\x1b[38;5;167m"
	colorErrorBg = "\x1b[48;5;88m"
)

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  Resolving join path  run_3f2a (1042 rows)"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
	buf             *buffer.Buffer
}

func newMinimalEncoder() *minimalEncoder {
	// Base JSON encoder for field serialization (internal use only)
	baseEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return &minimalEncoder{
		Encoder: baseEncoder,
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		buf:     buffer.NewPool().Get(),
	}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := buffer.NewPool().Get()

	final.AppendString(colorTime)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level != zapcore.InfoLevel && ent.Level != zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	final.AppendString("  ")
	final.AppendString(colorFg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if len(fields) > 0 {
		final.AppendString("  ")
		final.AppendString(extractFieldValues(fields))
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colorWarnBg + colorWarnFg + "WARN" + colorReset
	case zapcore.ErrorLevel:
		return colorBold + colorErrorBg + colorErrorFg + "ERROR" + colorReset
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + colorErrorBg + colorErrorFg + level.CapitalString() + colorReset
	default:
		return ""
	}
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) string {
	if field.Type == zapcore.StringType {
		return field.String
	}

	switch field.Type {
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	}

	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface)
	}

	return ""
}

// extractFieldValues pulls just the values from structured fields.
// Input: {"run_id": "run_3f2a", "rows": 1042, "unresolved": 7}
// Output: "run_3f2a (1042 rows, 7 unresolved)" with colored IDs and numbers.
func extractFieldValues(fields []zapcore.Field) string {
	var values []string
	var rows, unresolved string

	for _, field := range fields {
		switch field.Key {
		case "run_id", "source", "relation", "key", "column":
			if val := getFieldValue(field); val != "" {
				values = append(values, colorID+val+colorReset)
			}
		case "rows":
			rows = getFieldValue(field)
		case "unresolved":
			unresolved = getFieldValue(field)
		case "hop":
			if val := getFieldValue(field); val != "" {
				values = append(values, colorFg+"hop "+colorNumber+val+colorReset)
			}
		case "duration_ms":
			if val := getFieldValue(field); val != "" {
				values = append(values, colorNumber+val+colorReset+"ms")
			}
		}
	}

	if rows != "" && unresolved != "" {
		values = append(values, colorFg+"("+colorNumber+rows+colorReset+colorFg+" rows, "+colorNumber+unresolved+colorReset+colorFg+" unresolved)"+colorReset)
	} else if rows != "" {
		values = append(values, colorFg+"("+colorNumber+rows+colorReset+colorFg+" rows)"+colorReset)
	}

	if len(values) == 0 {
		return ""
	}

	return strings.Join(values, " ")
}
