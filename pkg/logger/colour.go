// pkg/logger/colour.go

package logger

import (
	zapcore "go.uber.org/zap/zapcore"
)

// LevelName returns the console label for a level. WARN is spelled out as
// WARNING to match the --log-level vocabulary.
func LevelName(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return "FATAL"
	default:
		return level.CapitalString()
	}
}

// levelColonEncoder renders "LEVEL:" so console lines read "LEVEL: message".
func levelColonEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(level) + ":")
}
