// Package logger builds the zap logger shared by the command-line tools.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a development logger with ISO8601 timestamps at the given level.
func New(level zapcore.Level) (*zap.Logger, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	loggerConfig.Level = zap.NewAtomicLevelAt(level)
	loggerConfig.DisableStacktrace = true

	return loggerConfig.Build()
}

// MustNew is like New but panics if the logger cannot be built.
func MustNew(level zapcore.Level) *zap.Logger {
	logger, err := New(level)
	if nil != err {
		panic(err)
	}
	return logger
}
