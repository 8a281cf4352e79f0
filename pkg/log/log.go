package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debugw(msg string, v ...interface{})
	Infow(msg string, v ...interface{})
	Errorw(msg string, v ...interface{})
}

// NewZapLogger returns a zap logger. With `verbose`, debug level messages are
// included. With `jsonLogs`, entries are JSON encoded instead of human readable.
func NewZapLogger(verbose, jsonLogs bool) (*zap.Logger, error) {
	var config zap.Config

	if verbose {
		config = zap.Config{
			Level:       zap.NewAtomicLevelAt(zap.DebugLevel),
			Development: true,
			Encoding:    "json",
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:        "ts",
				LevelKey:       "level",
				NameKey:        "logger",
				CallerKey:      "caller",
				FunctionKey:    zapcore.OmitKey,
				MessageKey:     "msg",
				StacktraceKey:  "stacktrace",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.StringDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			},
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		}
	} else {
		config = zap.NewProductionConfig()
	}

	if !jsonLogs {
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

// NewLogger wraps a named child of zapLogger as a Logger.
func NewLogger(zapLogger *zap.Logger, name string) Logger {
	return zapLogger.Named(name).Sugar()
}

type NopLogger struct{}

func (nop NopLogger) Debugw(_ string, _ ...interface{}) {}
func (nop NopLogger) Infow(_ string, _ ...interface{})  {}
func (nop NopLogger) Errorw(_ string, _ ...interface{}) {}

func NewNopLogger() NopLogger {
	return NopLogger{}
}
