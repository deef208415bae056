package method

import (
	"fmt"
	"os"
	"strings"

	"git.ghink.net/ghink/keep-alive/internal/model"
	"github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. format is one of console, json or
// logfmt; level is one of debug, info, warn or error.
func NewLogger(format, level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info", "":
		lvl = zapcore.InfoLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("log level must be one of: debug, info, warn, error, got '%s'", level)
	}

	switch strings.ToLower(format) {
	case "logfmt":
		encoderConfig := zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}

		core := zapcore.NewCore(
			zaplogfmt.NewEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			lvl,
		)

		return zap.New(core), nil
	case "json":
		zapConfig := zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(lvl)
		return zapConfig.Build()
	case "console", "":
		zapConfig := zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(lvl)
		return zapConfig.Build()
	default:
		return nil, fmt.Errorf("log format must be 'json', 'console', or 'logfmt', got '%s'", format)
	}
}

// loggerFor falls back to the process-wide logger when cfg carries none.
func loggerFor(cfg model.Config) *zap.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return zap.L()
}
