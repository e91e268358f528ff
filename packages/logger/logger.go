// Package logger builds the zap loggers that are injected into providers, the RPC client and the pipeline.
package logger

import (
	"github.com/cityofzion/neon-go/packages/config"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a root logger from the logger settings.
func New(parameters config.LoggerParameters) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(parameters.Level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", parameters.Level)
	}

	encoding := parameters.Encoding
	if encoding == "" {
		encoding = "console"
	}
	outputPaths := parameters.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	zapConfig := zap.Config{
		Level:             level,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputPaths,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     parameters.DisableCaller,
		DisableStacktrace: parameters.DisableStacktrace,
	}

	root, err := zapConfig.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}

	return root, nil
}

// NewNamed returns a sugared child logger of root with the given name. A nil root yields a logger that discards
// everything.
func NewNamed(root *zap.Logger, name string) *zap.SugaredLogger {
	if root == nil {
		return zap.NewNop().Sugar()
	}

	return root.Named(name).Sugar()
}

// OrNop returns log or a logger that discards everything if log is nil.
func OrNop(log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}

	return log
}
