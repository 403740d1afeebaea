// Package logging builds the zap loggers used by rentledger and adapts them
// to the service Logger interface.
package logging

import (
	"os"
	"strings"

	"rentledger/internal/core"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps debug|info|warn|error to a zap level. Anything else is info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a logger. format "console" gives the development encoder;
// anything else is production JSON on stdout. Every entry carries
// service_name and hostname.
func New(level, format, service string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return decorate(logger, service), nil
}

func decorate(logger *zap.Logger, service string) *zap.Logger {
	if service != "" {
		logger = logger.With(zap.String("service_name", service))
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		logger = logger.With(zap.String("hostname", host))
	}
	return logger
}

// Adapter exposes a zap logger through core.Logger.
type Adapter struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = Adapter{}

// NewAdapter wraps l. A nil logger discards output.
func NewAdapter(l *zap.Logger) Adapter {
	if l == nil {
		l = zap.NewNop()
	}
	return Adapter{sugar: l.Sugar()}
}

func (a Adapter) Debug(msg string, kv ...any) { a.sugar.Debugw(msg, kv...) }
func (a Adapter) Info(msg string, kv ...any)  { a.sugar.Infow(msg, kv...) }
func (a Adapter) Warn(msg string, kv ...any)  { a.sugar.Warnw(msg, kv...) }
func (a Adapter) Error(msg string, kv ...any) { a.sugar.Errorw(msg, kv...) }
