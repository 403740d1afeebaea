package logging

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rentledger/internal/core"
)

// Tracer writes one "span" entry per service operation to its own logger,
// usually a JSON-lines file kept apart from the application log.
type Tracer struct {
	log *zap.Logger
}

var _ core.Tracer = (*Tracer)(nil)

// NewTracer traces onto l. A nil logger discards spans.
func NewTracer(l *zap.Logger) *Tracer {
	if l == nil {
		l = zap.NewNop()
	}
	return &Tracer{log: l}
}

// OpenTraceFile appends spans as JSON lines to path.
func OpenTraceFile(path string) (*Tracer, error) {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return NewTracer(l), nil
}

// Start implements core.Tracer.
func (t *Tracer) Start(ctx context.Context, operation string) (context.Context, core.TraceSpan) {
	return ctx, span{log: t.log, operation: operation, started: time.Now()}
}

// Sync flushes buffered spans.
func (t *Tracer) Sync() error { return t.log.Sync() }

type span struct {
	log       *zap.Logger
	operation string
	started   time.Time
}

func (s span) End(err error) {
	fields := []zap.Field{
		zap.String("operation", s.operation),
		zap.Time("started_at", s.started.UTC()),
		zap.Duration("duration", time.Since(s.started)),
	}
	if err != nil {
		s.log.Warn("span", append(fields, zap.String("status", "error"), zap.Error(err))...)
		return
	}
	s.log.Info("span", append(fields, zap.String("status", "success"))...)
}
