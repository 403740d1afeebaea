// Command rentledger serves the lease ledger HTTP API.
package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rentledger/internal/adapters/httpapi"
	"rentledger/internal/blob"
	"rentledger/internal/config"
	"rentledger/internal/core"
	"rentledger/internal/documents"
	"rentledger/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, "rentledger")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("rentledger stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("rentledger stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logging.NewAdapter(log)

	store, err := core.OpenPersistentStore(ctx, cfg.Storage, core.NewDefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				log.Warn("close storage", zap.Error(err))
			}
		}()
	}

	docs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("open document storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := core.NewPrometheusRecorder(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithAuditRecorder(core.MultiAuditRecorder{
			core.LogAuditRecorder{Logger: logger},
			core.NewLedgerStats("rentledger_ledger"),
		}),
		core.WithMetricsRecorder(prom),
	}
	if cfg.TraceFile != "" {
		tracer, err := logging.OpenTraceFile(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = tracer.Sync() }()
		opts = append(opts, core.WithTracer(tracer))
		log.Info("tracing operations", zap.String("file", cfg.TraceFile))
	}
	svc := core.NewService(store, opts...)

	worker := documents.NewWorker(docs, documents.WithQueueSize(cfg.ExportQueue), documents.WithLogger(logger))
	worker.Subscribe(svc.Events())
	worker.Start()

	api := httpapi.NewHandler(svc,
		httpapi.WithDocuments(docs),
		httpapi.WithExports(worker),
		httpapi.WithLogger(logger),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		httpapi.WithCORSOrigins(cfg.CORSOrigins),
	)
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/", api)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", string(cfg.Storage.Driver)),
			zap.String("documents", string(docs.Driver())),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		log.Warn("export worker shutdown", zap.Error(err))
	}
	return serveErr
}
