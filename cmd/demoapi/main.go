package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options defines the command line arguments
type Options struct {
	Port     int    `long:"port" description:"port to listen on for HTTP" default:"8001"`
	OTLP     string `long:"otlp" description:"OTLP gRPC endpoint to export traces to (empty disables tracing)" default:""`
	LogLevel string `long:"loglevel" description:"level of logging" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
}

func newRouter(s *server, logger *zap.Logger, tracker *idTracker, tracing bool) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware(tracker))
	r.Use(accessLogMiddleware(logger))
	r.Use(metricsMiddleware)
	if tracing {
		r.Use(tracingMiddleware("demoapi"))
	}

	r.Get("/health", s.health)
	r.Route("/demo", func(r chi.Router) {
		r.Get("/fast", s.fast)
		r.Get("/random", s.random)
		r.Get("/metrics", s.fakeMetrics)
		r.Post("/echo", s.echo)
		r.Get("/slow", s.slow)
		r.Get("/error-prone", s.errorProne)
		r.Get("/not-found", s.notFound)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func main() {
	var opts Options

	parser := flags.NewParser(&opts, flags.Default)
	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Fatalf("error parsing flags: %v", err)
	}

	level, err := zapcore.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level %q: %v", opts.LogLevel, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("unable to build logger: %v", err)
	}
	defer logger.Sync()

	// create context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.OTLP != "" {
		shutdown, err := initTracing(ctx, opts.OTLP)
		if err != nil {
			logger.Fatal("failed to configure trace exporter", zap.Error(err))
		}
		defer shutdown()
	}

	tracker := newIDTracker()
	srv := newServer(logger)
	router := newRouter(srv, logger, tracker, opts.OTLP != "")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		logger.Info("demo API listening", zap.Int("port", opts.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
	}

	reqs, roots, bursts := tracker.Counts()
	fmt.Printf("\n%d distinct request ids, %d trace roots, %d burst groups seen this session\n", reqs, roots, bursts)
}
