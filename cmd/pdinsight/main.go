package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"parkinson-insight/internal/api"
	"parkinson-insight/internal/cfg"
	"parkinson-insight/internal/dashboard"
	"parkinson-insight/internal/metrics"
	"parkinson-insight/internal/ml"
	"parkinson-insight/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mw := metrics.NewWrapper(metrics.NewWithRegistry(reg))

	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	tracker := ml.NewImportanceTracker(c.ImportancePath)
	defer saveTracker(tracker)

	engine := ml.NewEngine(mw, tracker)

	opts := api.Options{
		Port:           c.ListenPort,
		APIKey:         c.APIKey,
		RateLimitRPS:   c.RateLimitRPS,
		RateLimitBurst: c.RateLimitBurst,
		RequestTimeout: c.RequestTimeout,
		RecordPrefix:   c.RecordPrefix,
	}
	if c.MetricsEnabled {
		opts.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	var pub api.Publisher
	if c.DashboardEnabled {
		hub := dashboard.NewHub(mw)
		if err := hub.Start(); err != nil {
			log.Fatal().Err(err).Msg("dashboard start failed")
		}
		defer hub.Stop()
		pub = hub
		opts.WebSocket = hub.HandleWebSocket
		opts.Dashboard = dashboard.PageHandler("/ws")
	}

	var records api.RecordStore
	if store != nil {
		records = store
	}

	server := api.NewServer(engine, records, pub, mw, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("API server failed")
			cancel()
		}
	}()

	log.Info().
		Int("port", c.ListenPort).
		Bool("auth", c.AuthEnabled()).
		Bool("metrics", c.MetricsEnabled).
		Bool("dashboard", c.DashboardEnabled).
		Bool("storage", store != nil).
		Msg("Parkinson insight service started")

	waitForShutdown(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown API server")
	}
}

func setupLogging(c cfg.Settings) {
	zerolog.SetGlobalLevel(c.Level())
	zerolog.TimeFieldFormat = time.RFC3339
	if c.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// initializeStorage opens the record store. The service keeps running
// without persistence when it cannot.
func initializeStorage(c cfg.Settings) *storage.Store {
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Str("path", c.DataPath).Msg("storage initialization failed, continuing without persistence")
		return nil
	}
	return store
}

func saveTracker(tracker *ml.ImportanceTracker) {
	if err := tracker.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save feature importance")
	}
}

// waitForShutdown blocks until a shutdown signal arrives or ctx is done.
func waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
}
