package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/p-blackswan/activity-agent/internal/automation"
	"github.com/p-blackswan/activity-agent/internal/config"
	"github.com/p-blackswan/activity-agent/internal/event"
	"github.com/p-blackswan/activity-agent/internal/health"
	"github.com/p-blackswan/activity-agent/internal/history"
	"github.com/p-blackswan/activity-agent/internal/metrics"
	"github.com/p-blackswan/activity-agent/internal/mgmt"
	"github.com/p-blackswan/activity-agent/internal/store"
	"github.com/p-blackswan/activity-agent/internal/suggest"
	"github.com/p-blackswan/activity-agent/internal/tracker"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Int("http_port", cfg.HTTPPort).
		Str("mgmt_addr", cfg.MgmtListenAddr).
		Str("db_path", cfg.DBPath).
		Msg("starting activity tracker")

	// Tracker YAML config; defaults apply when the file is absent
	fileCfg, err := tracker.LoadFile(cfg.TrackerConfigPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info().Str("path", cfg.TrackerConfigPath).Msg("tracker config not found, using defaults")
		} else {
			logger.Warn().Err(err).Msg("tracker config unreadable, using defaults")
		}
		fileCfg = tracker.Default()
	}

	// Context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Persistence
	db, err := store.New(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	// Metrics
	collector := metrics.New()

	// Automation registry: persisted tasks first, then YAML seeds
	registry := automation.NewRegistry(logger)

	persisted, err := db.LoadTasks()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load persisted tasks")
	}
	seen := make(map[string]bool, len(persisted))
	for _, spec := range persisted {
		if _, err := registry.Create(spec); err != nil {
			logger.Error().Err(err).Str("task", spec.Name).Msg("skipping persisted task")
			continue
		}
		seen[spec.Name] = true
	}
	for _, spec := range fileCfg.Tasks {
		if seen[spec.Name] {
			continue
		}
		task, err := registry.Create(spec)
		if err != nil {
			logger.Error().Err(err).Str("task", spec.Name).Msg("skipping seed task")
			continue
		}
		if err := db.SaveTask(task.Snapshot()); err != nil {
			logger.Error().Err(err).Str("task", spec.Name).Msg("failed to persist seed task")
		}
	}
	logger.Info().Int("tasks", registry.Len()).Msg("automation registry loaded")

	// Detectors
	detectors := []suggest.Detector{
		&suggest.RepeatedKindDetector{
			Window:         fileCfg.Detectors.RepeatedWindow,
			MinRepetitions: fileCfg.Detectors.MinRepetitions,
		},
		suggest.NewAppSequenceDetector(),
		suggest.NewTimeOfDayDetector(),
	}

	// Tracker core
	buffer := history.New(fileCfg.Tracker.HistoryCapacity)
	suggestions := suggest.NewStore(fileCfg.Tracker.SuggestionCapacity, logger)
	executor := automation.NewExecutor(nil, logger)

	// Capture and keyboard collaborators. Placeholders until platform hooks
	// are built in; the capture cadence follows capture_interval_ms either way.
	trk := tracker.New(fileCfg.ToConfig(), tracker.Deps{
		Buffer:      buffer,
		Detectors:   detectors,
		Suggestions: suggestions,
		Registry:    registry,
		Matcher:     automation.NewMatcher(),
		Executor:    executor,
		Metrics:     collector,
		Logger:      logger,
		Capturer:    event.NewStubCapturer(),
		KeyListener: event.NoopKeyListener{},
	})

	// The clock heartbeat drives time-of-day triggers.
	trk.AddSource(event.NewClockSource(30*time.Second, logger))

	// Persistence listener
	recorder := store.NewRecorder(db, 1024, logger)
	trk.Subscribe(recorder)

	// Health checks
	checker := health.NewChecker(logger)
	checker.Register("database", func(ctx context.Context) health.Status {
		if err := db.DB().PingContext(ctx); err != nil {
			return health.StatusDown
		}
		return health.StatusOK
	})
	checker.Register("tracker", func(ctx context.Context) health.Status {
		if !trk.IsTracking() {
			return health.StatusDegraded
		}
		return health.StatusOK
	})

	// Metrics HTTP server (prometheus scrape target + probes)
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/health", health.LivenessHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// WaitGroup for in-flight work
	var wg sync.WaitGroup

	// Management API
	handlers := mgmt.NewHandlers(ctx, trk, registry, buffer, db, checker, logger)
	mgmtServer := mgmt.NewServer(mgmt.ServerConfig{
		ListenAddr: cfg.MgmtListenAddr,
		AuthConfig: mgmt.AuthConfig{
			Mode:   cfg.MgmtAuthMode,
			APIKey: cfg.MgmtAPIKey,
		},
		CORSOrigins: cfg.MgmtCORSOrigins,
	}, handlers, logger)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := mgmtServer.Start(); err != nil {
			logger.Error().Err(err).Msg("management API server error")
		}
	}()

	// Retention sweep
	if cfg.RetentionInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(cfg.RetentionInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := db.RunRetention(ctx); err != nil {
						logger.Error().Err(err).Msg("retention sweep failed")
					}
				}
			}
		}()
	}

	// Start tracking
	if err := trk.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start tracking")
	}

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	trk.Stop()
	cancel()

	// Let in-flight automation executions finish within the budget
	execDone := make(chan struct{})
	go func() {
		trk.WaitExecutions()
		close(execDone)
	}()
	select {
	case <-execDone:
	case <-time.After(cfg.ShutdownTimeout):
		logger.Warn().Msg("in-flight executions did not finish in time")
	}

	// Shutdown servers
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if err := mgmtServer.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("management API server shutdown error")
	}

	// Flush queued persistence writes
	recorder.Close()

	// Wait for remaining goroutines
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info().Msg("all goroutines stopped")
	case <-time.After(15 * time.Second):
		logger.Warn().Msg("forced shutdown after timeout")
	}

	logger.Info().Msg("activity tracker stopped")
}
