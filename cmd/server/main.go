/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the salary meter server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Initialize logger
  3. Initialize SQLite store and settings provider
  4. Build display sinks (latest frame, websocket hub, optional console)
  5. Create scheduler on a cron repeater; start it when autostart is on
  6. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -p, --port        HTTP server port (default: 8080)
  --db              SQLite database path (default: ./data/salary.db)
                    Use ":memory:" for in-memory database
  --calendar-url    Holiday API base URL
  --settings        YAML settings file used to seed an empty store
  --log-level       debug, info, warn, error
  --log-pretty      Human-readable logs
  --console         Draw the meter on the terminal
  --autostart       Start the meter on boot (default: true)

ENVIRONMENT:
  Every flag has a SALARY_* variable; see config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the meter, drop cached calendars, stop the cron loop
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database and a terminal meter
  ./server --db=./data/salary.db --console

  # Seed settings from YAML on first run
  ./server --settings=./salary.yaml

SEE ALSO:
  - api/server.go: Router configuration
  - scheduler/scheduler.go: Meter lifecycle
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/salary-meter/api"
	"github.com/warp/salary-meter/calendar"
	"github.com/warp/salary-meter/config"
	"github.com/warp/salary-meter/display"
	"github.com/warp/salary-meter/logger"
	"github.com/warp/salary-meter/scheduler"
	"github.com/warp/salary-meter/settings"
	"github.com/warp/salary-meter/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	// Initialize store
	if cfg.DatabasePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
			return err
		}
	}
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Settings: YAML seed (optional) -> persisted store
	seed := settings.Defaults()
	if cfg.SettingsFile != "" {
		seed, err = settings.LoadFile(cfg.SettingsFile)
		if err != nil {
			return err
		}
	}
	provider, err := settings.NewProvider(ctx, store, seed, log)
	if err != nil {
		return err
	}

	// Display sinks
	latest := display.NewLatest()
	hub := display.NewHub(log)
	sinks := display.Fanout{latest, hub}
	if cfg.Console {
		sinks = append(sinks, display.NewConsole(os.Stdout))
	}

	// Scheduler
	repeater := scheduler.NewCronRepeater(log)
	repeater.Start()
	defer repeater.Stop()

	sched := scheduler.New(scheduler.Config{
		Fetcher:  calendar.NewClient(cfg.CalendarURL, log),
		Repeater: repeater,
		Sink:     sinks,
		Settings: provider,
		Logger:   log,
	})
	defer sched.Close()

	if cfg.AutoStart {
		if err := sched.Start(ctx); err != nil {
			return err
		}
	}

	// Create router
	handler := api.NewHandler(sched, provider, log)
	handler.Stream = hub
	router := api.NewRouter(handler)

	// WriteTimeout stays zero: websocket streams and a slow holiday refresh
	// both outlive any fixed response deadline.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
