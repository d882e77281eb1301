package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/pin-drip/app/api"
	"github.com/lysyi3m/pin-drip/app/cfg"
	"github.com/lysyi3m/pin-drip/app/database"
	"github.com/lysyi3m/pin-drip/app/pinterest"
	"github.com/lysyi3m/pin-drip/app/pipeline"
	"github.com/lysyi3m/pin-drip/app/settings"
	"github.com/lysyi3m/pin-drip/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appConfig.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting pin-drip", "version", appConfig.Version, "timezone", time.Local.String())

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appConfig.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appConfig.DBPath, "schema_version", version, "dirty", dirty)

	settingsRepo := database.NewSettingsRepository(db)
	runRepo := database.NewRunRepository(db)
	store := settings.NewStore(settingsRepo, appConfig)

	client := pinterest.NewClient(appConfig.APIBaseURL, &http.Client{Timeout: appConfig.HTTPTimeoutDuration()}, appConfig.UserAgent)
	coordinator := pipeline.NewCoordinator(client, pipeline.FixedDelay(appConfig.PinDelayDuration()), runRepo)
	runner := tasks.NewRunner(coordinator, store, appConfig.DBPath+".lock")

	if appConfig.Once {
		os.Exit(runOnce(runner))
	}

	serve(appConfig, runner, store, runRepo, client)
}

// runOnce performs a single run and prints its report. The return value is
// the process exit code.
func runOnce(runner *tasks.Runner) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx)
	if err != nil {
		slog.Error("Run failed", "error", err)
		return 1
	}

	fmt.Println(renderRunReport(result))

	if result.Outcome == pipeline.OutcomeConfigError {
		return 2
	}
	return 0
}

func serve(appConfig *cfg.Cfg, runner *tasks.Runner, store *settings.Store, runRepo *database.RunRepo, client *pinterest.Client) {
	scheduler := tasks.NewScheduler(runner, appConfig.ScheduleIntervalDuration(), appConfig.RunOnStart)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(runner, store, runRepo, client, appConfig.OAuthBaseURL, appConfig.APIBaseURL, appConfig.Version)
	server := api.NewServer(handler, appConfig.APIAccessKey)

	// Runs are synchronous on POST /api/run, so writes get the pacing budget.
	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	logConnectionHint(store, appConfig.Port, appConfig.APIAccessKey != "")

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

// logConnectionHint points the operator at the OAuth flow when no token is
// stored yet.
func logConnectionHint(store *settings.Store, port string, apiKeySet bool) {
	values, err := store.Snapshot(context.Background())
	if err != nil {
		slog.Warn("Failed to read settings", "error", err)
		return
	}
	if values[settings.KeyAccessToken] != "" {
		return
	}
	if values[settings.KeyAppID] == "" || values[settings.KeyRedirectURI] == "" {
		slog.Warn("Not connected to Pinterest; set app_id and redirect_uri to enable the connect flow")
		return
	}
	if apiKeySet {
		slog.Warn("Not connected to Pinterest; open the URL returned by /api/auth/url", "endpoint", "http://localhost:"+port+"/api/auth/url")
		return
	}
	slog.Warn("Not connected to Pinterest; open /connect in a browser", "endpoint", "http://localhost:"+port+"/connect")
}
