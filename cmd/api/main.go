package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fleetpulse.opentransit.org/internal/app"
	"fleetpulse.opentransit.org/internal/appconf"
	"fleetpulse.opentransit.org/internal/blob"
	"fleetpulse.opentransit.org/internal/clock"
	"fleetpulse.opentransit.org/internal/gtfs"
	"fleetpulse.opentransit.org/internal/logging"
	"fleetpulse.opentransit.org/internal/metrics"
	"fleetpulse.opentransit.org/internal/restapi"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logging.LogError(logger, "fatal", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := appconf.Load()
	if err != nil {
		return err
	}

	source, err := buildBlobSource(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()
	manager := gtfs.NewManager(source, m)

	// The dataset must be fully installed before the listener opens; a
	// load failure means the process never serves.
	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := manager.Load(loadCtx); err != nil {
		return err
	}

	application := &app.Application{
		Config:      cfg,
		Logger:      logger,
		GtfsManager: manager,
		Clock:       clock.RealClock{},
		Metrics:     m,
	}

	api := restapi.New(application)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		logging.LogOperation(logger, "shutting_down", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	logging.LogOperation(logger, "server_listening",
		slog.Int("port", cfg.Port),
		slog.String("env", cfg.Env.String()),
		slog.String("blob_mode", string(cfg.BlobMode)))

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}

// buildBlobSource selects the feed backend from configuration: an Azure
// container on cloud hosts (or by explicit override), a local feed
// directory otherwise.
func buildBlobSource(cfg appconf.Config) (blob.Source, error) {
	switch cfg.BlobMode {
	case appconf.BlobModeAzure:
		return blob.NewAzureSource(cfg.StorageAccount, cfg.StorageContainer)
	case appconf.BlobModeLocal:
		return blob.NewDirSource(filepath.Join(cfg.DataRoot, cfg.FeedName))
	default:
		return nil, fmt.Errorf("unknown blob mode %q", cfg.BlobMode)
	}
}
