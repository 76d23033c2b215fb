package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog/log"

	"nutriapi/internal/api"
	"nutriapi/internal/config"
	"nutriapi/internal/excel"
	"nutriapi/internal/googlesheets"
	"nutriapi/internal/jobs"
	"nutriapi/internal/store"
)

func main() {
	setupEnvironment()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	adapter := buildAdapter(ctx, cfg)

	st := store.New(adapter)
	server := api.NewServer(st, cfg.JWTSecret, cfg.TokenTTL)

	sweeper := jobs.New(st, cfg.SweepSchedule)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.SweepSchedule).Msg("Failed to start appointment sweeper")
	}
	defer sweeper.Stop()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handlers.CombinedLoggingHandler(log.Logger, server.Handler()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("backend", cfg.StorageBackend).Msg("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}

// buildAdapter selects and initializes the configured storage backend,
// provisioning any missing entity sheets.
func buildAdapter(ctx context.Context, cfg config.Config) store.Adapter {
	switch cfg.StorageBackend {
	case config.BackendExcel:
		adapter, err := excel.New(excel.Config{FilePath: cfg.ExcelPath})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create excel adapter")
		}
		if err := adapter.EnsureSheets(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to provision workbook sheets")
		}
		log.Debug().Str("path", cfg.ExcelPath).Msg("Using excel backend")
		return adapter

	default:
		sheetsConfig := googlesheets.Config{SpreadsheetID: cfg.SpreadsheetID}

		var client *googlesheets.Client
		var err error
		if cfg.CredentialsFile != "" {
			client, err = googlesheets.NewWithJSONKeyFile(ctx, sheetsConfig, cfg.CredentialsFile)
		} else {
			client, err = googlesheets.NewWithDefaultCredentials(ctx, sheetsConfig)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets client")
		}
		if err := client.EnsureSheets(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to provision spreadsheet sheets")
		}
		log.Debug().Str("spreadsheet_id", cfg.SpreadsheetID).Msg("Using sheets backend")
		return client
	}
}
