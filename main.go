package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/raine/market-dashboard/config"
	"github.com/raine/market-dashboard/internal/chart"
	"github.com/raine/market-dashboard/internal/dashboard"
	"github.com/raine/market-dashboard/internal/ebay"
	"github.com/raine/market-dashboard/internal/history"
	"github.com/raine/market-dashboard/internal/server"
	"github.com/raine/market-dashboard/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	logFileName     = "market-dashboard.log"
	shutdownTimeout = 10 * time.Second
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Try to load existing .env file
	config.LoadEnvFile()

	// Check if required config is missing
	if missing := config.CheckRequired(); len(missing) > 0 {
		if config.IsInteractiveTerminal() {
			if !config.RunSetupWizard(validateCredentials) {
				config.WaitOnWindows()
				os.Exit(1)
			}
		} else {
			// Non-interactive (systemd, containers) - fail with clear error
			config.FatalWithWait("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	// JOURNAL_STREAM is set by systemd when running as a service.
	// Skip file logging under systemd (journald handles it, and ProtectSystem=strict
	// makes the working directory read-only).
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		// Local development: log to both stderr and file
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			config.FatalWithWait("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		multiWriter := io.MultiWriter(consoleWriter, fileWriter)
		log.Logger = log.Output(multiWriter)

		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}

	cfg, err := config.Load()
	if err != nil {
		config.FatalWithWait("invalid config: %v", err)
	}

	kv, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		config.FatalWithWait("failed to initialize store: %v", err)
	}
	defer kv.Close()
	log.Info().Str("dbPath", cfg.DBPath).Msg("store initialized")

	client := ebay.NewClient(ebay.ClientOpts{
		BaseURL:           cfg.BaseURL,
		TokenURL:          cfg.TokenURL,
		ClientID:          cfg.ClientID,
		ClientSecret:      cfg.ClientSecret,
		MarketplaceID:     cfg.MarketplaceID,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	log.Info().Str("marketplace", cfg.MarketplaceID).Msg("ebay client initialized")

	charts := chart.NewManager(chart.NewPNGRenderer(cfg.ChartWidth, cfg.ChartHeight))
	defer charts.Close()

	svc := dashboard.NewService(ebay.NewFinder(client), history.NewStore(kv), charts)
	httpServer := server.NewHTTPServer(cfg.Addr, svc)

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

func validateCredentials(clientID, clientSecret string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return ebay.ValidateCredentials(ctx, ebay.ClientOpts{
		TokenURL:     os.Getenv(config.EnvTokenURL),
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}
