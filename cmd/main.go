package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/desertthunder/catalogctl/internal/repositories"
	"github.com/desertthunder/catalogctl/internal/services"
	"github.com/desertthunder/catalogctl/internal/session"
	"github.com/desertthunder/catalogctl/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	var sess *session.Context
	if db, err := shared.OpenSessionDatabase(config.Session); err == nil {
		defer db.Close()
		if sess, err = session.New(repositories.NewSessionRepository(db), shared.WithLogger(logger, "component", "session")); err != nil {
			logger.Warn("stored session could not be loaded", "error", err)
		}
	} else {
		logger.Warn("session database unavailable, session will not persist", "error", err)
	}
	if sess == nil {
		sess, _ = session.New(nil, logger)
	}

	httpClient := &http.Client{Timeout: config.API.Timeout()}
	apiService := services.NewAPIService(config.API.BaseURL, httpClient,
		services.WithTokenSource(sess),
		services.WithRateLimit(config.API.RateLimit),
		services.WithLogger(shared.WithLogger(logger, "component", "api")),
	)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		API:        apiService,
		Session:    sess,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:    "catalogctl",
		Usage:   "Administer a music catalog service from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Before:   runner.before,
		Commands: runner.register(),

		// names may contain commas
		DisableSliceFlagSeparator: true,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
