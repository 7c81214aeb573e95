package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/catalogctl/internal/repositories"
	"github.com/desertthunder/catalogctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template (unless present) and initializes the session database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = r.configPath
	}

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing session database", "path", config.Session.Path)

	db, err := shared.OpenSessionDatabase(config.Session)
	if err != nil {
		return fmt.Errorf("failed to initialize session database: %w", err)
	}
	defer db.Close()

	session, err := repositories.NewSessionRepository(db).Load()
	if err != nil {
		r.logger.Warn("stored session is unreadable", "error", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Session.Path)

	r.writePlain("✓ Configuration: %s\n", configPath)
	r.writePlain("✓ Session database: %s\n", config.Session.Path)
	r.writePlain("Service: %s\n", config.API.BaseURL)
	if session != nil {
		return r.writePlain("Logged in as %s\n", session.Name)
	}
	r.writePlainln("Next steps:")
	return r.writePlain("Run 'catalogctl login --email <email> --password <password>'\n")
}
