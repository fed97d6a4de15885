package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/desertthunder/mrx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("MRX_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	shared.SetLogLevel(logger, config.Log.Level)
	if config.Log.File != "" {
		if closer, err := shared.LogToFile(logger, config.Log.File); err != nil {
			logger.Warn("failed to open log file, logging to stderr", "path", config.Log.File, "error", err)
		} else {
			defer closer.Close()
		}
	}

	var db *sql.DB
	if config.Database.Path != "" {
		conn, err := shared.OpenDatabase(config.Database)
		if err != nil {
			logger.Warn("database unavailable, session will not persist", "error", err)
		} else {
			db = conn
			defer db.Close()
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		DB:         db,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "mrx",
		Usage:    "Track movies, games and manga from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("application error", "error", err)
		if db != nil {
			db.Close()
		}
		os.Exit(1)
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.SetupDatabase,
	}
}
