// Package main is the entry point for the research office server and its
// maintenance commands.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"researchoffice/internal/config"
	"researchoffice/internal/database"
	"researchoffice/internal/logging"
	"researchoffice/internal/search"
)

// verbose enables debug logging regardless of APP_ENV.
var verbose bool

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "researchoffice",
	Short: "Research promotion office website and dashboard",
	Long: `researchoffice serves the public research repository, news and
project submission site together with the staff dashboard.

Commands:
  serve    - Run the HTTP server
  migrate  - Apply pending database migrations
  seed     - Create the admin account, default content and sample news
  reindex  - Rebuild the Meilisearch indexes from the database`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, reindexCmd)
}

// setup loads configuration and installs the process-wide logger. The
// returned func flushes the logger.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, sync, err := logging.New(cfg.Env, verbose)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())
	return cfg, sync, nil
}

// openDB connects to PostgreSQL and applies pending migrations.
func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func seedOptions(cfg *config.Config) database.SeedOptions {
	return database.SeedOptions{
		AdminEmail:    cfg.SeedAdminEmail,
		AdminPassword: cfg.SeedAdminPassword,
	}
}

// connectMeili returns the search backend. An unreachable server is only a
// warning: writes are best effort and searches fail per request.
func connectMeili(cfg *config.Config) *search.Meili {
	meili := search.NewMeili(cfg.MeiliHost, cfg.MeiliKey)
	if !meili.Healthy() {
		slog.Warn("meilisearch not reachable, search is degraded", "host", cfg.MeiliHost)
	}
	return meili
}
