package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"researchoffice/internal/database"
	"researchoffice/internal/search"
	"researchoffice/internal/store"
)

// migrateCmd applies pending migrations and exits.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sync, err := setup()
		if err != nil {
			return err
		}
		defer sync()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		slog.Info("migrations applied")
		return nil
	},
}

// seedCmd populates a fresh database. It is safe to run repeatedly.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account, default content and sample news",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sync, err := setup()
		if err != nil {
			return err
		}
		defer sync()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.Seed(db, seedOptions(cfg))
	},
}

// reindexCmd rebuilds both search indexes from the database, the same
// operation as POST /api/admin/sync-index.
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Meilisearch indexes from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, sync, err := setup()
		if err != nil {
			return err
		}
		defer sync()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		news, err := store.NewNewsStore(db).List(true)
		if err != nil {
			return err
		}
		papers, err := store.NewResearchStore(db).List()
		if err != nil {
			return err
		}

		indexer := search.NewIndexer(connectMeili(cfg))
		report, err := indexer.Reindex(cmd.Context(), news, papers)
		if err != nil {
			return err
		}
		if report.ResearchError != "" {
			slog.Warn("research index not rebuilt", "error", report.ResearchError)
		}
		cmd.Printf("news: %d, research: %d\n", report.News, report.Research)
		return nil
	},
}

