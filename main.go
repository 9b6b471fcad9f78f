package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"airbnb-harvester/config"
	"airbnb-harvester/llm"
	"airbnb-harvester/scraper/airbnb"
	"airbnb-harvester/services"
	"airbnb-harvester/storage"
	"airbnb-harvester/utils"
)

func main() {
	var pages int

	rootCmd := &cobra.Command{
		Use:   "airbnb-harvester <search-url>",
		Short: "Extract structured listing attributes from Airbnb search results",
		Long: "Walks an Airbnb search result set page by page, extracts a fixed\n" +
			"schema of attributes per listing (rooms, pricing, ratings, amenities,\n" +
			"badges) and incrementally persists them as CSV + JSON, one row per\n" +
			"listing URL.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], pages)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().IntVarP(&pages, "pages", "p", 0,
		"maximum number of result pages to process (0 = until exhausted)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(searchURL string, pages int) error {
	logger := utils.NewLogger()
	cfg := config.Load()
	ctx := context.Background()

	if pages == 0 {
		pages = cfg.PagesToScrape
	}

	runCtx := config.NewRunContext(cfg, logger, storage.QuerySlug(searchURL, time.Now()))

	logger.Info("=== Airbnb listing harvester starting ===")
	logger.Info("query: %s | pages: %d | output: %s", runCtx.QuerySlug, pages, cfg.OutputDir)

	var sem services.SemanticClassifier
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("semantic classifier unavailable, continuing without: %v", err)
		} else {
			defer gemini.Close()
			sem = gemini
			logger.Info("semantic classifier enabled (model: %s)", cfg.GeminiModel)
		}
	} else {
		logger.Info("no GEMINI_API_KEY set — recovery pass disabled")
	}

	store, err := storage.NewIncrementalStore(cfg.OutputDir, runCtx.QuerySlug, logger)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	writers := []storage.EntryWriter{store}
	if cfg.PostgresEnabled {
		pg, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			return fmt.Errorf("connect postgres mirror: %w", err)
		}
		defer pg.Close()
		writers = append(writers, pg)
		logger.Info("postgres mirror enabled (db: %s)", cfg.PostgresDB)
	}

	builder := services.NewRecordBuilder(sem, logger)
	harvester := airbnb.New(runCtx, builder, writers...)

	if err := harvester.Scrape(ctx, searchURL, pages); err != nil {
		return fmt.Errorf("harvest failed: %w", err)
	}

	if store.Len() == 0 {
		logger.Warn("no listings were committed")
		return nil
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(store.Entries()))

	logger.Info("done — %d listings → %s / %s", store.Len(), store.CSVPath(), store.JSONPath())
	return nil
}
