package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"flyer-deals/config"
	"flyer-deals/metrics"
	"flyer-deals/models"
	"flyer-deals/scraper/flipp"
	"flyer-deals/services"
	"flyer-deals/storage"
	"flyer-deals/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			// Nothing to sync into; not a failure of the job itself.
			fmt.Printf("Error: %v\n", err)
			return 0
		}
		logger.Error("Invalid configuration: %v", err)
		return 1
	}

	// Banner goes out before any network work.
	printBanner(os.Stdout, cfg.ZipCode, time.Now())

	var storeRules, categoryRules []models.KeywordRule
	if cfg.KeywordsFile != "" {
		tables, err := config.LoadKeywordTables(cfg.KeywordsFile)
		if err != nil {
			logger.Error("Failed to load keyword tables: %v", err)
			return 1
		}
		storeRules, categoryRules = tables.Stores, tables.Categories
		logger.Info("Loaded keyword tables from %s", cfg.KeywordsFile)
	}

	ctx := context.Background()

	var transport flipp.Transport
	switch cfg.Transport {
	case "browser":
		bt := flipp.NewBrowserTransport(cfg.ChromeBin, cfg.HTTPTimeout, logger)
		defer bt.Close()
		transport = bt
	default:
		transport = flipp.NewHTTPTransport(cfg.HTTPTimeout)
	}
	client := flipp.New(cfg.FlippBaseURL, cfg.FlippLocale, transport, logger)

	store, err := storage.Open(cfg.SupabaseURL, cfg.SupabaseKey, storage.Options{
		ConnectAttempts: cfg.DBConnectAttempts,
		HTTPTimeout:     cfg.HTTPTimeout,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("Failed to open deal store: %v", err)
		return 1
	}
	defer store.Close()

	stores, err := store.LoadStores(ctx)
	if err != nil {
		logger.Error("Failed to load stores: %v", err)
		return 1
	}
	index := models.NewStoreIndex(stores)
	logger.Debug("Loaded %d stores", index.Len())

	var snapshot storage.DealSnapshotWriter
	if cfg.CSVOutputPath != "" {
		csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
			return 1
		}
		defer csvWriter.Close()
		snapshot = csvWriter
	}

	var runMetrics *metrics.SyncMetrics
	if cfg.MetricsPath != "" {
		runMetrics = metrics.New()
	}

	classifier := services.NewClassifier(storeRules, categoryRules)
	syncer := services.NewSyncer(client, store, index, classifier,
		services.NewNormalizer(classifier, logger), logger, services.SyncOptions{
			BatchSize: cfg.BatchSize,
			Snapshot:  snapshot,
			Metrics:   runMetrics,
		})

	res, syncErr := syncer.Run(ctx, cfg.ZipCode)

	if err := runMetrics.WriteTextfile(cfg.MetricsPath); err != nil {
		logger.Warn("Failed to write metrics: %v", err)
	}

	if syncErr != nil {
		logger.Error("Sync failed: %v", syncErr)
		return 1
	}

	reports := services.NewReportService(stores)
	reports.Print(os.Stdout, reports.Generate(res))

	fmt.Println(separator)
	fmt.Printf("Scraper complete. %d deals synced.\n", len(res.Deals))
	return 0
}

var separator = strings.Repeat("-", 50)

func printBanner(w io.Writer, zipCode string, now time.Time) {
	fmt.Fprintf(w, "Starting grocery deals scraper for zip code %s\n", zipCode)
	fmt.Fprintf(w, "Timestamp: %s\n", now.Format(time.RFC3339))
	fmt.Fprintln(w, separator)
}
