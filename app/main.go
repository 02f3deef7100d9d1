package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgrigorov/newsgrid/app/api"
	"github.com/mgrigorov/newsgrid/app/cfg"
	"github.com/mgrigorov/newsgrid/app/database"
	"github.com/mgrigorov/newsgrid/app/pipeline"
	"github.com/mgrigorov/newsgrid/app/sources"
	"github.com/mgrigorov/newsgrid/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if appConfig == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appConfig.Debug)

	slog.Info("Starting newsgrid", "version", appConfig.Version)

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	slog.Info("Database ready", "path", appConfig.DBPath, "migration_version", version, "dirty", dirty)

	catalog, err := sources.NewCatalog(appConfig.SourcesFile)
	if err != nil {
		log.Fatal("Failed to load source catalog:", err)
	}
	slog.Info("Source catalog loaded", "categories", len(catalog.Categories), "rss_feeds", len(catalog.RSSFeeds))

	articleRepo := database.NewArticleRepository(db)

	httpClient := &http.Client{}

	registered := registerSources(httpClient, catalog, appConfig)
	slog.Info("Sources registered", "count", len(registered))

	newsPipeline := pipeline.New(catalog, registered, articleRepo)

	if appConfig.FetchOnce {
		runOnce(newsPipeline)
		return
	}

	scheduler := tasks.NewScheduler(newsPipeline, articleRepo, httpClient)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(articleRepo, catalog, newsPipeline)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// registerSources builds the ordered adapter list. API sources without
// a configured key are left out; extra RSS feeds come last.
func registerSources(client *http.Client, catalog *sources.Catalog, appConfig *cfg.Cfg) []sources.Source {
	var registered []sources.Source

	if appConfig.NewsDataAPIKey != "" {
		registered = append(registered, sources.NewNewsDataSource(client, catalog))
	} else {
		slog.Warn("NewsData.io disabled, no API key configured")
	}

	if appConfig.WorldNewsAPIKey != "" {
		registered = append(registered, sources.NewWorldNewsSource(client, catalog))
	} else {
		slog.Warn("World News API disabled, no API key configured")
	}

	if appConfig.GNewsAPIKey != "" {
		registered = append(registered, sources.NewGNewsSource(client, catalog))
	} else {
		slog.Warn("GNews disabled, no API key configured")
	}

	for _, feed := range catalog.RSSFeeds {
		registered = append(registered, sources.NewRSSSource(client, feed))
	}

	return registered
}

// runOnce executes a single pipeline pass for the --fetch CLI mode.
func runOnce(p *pipeline.Pipeline) {
	result, err := p.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Fetch complete: %d fetched, %d added, %d skipped\n", result.Fetched, result.Added, result.Skipped)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
