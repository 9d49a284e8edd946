// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stylefeed/inventory-importer/internal/acquire"
	"github.com/stylefeed/inventory-importer/internal/api"
	"github.com/stylefeed/inventory-importer/internal/cache"
	"github.com/stylefeed/inventory-importer/internal/cleaning"
	"github.com/stylefeed/inventory-importer/internal/config"
	"github.com/stylefeed/inventory-importer/internal/importer"
	"github.com/stylefeed/inventory-importer/internal/repository/postgres"
	"github.com/stylefeed/inventory-importer/internal/scheduler"
	"github.com/stylefeed/inventory-importer/internal/storage"
	"github.com/stylefeed/inventory-importer/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Repositories
	sources := postgres.NewSourceRepo(db)
	inventory := postgres.NewInventoryRepo(db)
	registry := postgres.NewRegistryRepo(db)
	stats := postgres.NewStatsRepo(db)
	runs := postgres.NewRunRepo(db)
	staged := postgres.NewStagedRepo(db)
	colorMaps := postgres.NewColorMapRepo(db)

	// Caches fall back to direct repository reads when redis is disabled.
	prices, err := cache.NewPriceCache(cfg.Cache, inventory)
	if err != nil {
		log.Fatalf("Failed to initialize price cache: %v", err)
	}
	colors, err := cache.NewColorMapCache(cfg.Cache, colorMaps)
	if err != nil {
		log.Fatalf("Failed to initialize color map cache: %v", err)
	}

	// Optional raw feed archive
	var archive storage.ObjectStorage
	if cfg.Archive.Enabled {
		archive, err = storage.NewMinioClient(cfg.Archive)
		if err != nil {
			log.Fatalf("Failed to initialize archive storage: %v", err)
		}
	}

	// Optional LLM color advisor
	var advisor cleaning.ColorAdvisor
	if cfg.Advisor.Enabled {
		advisor = cleaning.NewOpenAIAdvisor(cfg.Advisor)
	}

	pipeline := &importer.Pipeline{
		Sources:   sources,
		Inventory: inventory,
		Registry:  registry,
		Stats:     stats,
		Runs:      runs,
		Staged:    staged,
		ColorMaps: colorMaps,
		Colors:    colors,
		Prices:    prices,
		Cleaner:   cleaning.NewCleaner(advisor),
		Archive:   archive,
		Alerts:    importer.NewLogAlertSink(),
		State:     importer.NewCoordinator(),
	}

	urlFetcher := acquire.NewURLFetcher()
	service := &acquire.Service{
		Pipeline: pipeline,
		Staged:   staged,
		URL:      urlFetcher,
		Email:    acquire.NewEmailFetcher(urlFetcher, nil),
	}

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler, service, sources)
		if err != nil {
			log.Fatalf("Failed to initialize scheduler: %v", err)
		}
		if err := sched.Start(ctx); err != nil {
			logger.Log.Error().Err(err).Msg("Scheduler failed to start")
		} else {
			defer sched.Stop()
		}
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Acquire: service,
		Sources: sources,
		Runs:    runs,
		Stats:   stats,
		Staged:  staged,
		State:   pipeline.State,
	}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
