package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/platelens/backend/config"
	httpDelivery "github.com/platelens/backend/internal/delivery/http"
	"github.com/platelens/backend/internal/infrastructure/cache"
	"github.com/platelens/backend/internal/infrastructure/objectstore"
	"github.com/platelens/backend/internal/infrastructure/stockphoto"
	"github.com/platelens/backend/internal/infrastructure/store"
	"github.com/platelens/backend/internal/infrastructure/vision"
	"github.com/platelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PlateLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	ctx := context.Background()

	// Initialize infrastructure dependencies
	db, err := store.Open(cfg.Catalog.DBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog store: %v", err)
	}
	defer db.Close()

	if err := db.SeedCatalog(ctx); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	memoryCache := cache.NewMemoryCache()
	log.Printf("Catalog cache TTL: %s", cfg.Catalog.CacheTTL)

	visionClient := vision.NewClient(cfg.Vision.APIKey, cfg.Vision.BaseURL, cfg.Vision.Model)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		visionClient.SetDebug(true)
		log.Printf("Vision client debug mode enabled")
	}
	log.Printf("Vision API configured: %s (model: %s)", cfg.Vision.BaseURL, cfg.Vision.Model)

	imageClient := stockphoto.NewClient(stockphoto.Config{
		PexelsAPIKey:      cfg.Images.PexelsAPIKey,
		UnsplashAccessKey: cfg.Images.UnsplashAccessKey,
		Timeout:           cfg.Images.Timeout,
	})
	if cfg.Images.PexelsAPIKey == "" && cfg.Images.UnsplashAccessKey == "" {
		log.Printf("WARNING: no image providers configured - enrichment will fall back to placeholders")
	}

	objectStorage, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	log.Printf("Object storage configured: %s/%s", cfg.Storage.Endpoint, cfg.Storage.Bucket)

	// Initialize usecase layer
	progress := usecase.NewProgressTracker()

	matcher := usecase.NewMatchingService(db, memoryCache, usecase.MatchConfig{
		CatalogCacheTTL:    cfg.Catalog.CacheTTL,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	enricher := usecase.NewEnrichmentService(imageClient, db, progress, usecase.EnrichmentConfig{
		ImagesPerItem: cfg.Images.PerItem,
		SearchTimeout: cfg.Images.Timeout,
	})

	menuService := usecase.NewMenuService(
		visionClient,
		objectStorage,
		db,
		db,
		matcher,
		enricher,
		progress,
		usecase.MenuServiceConfig{
			MaxUploadSize: cfg.Upload.MaxFileSize,
		},
	)

	log.Printf("Enrichment: %d images/item, search timeout %s", cfg.Images.PerItem, cfg.Images.Timeout)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(menuService, cfg.Upload.MaxFileSize)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
