package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("PLATELENS_SERVER_PORT")
		os.Unsetenv("PLATELENS_SERVER_ENVIRONMENT")
		os.Unsetenv("PLATELENS_VISION_API_KEY")
		os.Unsetenv("PLATELENS_VISION_BASE_URL")
		os.Unsetenv("PLATELENS_VISION_MODEL")
		os.Unsetenv("PLATELENS_STORAGE_ENDPOINT")
		os.Unsetenv("PLATELENS_STORAGE_BUCKET")
		os.Unsetenv("PLATELENS_IMAGES_PEXELS_API_KEY")
		os.Unsetenv("PLATELENS_IMAGES_TIMEOUT")
		os.Unsetenv("PLATELENS_IMAGES_PER_ITEM")
		os.Unsetenv("PLATELENS_CATALOG_DB_PATH")
		os.Unsetenv("PLATELENS_CATALOG_CACHE_TTL")
		os.Unsetenv("PLATELENS_UPLOAD_MAX_FILE_SIZE")
		os.Unsetenv("PLATELENS_RATELIMIT_PER_IP")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required API key
		os.Setenv("PLATELENS_VISION_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Vision.BaseURL != "https://api.openai.com" {
			t.Errorf("Vision.BaseURL = %s, want https://api.openai.com", cfg.Vision.BaseURL)
		}
		if cfg.Vision.Model != "gpt-4o" {
			t.Errorf("Vision.Model = %s, want gpt-4o", cfg.Vision.Model)
		}
		if cfg.Storage.Bucket != "menu-images" {
			t.Errorf("Storage.Bucket = %s, want menu-images", cfg.Storage.Bucket)
		}
		if cfg.Images.Timeout != 10*time.Second {
			t.Errorf("Images.Timeout = %v, want 10s", cfg.Images.Timeout)
		}
		if cfg.Images.PerItem != 3 {
			t.Errorf("Images.PerItem = %d, want 3", cfg.Images.PerItem)
		}
		if cfg.Catalog.CacheTTL != time.Minute {
			t.Errorf("Catalog.CacheTTL = %v, want 1m", cfg.Catalog.CacheTTL)
		}
		if cfg.Upload.MaxFileSize != 5242880 {
			t.Errorf("Upload.MaxFileSize = %d, want 5242880", cfg.Upload.MaxFileSize)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PLATELENS_SERVER_PORT", "9090")
		os.Setenv("PLATELENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("PLATELENS_VISION_API_KEY", "custom-api-key")
		os.Setenv("PLATELENS_VISION_BASE_URL", "https://custom.api.com")
		os.Setenv("PLATELENS_VISION_MODEL", "gpt-4o-mini")
		os.Setenv("PLATELENS_STORAGE_ENDPOINT", "storage.internal:9000")
		os.Setenv("PLATELENS_IMAGES_TIMEOUT", "20s")
		os.Setenv("PLATELENS_IMAGES_PER_ITEM", "5")
		os.Setenv("PLATELENS_CATALOG_CACHE_TTL", "5m")
		os.Setenv("PLATELENS_RATELIMIT_PER_IP", "200")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Vision.APIKey != "custom-api-key" {
			t.Errorf("Vision.APIKey = %s, want custom-api-key", cfg.Vision.APIKey)
		}
		if cfg.Vision.BaseURL != "https://custom.api.com" {
			t.Errorf("Vision.BaseURL = %s, want https://custom.api.com", cfg.Vision.BaseURL)
		}
		if cfg.Vision.Model != "gpt-4o-mini" {
			t.Errorf("Vision.Model = %s, want gpt-4o-mini", cfg.Vision.Model)
		}
		if cfg.Storage.Endpoint != "storage.internal:9000" {
			t.Errorf("Storage.Endpoint = %s, want storage.internal:9000", cfg.Storage.Endpoint)
		}
		if cfg.Images.Timeout != 20*time.Second {
			t.Errorf("Images.Timeout = %v, want 20s", cfg.Images.Timeout)
		}
		if cfg.Images.PerItem != 5 {
			t.Errorf("Images.PerItem = %d, want 5", cfg.Images.PerItem)
		}
		if cfg.Catalog.CacheTTL != 5*time.Minute {
			t.Errorf("Catalog.CacheTTL = %v, want 5m", cfg.Catalog.CacheTTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
	})

	t.Run("fails validation when vision API key is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing API key")
		}
	})

	t.Run("fails validation for out-of-range images per item", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PLATELENS_VISION_API_KEY", "test-key")
		os.Setenv("PLATELENS_IMAGES_PER_ITEM", "25")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for per_item > 10")
		}
	})
}

func TestValidate(t *testing.T) {
	validConfig := func() *Config {
		return &Config{
			Vision: VisionConfig{
				APIKey:  "test-key",
				BaseURL: "https://api.openai.com",
				Model:   "gpt-4o",
			},
			Images: ImagesConfig{
				PerItem: 3,
			},
			Upload: UploadConfig{
				MaxFileSize: 5242880,
			},
			Catalog: CatalogConfig{
				DBPath: "./data/platelens",
			},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(validConfig()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when API key is empty", func(t *testing.T) {
		cfg := validConfig()
		cfg.Vision.APIKey = ""

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty API key")
		}
	})

	t.Run("fails for zero images per item", func(t *testing.T) {
		cfg := validConfig()
		cfg.Images.PerItem = 0

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero per_item")
		}
	})

	t.Run("fails for non-positive max upload size", func(t *testing.T) {
		cfg := validConfig()
		cfg.Upload.MaxFileSize = 0

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero max file size")
		}
	})

	t.Run("fails for empty catalog db path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Catalog.DBPath = ""

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for empty db path")
		}
	})
}
