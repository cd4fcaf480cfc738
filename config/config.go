package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Vision    VisionConfig
	Storage   StorageConfig
	Images    ImagesConfig
	Catalog   CatalogConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Matching  MatchingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VisionConfig holds vision OCR API configuration
type VisionConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// StorageConfig holds MinIO object storage configuration
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// ImagesConfig holds stock-photo provider configuration
type ImagesConfig struct {
	PexelsAPIKey      string        `mapstructure:"pexels_api_key"`
	UnsplashAccessKey string        `mapstructure:"unsplash_access_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	PerItem           int           `mapstructure:"per_item"`
}

// CatalogConfig holds catalog store configuration
type CatalogConfig struct {
	DBPath   string        `mapstructure:"db_path"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// UploadConfig holds upload validation configuration
type UploadConfig struct {
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// MatchingConfig holds matching diagnostics configuration
type MatchingConfig struct {
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/platelens/")

	// Environment variable settings
	v.SetEnvPrefix("PLATELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Vision defaults
	v.SetDefault("vision.base_url", "https://api.openai.com")
	v.SetDefault("vision.model", "gpt-4o")

	// Storage defaults (local MinIO for development)
	v.SetDefault("storage.endpoint", "minio:9000")
	v.SetDefault("storage.access_key", "admin")
	v.SetDefault("storage.secret_key", "password123")
	v.SetDefault("storage.bucket", "menu-images")
	v.SetDefault("storage.use_ssl", false)

	// Image search defaults
	v.SetDefault("images.timeout", "10s")
	v.SetDefault("images.per_item", 3)

	// Catalog defaults
	v.SetDefault("catalog.db_path", "./data/platelens")
	v.SetDefault("catalog.cache_ttl", "1m")

	// Upload defaults (5MB)
	v.SetDefault("upload.max_file_size", 5242880)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Vision.APIKey == "" {
		return fmt.Errorf("vision API key is required (set PLATELENS_VISION_API_KEY)")
	}

	if config.Images.PerItem <= 0 || config.Images.PerItem > 10 {
		return fmt.Errorf("images per item must be between 1 and 10, got: %d", config.Images.PerItem)
	}

	if config.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload max file size must be positive, got: %d", config.Upload.MaxFileSize)
	}

	if config.Catalog.DBPath == "" {
		return fmt.Errorf("catalog db path is required")
	}

	return nil
}
