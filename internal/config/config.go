package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends for the persisted token
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	API       APIConfig       `yaml:"api"`
	Auth      AuthConfig      `yaml:"auth"`
	Feed      FeedConfig      `yaml:"feed"`
	Favorites FavoritesConfig `yaml:"favorites"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig holds photo service settings
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"IMAGEFEED_API_BASE_URL" env-default:"https://api.unsplash.com"`
	Timeout time.Duration `yaml:"timeout" env:"IMAGEFEED_API_TIMEOUT" env-default:"30s"`
}

// AuthConfig holds OAuth client credentials
type AuthConfig struct {
	BaseURL     string `yaml:"base_url" env:"IMAGEFEED_AUTH_BASE_URL" env-default:"https://unsplash.com"`
	AccessKey   string `yaml:"access_key" env:"IMAGEFEED_ACCESS_KEY"`
	SecretKey   string `yaml:"secret_key" env:"IMAGEFEED_SECRET_KEY"`
	RedirectURI string `yaml:"redirect_uri" env:"IMAGEFEED_REDIRECT_URI" env-default:"imagefeed://auth"`
	AccessScope string `yaml:"access_scope" env:"IMAGEFEED_ACCESS_SCOPE" env-default:"public+read_user+write_likes"`
}

// FeedConfig holds photo feed settings
type FeedConfig struct {
	// KeepCursorOnDuplicatePage leaves the page cursor in place when a page
	// holds nothing but already-cached photos.
	KeepCursorOnDuplicatePage bool `yaml:"keep_cursor_on_duplicate_page" env:"IMAGEFEED_FEED_KEEP_CURSOR_ON_DUPLICATE_PAGE"`
}

// FavoritesConfig holds favorites pagination settings
type FavoritesConfig struct {
	PerPage int `yaml:"per_page" env:"IMAGEFEED_FAVORITES_PER_PAGE" env-default:"30"`
}

// StorageConfig selects where the token is persisted
type StorageConfig struct {
	Backend       string `yaml:"backend" env:"IMAGEFEED_STORAGE_BACKEND" env-default:"sqlite"`
	SQLitePath    string `yaml:"sqlite_path" env:"IMAGEFEED_SQLITE_PATH" env-default:"imagefeed.db"`
	RedisAddr     string `yaml:"redis_addr" env:"IMAGEFEED_REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"IMAGEFEED_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"IMAGEFEED_REDIS_DB" env-default:"0"`
}

// ServerConfig holds local gateway settings
type ServerConfig struct {
	Host string `yaml:"host" env:"IMAGEFEED_SERVER_HOST" env-default:"127.0.0.1"`
	Port int    `yaml:"port" env:"IMAGEFEED_SERVER_PORT" env-default:"8080"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" env:"IMAGEFEED_LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from a YAML file, applies environment overrides
// and validates the result. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("api base URL is invalid: %w", err)
	}

	if _, err := url.ParseRequestURI(c.Auth.BaseURL); err != nil {
		return fmt.Errorf("auth base URL is invalid: %w", err)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got: %v", c.API.Timeout)
	}

	if c.Auth.AccessKey == "" {
		return fmt.Errorf("access key cannot be empty")
	}

	if c.Auth.RedirectURI == "" {
		return fmt.Errorf("redirect URI cannot be empty")
	}

	if c.Favorites.PerPage <= 0 {
		return fmt.Errorf("favorites per page must be positive, got: %d", c.Favorites.PerPage)
	}

	switch c.Storage.Backend {
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path cannot be empty")
		}
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
	default:
		return fmt.Errorf("unknown storage backend: %q", c.Storage.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}

	return nil
}

// Addr returns the gateway listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
