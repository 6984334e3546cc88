package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	return &Config{
		API:       APIConfig{BaseURL: "https://api.unsplash.com", Timeout: 30 * time.Second},
		Auth:      AuthConfig{BaseURL: "https://unsplash.com", AccessKey: "key", RedirectURI: "imagefeed://auth"},
		Favorites: FavoritesConfig{PerPage: 30},
		Storage:   StorageConfig{Backend: StorageSQLite, SQLitePath: "imagefeed.db"},
		Server:    ServerConfig{Host: "127.0.0.1", Port: 8080},
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://localhost:9000
  timeout: 5s
auth:
  access_key: my-key
  secret_key: my-secret
feed:
  keep_cursor_on_duplicate_page: true
favorites:
  per_page: 12
storage:
  backend: redis
  redis_addr: localhost:6380
server:
  port: 9090
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "my-key", cfg.Auth.AccessKey)
	assert.Equal(t, "my-secret", cfg.Auth.SecretKey)
	assert.True(t, cfg.Feed.KeepCursorOnDuplicatePage)
	assert.Equal(t, 12, cfg.Favorites.PerPage)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "localhost:6380", cfg.Storage.RedisAddr)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Defaults fill the gaps
	assert.Equal(t, "https://unsplash.com", cfg.Auth.BaseURL)
	assert.Equal(t, "imagefeed://auth", cfg.Auth.RedirectURI)
	assert.Equal(t, "public+read_user+write_likes", cfg.Auth.AccessScope)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  access_key: file-key
`)
	t.Setenv("IMAGEFEED_ACCESS_KEY", "env-key")
	t.Setenv("IMAGEFEED_FAVORITES_PER_PAGE", "10")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Auth.AccessKey)
	assert.Equal(t, 10, cfg.Favorites.PerPage)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Feed.KeepCursorOnDuplicatePage)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("IMAGEFEED_ACCESS_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Auth.AccessKey)
	assert.Equal(t, "https://api.unsplash.com", cfg.API.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MissingAccessKey(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("IMAGEFEED_ACCESS_KEY", "")

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "access key cannot be empty")
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad api url", func(c *Config) { c.API.BaseURL = "not a url" }, "api base URL is invalid"},
		{"bad auth url", func(c *Config) { c.Auth.BaseURL = "" }, "auth base URL is invalid"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api timeout must be positive"},
		{"empty redirect", func(c *Config) { c.Auth.RedirectURI = "" }, "redirect URI cannot be empty"},
		{"zero per page", func(c *Config) { c.Favorites.PerPage = 0 }, "favorites per page must be positive"},
		{"empty sqlite path", func(c *Config) { c.Storage.SQLitePath = "" }, "sqlite path cannot be empty"},
		{"empty redis addr", func(c *Config) {
			c.Storage.Backend = StorageRedis
			c.Storage.RedisAddr = ""
		}, "redis address cannot be empty"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "etcd" }, "unknown storage backend"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "server port out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", ServerConfig{Host: "127.0.0.1", Port: 8080}.Addr())
}
