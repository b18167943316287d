package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Creates a temporary YAML config file in a temporary directory.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err, "Failed to write temporary config file")

	return configPath
}

func TestLoadConfigFromPath(t *testing.T) {
	validYAML := `
env: "test"
api:
  base_url: "https://shop.example.com"
  timeout: "15s"
session:
  backend: "redis"
  key: "alice"
  ttl: "1h"
redis:
  REDIS_HOST: "redishost"
  REDIS_PORT: "6380"
  REDIS_USER: "redisuser"
  REDIS_PASSWORD: "redispassword"
  REDIS_DB: 1
otel:
  SERVICE_NAME: "test-service"
  EXPORTER_ENDPOINT: "http://otel:4318/v1/traces"
  SAMPLER_RATIO: 0.5
metrics:
  textfile_path: "/tmp/storefront.prom"
log:
  level: "debug"
  format: "text"
`

	t.Run("Load from YAML file", func(t *testing.T) {
		configPath := createTempConfigFile(t, validYAML)

		cfg, err := LoadConfigFromPath(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, "https://shop.example.com", cfg.API.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.API.Timeout)
		assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
		assert.Equal(t, "alice", cfg.Session.Key)
		assert.Equal(t, time.Hour, cfg.Session.TTL)
		assert.Equal(t, "redisuser", cfg.RedisConnect.Username)
		assert.Equal(t, 0.5, cfg.Otel.SamplerRatio)
		assert.Equal(t, "/tmp/storefront.prom", cfg.Metrics.TextfilePath)
		assert.Equal(t, "text", cfg.Log.Format)
	})

	t.Run("Defaults from environment only", func(t *testing.T) {
		t.Setenv("STOREFRONT_API_URL", "http://api.local:9000")
		t.Setenv("SESSION_BACKEND", "memory")

		cfg, err := LoadConfigFromPath("")
		require.NoError(t, err)
		assert.Equal(t, "http://api.local:9000", cfg.API.BaseURL)
		assert.Equal(t, time.Duration(0), cfg.API.Timeout)
		assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("File backend gets a default path", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "file")
		t.Setenv("SESSION_FILE", "")

		cfg, err := LoadConfigFromPath("")
		require.NoError(t, err)
		assert.Equal(t, "session.json", filepath.Base(cfg.Session.FilePath))
	})

	t.Run("Missing file", func(t *testing.T) {
		cfg, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("Unknown session backend", func(t *testing.T) {
		configPath := createTempConfigFile(t, "session:\n  backend: \"etcd\"\n")

		cfg, err := LoadConfigFromPath(configPath)
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), `unknown session backend "etcd"`)
	})

	t.Run("Sampler ratio out of range", func(t *testing.T) {
		configPath := createTempConfigFile(t, "otel:\n  SAMPLER_RATIO: 2\n")

		_, err := LoadConfigFromPath(configPath)
		require.Error(t, err)
	})
}

func TestRedisConnectGetDSN(t *testing.T) {
	withAuth := RedisConnect{Host: "h", Port: "6379", Username: "u", Password: "p", DB: 2}
	assert.Equal(t, "redis://u:p@h:6379/2", withAuth.GetDSN())

	noAuth := RedisConnect{Host: "h", Port: "6379"}
	assert.Equal(t, "redis://h:6379/0", noAuth.GetDSN())
}
