package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := config.LoadFile("")
		require.NoError(t, err)

		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, config.DriverFile, cfg.State.Driver)
		assert.Equal(t, "default", cfg.State.Profile)
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, uint32(5), cfg.API.Breaker.MaxFailures)
		assert.False(t, cfg.EventsEnabled())
		assert.Equal(t, 2*time.Second, cfg.Broker.DeliveryTimeout)
	})

	t.Run("File", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
http_server_addr: ":9090"
api:
  base_url: "https://shop.example.com/api"
  timeout: 3s
  breaker:
    max_failures: 2
    open_timeout: 1m
state:
  driver: redis
  profile: kiosk
  redis_addr: "localhost:6379"
broker:
  seed_brokers: ["b1:9092", "b2:9092"]
  schema_registry_urls: ["http://sr:8081"]
  delivery_timeout: 500ms
  topics:
    client_events: events
`)
		cfg, err := config.LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, ":9090", cfg.HTTPServerAddr)
		assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.API.Timeout)
		assert.Equal(t, 10*time.Second, cfg.API.RefreshTimeout)
		assert.Equal(t, uint32(2), cfg.API.Breaker.MaxFailures)
		assert.Equal(t, time.Minute, cfg.API.Breaker.OpenTimeout)
		assert.Equal(t, config.DriverRedis, cfg.State.Driver)
		assert.Equal(t, "kiosk", cfg.State.Profile)
		assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Broker.SeedBrokers)
		assert.Equal(t, "events", cfg.Broker.Topics.ClientEvents)
		assert.Equal(t, 500*time.Millisecond, cfg.Broker.DeliveryTimeout)
		assert.True(t, cfg.EventsEnabled())
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("STOREFRONT_API_BASE_URL", "http://env.example.com/api")
		t.Setenv("STOREFRONT_STATE_DRIVER", "memory")
		t.Setenv("STOREFRONT_LOG_LEVEL", "warn")

		path := writeConfig(t, `
api:
  base_url: "http://file.example.com/api"
`)
		cfg, err := config.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "http://env.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, config.DriverMemory, cfg.State.Driver)
		assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		path := writeConfig(t, "sql_db: postgres://localhost\n")
		_, err := config.LoadFile(path)
		require.Error(t, err)
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		path := writeConfig(t, "state:\n  driver: mongo\n")
		_, err := config.LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state.driver")
	})

	t.Run("PostgresWithoutDSN", func(t *testing.T) {
		path := writeConfig(t, "state:\n  driver: postgres\n")
		_, err := config.LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state.sql_dsn")
	})

	t.Run("BrokersWithoutRegistry", func(t *testing.T) {
		path := writeConfig(t, "broker:\n  seed_brokers: [\"b1:9092\"]\n")
		_, err := config.LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema_registry_urls")
	})

	t.Run("PartialBrokerTLS", func(t *testing.T) {
		path := writeConfig(t, `
broker:
  seed_brokers: ["b1:9092"]
  schema_registry_urls: ["http://sr:8081"]
  tls:
    ca_file: ca.pem
`)
		_, err := config.LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker.tls")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}
