package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const sampleYAML = `
storage:
  backend: mongodb
  mongodb_url: mongodb://localhost:27017/?replicaSet=rs0
  sequencer: redis
  redis_addr: localhost:6379
transport:
  backend: rabbitmq
  rabbitmq_port: 5673
public_api:
  port: 9090
relay:
  poll_interval: 50ms
orders:
  minimum_value: 1000
  minimum_currency: JPY
`

func writeConfig(t *testing.T, content string) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), "food-delivery.yml")
    require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
    return path
}

func TestDefaultIsValid(t *testing.T) {
    cfg := Default()
    require.NoError(t, cfg.Validate())
    assert.Equal(t, "memory", cfg.Storage.Backend)
    assert.Equal(t, "local", cfg.Transport.Backend)
    assert.Len(t, cfg.AppOptions(), 14)
}

func TestLoadFile(t *testing.T) {
    cfg, err := Load(writeConfig(t, sampleYAML), nil)
    require.NoError(t, err)

    assert.Equal(t, "mongodb", cfg.Storage.Backend)
    assert.Equal(t, "food-delivery", cfg.Storage.MongoDBDatabase)
    assert.Equal(t, "redis", cfg.Storage.Sequencer)
    assert.Equal(t, "rabbitmq", cfg.Transport.Backend)
    assert.Equal(t, "localhost", cfg.Transport.RabbitMQHost)
    assert.Equal(t, 5673, cfg.Transport.RabbitMQPort)
    assert.Equal(t, 9090, cfg.PublicAPI.Port)
    assert.True(t, cfg.PublicAPI.Enabled)
    assert.Equal(t, 50*time.Millisecond, cfg.Relay.PollInterval)
    assert.Equal(t, 100, cfg.Relay.BatchSize)
    assert.Len(t, cfg.AppOptions(), 15)
}

func TestEnvironmentOverridesFile(t *testing.T) {
    t.Setenv("FOODDELIVERY_PUBLIC_API_PORT", "7070")
    t.Setenv("FOODDELIVERY_TRANSPORT_RABBITMQ_HOST", "rabbitmq")
    t.Setenv("FOODDELIVERY_TRACING_ENABLED", "true")
    t.Setenv("FOODDELIVERY_SAGA_PARTICIPANTS_URL", "http://participants:8080")

    cfg, err := Load(writeConfig(t, sampleYAML), NewViper())
    require.NoError(t, err)
    assert.Equal(t, 7070, cfg.PublicAPI.Port)
    assert.Equal(t, "rabbitmq", cfg.Transport.RabbitMQHost)
    assert.True(t, cfg.Tracing.Enabled)
    assert.Equal(t, "http://participants:8080", cfg.Saga.ParticipantsURL)
    assert.Equal(t, "mongodb", cfg.Storage.Backend)
}

func TestLoadErrors(t *testing.T) {
    _, err := Load(filepath.Join(t.TempDir(), "missing.yml"), nil)
    require.Error(t, err)

    _, err = Load(writeConfig(t, "storage: ["), nil)
    require.ErrorContains(t, err, "invalid config yaml")

    _, err = Load(writeConfig(t, "storage:\n  backend: cassandra\n"), nil)
    require.ErrorContains(t, err, "storage.backend")
}

func TestValidate(t *testing.T) {
    tests := []struct {
        name    string
        modify  func(cfg *Config)
        wantErr string
    }{
        {"mongodb without url", func(cfg *Config) { cfg.Storage.Backend = "mongodb" }, "storage.mongodb_url"},
        {"sqlite without dsn", func(cfg *Config) { cfg.Storage.Backend = "sqlite" }, "storage.sql_dsn"},
        {"mysql without dsn", func(cfg *Config) { cfg.Storage.Backend = "mysql" }, "storage.sql_dsn"},
        {"redis without addr", func(cfg *Config) { cfg.Storage.Sequencer = "redis" }, "storage.redis_addr"},
        {"unknown sequencer", func(cfg *Config) { cfg.Storage.Sequencer = "zookeeper" }, "storage.sequencer"},
        {"unknown transport", func(cfg *Config) { cfg.Transport.Backend = "kafka" }, "transport.backend"},
        {"rabbitmq over memory", func(cfg *Config) { cfg.Transport.Backend = "rabbitmq" }, "shared storage backend"},
        {"port out of range", func(cfg *Config) { cfg.PublicAPI.Port = 70000 }, "public_api.port"},
        {"sample ratio", func(cfg *Config) { cfg.Tracing.SampleRatio = 2 }, "tracing.sample_ratio"},
        {"negative minimum", func(cfg *Config) { cfg.Orders.MinimumValue = -1 }, "orders.minimum_value"},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            cfg := Default()
            tt.modify(cfg)
            require.ErrorContains(t, cfg.Validate(), tt.wantErr)
        })
    }

    cfg := Default()
    cfg.PublicAPI.Enabled = false
    cfg.PublicAPI.Port = 0
    require.NoError(t, cfg.Validate())
}
