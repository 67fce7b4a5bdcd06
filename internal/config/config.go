package config

import (
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/walletera/food-delivery/internal/app"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/observability"

    "github.com/spf13/viper"
    "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables overriding the config file,
// e.g. FOODDELIVERY_STORAGE_BACKEND for storage.backend.
const EnvPrefix = "FOODDELIVERY"

// Config models food-delivery.yml.
type Config struct {
    Storage struct {
        Backend         string `yaml:"backend"`
        Sequencer       string `yaml:"sequencer"`
        MongoDBURL      string `yaml:"mongodb_url"`
        MongoDBDatabase string `yaml:"mongodb_database"`
        SQLDSN          string `yaml:"sql_dsn"`
        RedisAddr       string `yaml:"redis_addr"`
    } `yaml:"storage"`
    Transport struct {
        Backend          string `yaml:"backend"`
        RabbitMQHost     string `yaml:"rabbitmq_host"`
        RabbitMQPort     int    `yaml:"rabbitmq_port"`
        RabbitMQUser     string `yaml:"rabbitmq_user"`
        RabbitMQPassword string `yaml:"rabbitmq_password"`
    } `yaml:"transport"`
    PublicAPI struct {
        Enabled             bool   `yaml:"enabled"`
        Port                int    `yaml:"port"`
        AuthBase64PublicKey string `yaml:"auth_base64_public_key"`
    } `yaml:"public_api"`
    Saga struct {
        // ParticipantsURL makes saga steps run over http against the
        // /saga-commands endpoint of another process.
        ParticipantsURL   string `yaml:"participants_url"`
        ParticipantsToken string `yaml:"participants_token"`
    } `yaml:"saga"`
    Relay struct {
        PollInterval time.Duration `yaml:"poll_interval"`
        BatchSize    int           `yaml:"batch_size"`
    } `yaml:"relay"`
    Tracing struct {
        Enabled     bool    `yaml:"enabled"`
        SampleRatio float64 `yaml:"sample_ratio"`
    } `yaml:"tracing"`
    Orders struct {
        MinimumValue    int64  `yaml:"minimum_value"`
        MinimumCurrency string `yaml:"minimum_currency"`
    } `yaml:"orders"`
}

// Default returns the config of a single process keeping everything in
// memory.
func Default() *Config {
    var cfg Config
    cfg.Storage.Backend = string(app.StorageMemory)
    cfg.Storage.Sequencer = string(app.SequencerStore)
    cfg.Storage.MongoDBDatabase = "food-delivery"
    cfg.Transport.Backend = string(app.TransportLocal)
    cfg.Transport.RabbitMQHost = "localhost"
    cfg.Transport.RabbitMQPort = 5672
    cfg.Transport.RabbitMQUser = "guest"
    cfg.Transport.RabbitMQPassword = "guest"
    cfg.PublicAPI.Enabled = true
    cfg.PublicAPI.Port = 8080
    cfg.Relay.PollInterval = 200 * time.Millisecond
    cfg.Relay.BatchSize = 100
    cfg.Tracing.SampleRatio = 1
    return &cfg
}

// FromYAML parses raw YAML on top of the defaults.
func FromYAML(data []byte) (*Config, error) {
    cfg := Default()
    if err := yaml.Unmarshal(data, cfg); err != nil {
        return nil, fmt.Errorf("invalid config yaml: %w", err)
    }
    return cfg, nil
}

// Load reads the YAML file at path, when given, and applies the values set
// in v through flags or FOODDELIVERY_* environment variables.
func Load(path string, v *viper.Viper) (*Config, error) {
    cfg := Default()
    if path != "" {
        data, err := os.ReadFile(path)
        if err != nil {
            return nil, err
        }
        cfg, err = FromYAML(data)
        if err != nil {
            return nil, err
        }
    }
    if v != nil {
        cfg.override(v)
    }
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    return cfg, nil
}

// NewViper returns a viper instance reading FOODDELIVERY_* variables, with
// dots and dashes of keys mapped to underscores.
func NewViper() *viper.Viper {
    v := viper.New()
    v.SetEnvPrefix(EnvPrefix)
    v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
    v.AutomaticEnv()
    return v
}

func (c *Config) override(v *viper.Viper) {
    setString(v, "storage.backend", &c.Storage.Backend)
    setString(v, "storage.sequencer", &c.Storage.Sequencer)
    setString(v, "storage.mongodb_url", &c.Storage.MongoDBURL)
    setString(v, "storage.mongodb_database", &c.Storage.MongoDBDatabase)
    setString(v, "storage.sql_dsn", &c.Storage.SQLDSN)
    setString(v, "storage.redis_addr", &c.Storage.RedisAddr)
    setString(v, "transport.backend", &c.Transport.Backend)
    setString(v, "transport.rabbitmq_host", &c.Transport.RabbitMQHost)
    setString(v, "transport.rabbitmq_user", &c.Transport.RabbitMQUser)
    setString(v, "transport.rabbitmq_password", &c.Transport.RabbitMQPassword)
    setString(v, "public_api.auth_base64_public_key", &c.PublicAPI.AuthBase64PublicKey)
    setString(v, "saga.participants_url", &c.Saga.ParticipantsURL)
    setString(v, "saga.participants_token", &c.Saga.ParticipantsToken)
    setString(v, "orders.minimum_currency", &c.Orders.MinimumCurrency)
    if v.IsSet("transport.rabbitmq_port") {
        c.Transport.RabbitMQPort = v.GetInt("transport.rabbitmq_port")
    }
    if v.IsSet("public_api.enabled") {
        c.PublicAPI.Enabled = v.GetBool("public_api.enabled")
    }
    if v.IsSet("public_api.port") {
        c.PublicAPI.Port = v.GetInt("public_api.port")
    }
    if v.IsSet("relay.poll_interval") {
        c.Relay.PollInterval = v.GetDuration("relay.poll_interval")
    }
    if v.IsSet("relay.batch_size") {
        c.Relay.BatchSize = v.GetInt("relay.batch_size")
    }
    if v.IsSet("tracing.enabled") {
        c.Tracing.Enabled = v.GetBool("tracing.enabled")
    }
    if v.IsSet("tracing.sample_ratio") {
        c.Tracing.SampleRatio = v.GetFloat64("tracing.sample_ratio")
    }
    if v.IsSet("orders.minimum_value") {
        c.Orders.MinimumValue = v.GetInt64("orders.minimum_value")
    }
}

func setString(v *viper.Viper, key string, target *string) {
    if v.IsSet(key) {
        *target = v.GetString(key)
    }
}

// Validate ensures the selected backends exist and have what they need.
func (c *Config) Validate() error {
    switch app.StorageBackend(c.Storage.Backend) {
    case app.StorageMemory:
    case app.StorageMongoDB:
        if c.Storage.MongoDBURL == "" {
            return fmt.Errorf("storage.mongodb_url is required by the mongodb backend")
        }
    case app.StorageSQLite, app.StorageMySQL:
        if c.Storage.SQLDSN == "" {
            return fmt.Errorf("storage.sql_dsn is required by the %s backend", c.Storage.Backend)
        }
    default:
        return fmt.Errorf("storage.backend must be one of memory, mongodb, sqlite, mysql")
    }
    switch app.SequencerBackend(c.Storage.Sequencer) {
    case app.SequencerStore:
    case app.SequencerRedis:
        if c.Storage.RedisAddr == "" {
            return fmt.Errorf("storage.redis_addr is required by the redis sequencer")
        }
    default:
        return fmt.Errorf("storage.sequencer must be one of store, redis")
    }
    switch app.TransportBackend(c.Transport.Backend) {
    case app.TransportLocal, app.TransportRabbitMQ:
    default:
        return fmt.Errorf("transport.backend must be one of local, rabbitmq")
    }
    if c.Storage.Backend == string(app.StorageMemory) && c.Transport.Backend == string(app.TransportRabbitMQ) {
        return fmt.Errorf("the rabbitmq transport needs a shared storage backend")
    }
    if c.PublicAPI.Enabled && (c.PublicAPI.Port <= 0 || c.PublicAPI.Port > 65535) {
        return fmt.Errorf("public_api.port %d is out of range", c.PublicAPI.Port)
    }
    if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
        return fmt.Errorf("tracing.sample_ratio must be between 0 and 1")
    }
    if c.Orders.MinimumValue < 0 {
        return fmt.Errorf("orders.minimum_value can't be negative")
    }
    return nil
}

// AppOptions translates the config into app options.
func (c *Config) AppOptions() []app.Option {
    opts := []app.Option{
        app.WithStorage(app.StorageBackend(c.Storage.Backend)),
        app.WithSequencer(app.SequencerBackend(c.Storage.Sequencer)),
        app.WithMongoDBURL(c.Storage.MongoDBURL),
        app.WithMongoDBDatabase(c.Storage.MongoDBDatabase),
        app.WithSQLDSN(c.Storage.SQLDSN),
        app.WithRedisAddr(c.Storage.RedisAddr),
        app.WithTransport(app.TransportBackend(c.Transport.Backend)),
        app.WithRabbitmqHost(c.Transport.RabbitMQHost),
        app.WithRabbitmqPort(c.Transport.RabbitMQPort),
        app.WithRabbitmqUser(c.Transport.RabbitMQUser),
        app.WithRabbitmqPassword(c.Transport.RabbitMQPassword),
        app.WithRelayConfig(app.RelayConfig{
            PollInterval: c.Relay.PollInterval,
            BatchSize:    c.Relay.BatchSize,
        }),
        app.WithTracingConfig(observability.TracingConfig{
            Enabled:     c.Tracing.Enabled,
            ServiceName: "food-delivery",
            SampleRatio: c.Tracing.SampleRatio,
        }),
    }
    if c.PublicAPI.Enabled {
        opts = append(opts, app.WithPublicAPIConfig(app.PublicAPIConfig{
            PublicAPIHttpServerPort: c.PublicAPI.Port,
            AuthServiceBase64PubKey: c.PublicAPI.AuthBase64PublicKey,
        }))
    }
    if c.Saga.ParticipantsURL != "" {
        opts = append(opts, app.WithRemoteSagaParticipants(app.RemoteSagaParticipantsConfig{
            BaseURL:     c.Saga.ParticipantsURL,
            BearerToken: c.Saga.ParticipantsToken,
        }))
    }
    if c.Orders.MinimumValue > 0 {
        opts = append(opts, app.WithOrderMinimum(shared.NewMoney(c.Orders.MinimumValue, c.Orders.MinimumCurrency)))
    }
    return opts
}
