package app

import (
    "time"

    "github.com/walletera/food-delivery/internal/adapters/sqlstore"
)

type StorageBackend string

const (
    StorageMemory  StorageBackend = "memory"
    StorageMongoDB StorageBackend = "mongodb"
    StorageSQLite  StorageBackend = "sqlite"
    StorageMySQL   StorageBackend = "mysql"
)

type SequencerBackend string

const (
    SequencerStore SequencerBackend = "store"
    SequencerRedis SequencerBackend = "redis"
)

type TransportBackend string

const (
    TransportLocal    TransportBackend = "local"
    TransportRabbitMQ TransportBackend = "rabbitmq"
)

type PublicAPIConfig struct {
    PublicAPIHttpServerPort int
    // AuthServiceBase64PubKey is the base64 encoded PEM of the RSA key that
    // signs bearer tokens. Empty disables authentication.
    AuthServiceBase64PubKey string
}

// RemoteSagaParticipantsConfig makes the orchestrator invoke saga steps over
// http instead of in process.
type RemoteSagaParticipantsConfig struct {
    BaseURL     string
    BearerToken string
}

type RelayConfig struct {
    PollInterval time.Duration
    BatchSize    int
}

func (s StorageBackend) dialect() sqlstore.Dialect {
    if s == StorageMySQL {
        return sqlstore.MySQL
    }
    return sqlstore.SQLite
}
