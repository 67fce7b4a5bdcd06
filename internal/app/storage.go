package app

import (
    "context"
    "fmt"

    "github.com/walletera/food-delivery/internal/adapters/memory"
    "github.com/walletera/food-delivery/internal/adapters/mongodb"
    "github.com/walletera/food-delivery/internal/adapters/redis"
    "github.com/walletera/food-delivery/internal/adapters/sqlstore"
    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/internal/projection"
    "github.com/walletera/food-delivery/pkg/logattr"

    goredis "github.com/redis/go-redis/v9"
)

// stores bundles the persistence ports of one storage backend.
type stores struct {
    records   aggregates.RecordStore
    replicas  projection.ReplicaStore
    events    eventstore.Store
    sequencer eventstore.Sequencer
    closers   []func(ctx context.Context) error
}

func (app *App) openStores(ctx context.Context) (*stores, error) {
    var (
        opened *stores
        err    error
    )
    switch app.storage {
    case StorageMemory:
        opened = openMemoryStores()
    case StorageMongoDB:
        opened, err = app.openMongoDBStores(ctx)
    case StorageSQLite, StorageMySQL:
        opened, err = app.openSQLStores(ctx)
    default:
        return nil, fmt.Errorf("unsupported storage backend %q", app.storage)
    }
    if err != nil {
        return nil, err
    }

    switch app.sequencer {
    case SequencerStore, "":
    case SequencerRedis:
        client := goredis.NewClient(&goredis.Options{Addr: app.redisAddr})
        err := client.Ping(ctx).Err()
        if err != nil {
            opened.close(ctx)
            return nil, fmt.Errorf("error connecting to redis: %w", err)
        }
        opened.sequencer = redis.NewSequencer(client)
        opened.closers = append(opened.closers, func(context.Context) error { return client.Close() })
    default:
        opened.close(ctx)
        return nil, fmt.Errorf("unsupported sequencer backend %q", app.sequencer)
    }

    app.logger.Info(
        "storage opened",
        logattr.Component("storage"),
        logattr.State(string(app.storage)+"/"+string(app.sequencer)),
    )
    return opened, nil
}

func openMemoryStores() *stores {
    events := memory.NewEventStore()
    return &stores{
        records:   memory.NewRecordStore(events),
        replicas:  memory.NewReplicaStore(),
        events:    events,
        sequencer: events,
    }
}

func (app *App) openMongoDBStores(ctx context.Context) (*stores, error) {
    client, err := mongodb.Connect(app.mongodbURL)
    if err != nil {
        return nil, err
    }
    disconnect := func(ctx context.Context) error { return client.Disconnect(ctx) }

    err = mongodb.EnsureIndexes(ctx, client.Database(app.mongodbDatabase))
    if err != nil {
        disconnect(ctx)
        return nil, err
    }
    return &stores{
        records:   mongodb.NewRecordStore(client, app.mongodbDatabase),
        replicas:  mongodb.NewReplicaStore(client, app.mongodbDatabase),
        events:    mongodb.NewEventStore(client.Database(app.mongodbDatabase)),
        sequencer: mongodb.NewSequencer(client, app.mongodbDatabase),
        closers:   []func(ctx context.Context) error{disconnect},
    }, nil
}

func (app *App) openSQLStores(ctx context.Context) (*stores, error) {
    dialect := app.storage.dialect()
    db, err := sqlstore.Open(ctx, dialect, app.sqlDSN)
    if err != nil {
        return nil, err
    }
    return &stores{
        records:   sqlstore.NewRecordStore(db),
        replicas:  sqlstore.NewReplicaStore(db),
        events:    sqlstore.NewEventStore(db),
        sequencer: sqlstore.NewSequencer(db, dialect),
        closers:   []func(ctx context.Context) error{func(context.Context) error { return db.Close() }},
    }, nil
}

func (s *stores) close(ctx context.Context) error {
    var firstErr error
    for i := len(s.closers) - 1; i >= 0; i-- {
        err := s.closers[i](ctx)
        if err != nil && firstErr == nil {
            firstErr = err
        }
    }
    s.closers = nil
    return firstErr
}
