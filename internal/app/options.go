package app

import (
    "log/slog"

    "github.com/walletera/food-delivery/internal/adapters/localbus"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/observability"
    "github.com/walletera/food-delivery/internal/saga"
)

type Option func(app *App)

func WithPublicAPIConfig(config PublicAPIConfig) func(a *App) {
    return func(a *App) {
        a.publicAPIConfig = NewOptional[PublicAPIConfig](config)
    }
}

func WithRemoteSagaParticipants(config RemoteSagaParticipantsConfig) func(a *App) {
    return func(a *App) {
        a.remoteParticipants = NewOptional[RemoteSagaParticipantsConfig](config)
    }
}

func WithStorage(backend StorageBackend) func(a *App) {
    return func(a *App) { a.storage = backend }
}

func WithSequencer(backend SequencerBackend) func(a *App) {
    return func(a *App) { a.sequencer = backend }
}

func WithTransport(backend TransportBackend) func(a *App) {
    return func(a *App) { a.transport = backend }
}

func WithRabbitmqHost(host string) func(a *App) { return func(a *App) { a.rabbitmqHost = host } }

func WithRabbitmqPort(port int) func(a *App) { return func(a *App) { a.rabbitmqPort = port } }

func WithRabbitmqUser(user string) func(a *App) { return func(a *App) { a.rabbitmqUser = user } }

func WithRabbitmqPassword(password string) func(a *App) {
    return func(a *App) { a.rabbitmqPassword = password }
}

func WithMongoDBURL(url string) func(a *App) { return func(a *App) { a.mongodbURL = url } }

func WithMongoDBDatabase(name string) func(a *App) { return func(a *App) { a.mongodbDatabase = name } }

func WithSQLDSN(dsn string) func(a *App) { return func(a *App) { a.sqlDSN = dsn } }

func WithRedisAddr(addr string) func(a *App) { return func(a *App) { a.redisAddr = addr } }

func WithRelayConfig(config RelayConfig) func(a *App) {
    return func(a *App) { a.relayConfig = config }
}

func WithTracingConfig(config observability.TracingConfig) func(a *App) {
    return func(a *App) { a.tracingConfig = config }
}

func WithOrderMinimum(minimum shared.Money) func(a *App) {
    return func(a *App) { a.orderMinimum = NewOptional[shared.Money](minimum) }
}

func WithCourierSeed(seed int64) func(a *App) { return func(a *App) { a.courierSeed = seed } }

func WithBusOpts(opts ...localbus.BusOpt) func(a *App) {
    return func(a *App) { a.busOpts = opts }
}

func WithOrchestratorOpts(opts ...saga.OrchestratorOpt) func(a *App) {
    return func(a *App) { a.orchestratorOpts = opts }
}

func WithLogHandler(handler slog.Handler) func(app *App) {
    return func(app *App) { app.logHandler = handler }
}
