package app

import (
    "context"
    "crypto/rsa"
    "errors"
    "fmt"
    "log/slog"
    "net/http"
    "time"

    "github.com/walletera/food-delivery/internal/adapters/input/http/public"
    "github.com/walletera/food-delivery/internal/adapters/localbus"
    "github.com/walletera/food-delivery/internal/adapters/output/http/sagaclient"
    "github.com/walletera/food-delivery/internal/dispatch"
    "github.com/walletera/food-delivery/internal/domain/accounting"
    "github.com/walletera/food-delivery/internal/domain/consumer"
    "github.com/walletera/food-delivery/internal/domain/delivery"
    "github.com/walletera/food-delivery/internal/domain/kitchen"
    "github.com/walletera/food-delivery/internal/domain/order"
    "github.com/walletera/food-delivery/internal/domain/orderhistory"
    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/internal/observability"
    "github.com/walletera/food-delivery/internal/projection"
    "github.com/walletera/food-delivery/internal/relay"
    "github.com/walletera/food-delivery/internal/saga"
    "github.com/walletera/food-delivery/pkg/logattr"

    "go.uber.org/zap"
    "go.uber.org/zap/exp/zapslog"
    "go.uber.org/zap/zapcore"
)

const serviceName = "food-delivery"

// RelayedStreams are the aggregate types whose events reach the broker.
var RelayedStreams = []string{
    events.AggregateRestaurant,
    events.AggregateOrder,
    events.AggregateTicket,
    events.AggregateDelivery,
    events.AggregateCourier,
    events.AggregateConsumer,
    events.AggregateAccount,
}

type App struct {
    storage            StorageBackend
    sequencer          SequencerBackend
    transport          TransportBackend
    rabbitmqHost       string
    rabbitmqPort       int
    rabbitmqUser       string
    rabbitmqPassword   string
    mongodbURL         string
    mongodbDatabase    string
    sqlDSN             string
    redisAddr          string
    publicAPIConfig    Optional[PublicAPIConfig]
    remoteParticipants Optional[RemoteSagaParticipantsConfig]
    relayConfig        RelayConfig
    tracingConfig      observability.TracingConfig
    orderMinimum       Optional[shared.Money]
    courierSeed        int64
    busOpts            []localbus.BusOpt
    orchestratorOpts   []saga.OrchestratorOpt
    logHandler         slog.Handler
    logger             *slog.Logger

    stores            *stores
    components        *components
    broker            *transport
    shutdownTracing   func(context.Context) error
    stopRelay         context.CancelFunc
    relayDone         chan struct{}
    httpServersToStop []*http.Server
}

// components are the services and event handlers of every bounded context,
// all sharing one set of stores.
type components struct {
    restaurants    *restaurant.Service
    consumers      *consumer.Service
    accounting     *accounting.Service
    orders         *order.Service
    kitchen        *kitchen.Service
    deliveries     *delivery.Service
    orderHistory   *orderhistory.Service
    participants   *dispatch.Participants
    orchestrator   *saga.Orchestrator
    orderEvents    events.Handler
    kitchenEvents  events.Handler
    deliveryEvents events.Handler
    sagaTriggers   events.Handler
}

func NewApp(opts ...Option) (*App, error) {
    app := &App{}
    err := setDefaultOpts(app)
    if err != nil {
        return nil, fmt.Errorf("failed setting default options: %w", err)
    }
    for _, opt := range opts {
        opt(app)
    }
    return app, nil
}

// Open connects the stores and builds the services without consuming or
// serving anything. Run calls it; the CLI uses it alone for inspection.
func (app *App) Open(ctx context.Context) error {
    if app.components != nil {
        return nil
    }
    app.logger = slog.
        New(app.logHandler).
        With(logattr.ServiceName(serviceName))

    opened, err := app.openStores(ctx)
    if err != nil {
        return fmt.Errorf("failed opening storage: %w", err)
    }
    app.stores = opened
    app.components = app.buildComponents(opened)
    return nil
}

func (app *App) Run(ctx context.Context) error {
    err := app.Open(ctx)
    if err != nil {
        return err
    }

    app.logger.Info("food-delivery started")

    app.shutdownTracing, err = observability.InitTracing(ctx, app.tracingConfig, app.logger.With(logattr.Component("observability")))
    if err != nil {
        return fmt.Errorf("failed initializing tracing: %w", err)
    }

    transport, err := app.openTransport()
    if err != nil {
        return fmt.Errorf("failed opening transport: %w", err)
    }
    app.broker = transport

    err = app.startProcessors(ctx, transport)
    if err != nil {
        return err
    }

    app.startRelay(ctx, transport)

    if app.publicAPIConfig.Set {
        publicApiHttpServer, err := app.startPublicAPIHTTPServer(app.logger)
        if err != nil {
            return fmt.Errorf("failed starting public api http server: %w", err)
        }
        app.httpServersToStop = append(app.httpServersToStop, publicApiHttpServer)
    }

    return nil
}

func (app *App) Stop(ctx context.Context) {
    for _, httpServer := range app.httpServersToStop {
        err := httpServer.Shutdown(ctx)
        if err != nil {
            app.logger.Error("error stopping http server", logattr.Error(err.Error()))
        }
    }
    if app.stopRelay != nil {
        app.stopRelay()
        select {
        case <-app.relayDone:
        case <-ctx.Done():
        }
    }
    if app.broker != nil {
        err := app.broker.close()
        if err != nil {
            app.logger.Error("error closing transport", logattr.Error(err.Error()))
        }
    }
    if app.shutdownTracing != nil {
        err := app.shutdownTracing(ctx)
        if err != nil {
            app.logger.Error("error shutting down tracing", logattr.Error(err.Error()))
        }
    }
    app.Close(ctx)
    app.logger.Info("food-delivery stopped")
}

// Close releases the storage connections opened by Open.
func (app *App) Close(ctx context.Context) {
    if app.stores == nil {
        return
    }
    err := app.stores.close(ctx)
    if err != nil {
        app.logger.Error("error closing storage", logattr.Error(err.Error()))
    }
}

func (app *App) Orchestrator() *saga.Orchestrator {
    return app.components.orchestrator
}

func (app *App) EventStore() eventstore.Store {
    return app.stores.events
}

func (app *App) Logger() *slog.Logger {
    return app.logger
}

func (app *App) buildComponents(s *stores) *components {
    logger := app.logger
    recorder := eventstore.NewRecorder(s.sequencer, eventstore.WithVoids(s.events))

    orderRestaurants := restaurant.NewReplicas(s.replicas, "order", logger.With(logattr.Component("order.RestaurantReplicas")))
    kitchenRestaurants := restaurant.NewReplicas(s.replicas, "kitchen", logger.With(logattr.Component("kitchen.RestaurantReplicas")))
    deliveryRestaurants := restaurant.NewReplicas(s.replicas, "delivery", logger.With(logattr.Component("delivery.RestaurantReplicas")))

    var orderOpts []order.ServiceOpt
    if app.orderMinimum.Set {
        orderOpts = append(orderOpts, order.WithOrderMinimum(app.orderMinimum.Value))
    }

    c := &components{
        restaurants: restaurant.NewService(s.records, recorder, logger.With(logattr.Component("restaurant.Service"))),
        consumers:   consumer.NewService(s.records, recorder, logger.With(logattr.Component("consumer.Service"))),
        accounting:  accounting.NewService(s.records, recorder, logger.With(logattr.Component("accounting.Service"))),
        orders:      order.NewService(s.records, recorder, orderRestaurants, logger.With(logattr.Component("order.Service")), orderOpts...),
        kitchen:     kitchen.NewService(s.records, recorder, kitchenRestaurants, logger.With(logattr.Component("kitchen.Service"))),
        deliveries: delivery.NewService(
            s.records,
            recorder,
            deliveryRestaurants,
            logger.With(logattr.Component("delivery.Service")),
            delivery.WithCourierChooser(delivery.NewRandomChooser(app.courierSeed)),
        ),
        orderHistory: orderhistory.NewService(s.replicas, logger.With(logattr.Component("orderhistory.Service"))),
    }
    c.participants = dispatch.NewParticipants(c.orders, c.consumers, c.kitchen, c.accounting)
    c.orchestrator = saga.NewOrchestrator(
        s.records,
        recorder,
        app.sagaExecutor(c.participants),
        logger.With(logattr.Component("saga.Orchestrator")),
        app.orchestratorOpts...,
    )

    c.orderEvents = order.NewEventsHandler(orderRestaurants)
    c.kitchenEvents = kitchen.NewEventsHandler(kitchenRestaurants)
    c.deliveryEvents = delivery.NewEventsHandler(
        c.deliveries,
        deliveryRestaurants,
        projection.NewInbox(s.replicas, "delivery", logger.With(logattr.Component("delivery.Inbox"))),
        logger.With(logattr.Component("delivery.EventsHandler")),
    )
    c.sagaTriggers = saga.NewTriggers(c.orchestrator)
    return c
}

func (app *App) sagaExecutor(participants *dispatch.Participants) saga.StepExecutor {
    if !app.remoteParticipants.Set {
        return dispatch.NewLocalExecutor(participants)
    }
    return sagaclient.NewExecutor(
        app.remoteParticipants.Value.BaseURL,
        app.logger.With(logattr.Component("sagaclient.Executor")),
        sagaclient.WithBearerToken(app.remoteParticipants.Value.BearerToken),
    )
}

func (app *App) startRelay(ctx context.Context, transport *transport) {
    var opts []relay.Opt
    if app.relayConfig.PollInterval > 0 {
        opts = append(opts, relay.WithPollInterval(app.relayConfig.PollInterval))
    }
    if app.relayConfig.BatchSize > 0 {
        opts = append(opts, relay.WithBatchSize(app.relayConfig.BatchSize))
    }
    eventsRelay := relay.New(
        app.stores.events,
        app.stores.replicas,
        transport.publisher,
        RabbitMQExchangeName,
        RelayedStreams,
        app.logger.With(logattr.Component("relay.Relay")),
        opts...,
    )

    relayCtx, cancel := context.WithCancel(ctx)
    app.stopRelay = cancel
    app.relayDone = make(chan struct{})
    go func() {
        defer close(app.relayDone)
        eventsRelay.Run(relayCtx)
    }()
}

func (app *App) startPublicAPIHTTPServer(appLogger *slog.Logger) (*http.Server, error) {
    var publicKey *rsa.PublicKey
    if app.publicAPIConfig.Value.AuthServiceBase64PubKey != "" {
        var err error
        publicKey, err = public.ParsePublicKey(app.publicAPIConfig.Value.AuthServiceBase64PubKey)
        if err != nil {
            return nil, err
        }
    }

    c := app.components
    handler := public.NewServer(
        public.Services{
            Restaurants:      c.restaurants,
            Consumers:        c.consumers,
            Accounting:       c.accounting,
            Orders:           c.orders,
            Kitchen:          c.kitchen,
            Deliveries:       c.deliveries,
            OrderHistory:     c.orderHistory,
            Sagas:            c.orchestrator,
            SagaParticipants: c.participants,
        },
        publicKey,
        appLogger.With(logattr.Component("http.PublicAPI")),
    )
    httpServer := &http.Server{
        Addr:    fmt.Sprintf("0.0.0.0:%d", app.publicAPIConfig.Value.PublicAPIHttpServerPort),
        Handler: handler,
    }

    go func() {
        defer appLogger.Info("http server stopped")
        if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            appLogger.Error("http server error", logattr.Error(err.Error()))
        }
    }()

    appLogger.Info("http server started")

    return httpServer, nil
}

func setDefaultOpts(app *App) error {
    zapLogger, err := newZapLogger()
    if err != nil {
        return err
    }
    app.logHandler = zapslog.NewHandler(zapLogger.Core())
    app.storage = StorageMemory
    app.sequencer = SequencerStore
    app.transport = TransportLocal
    app.rabbitmqHost = "localhost"
    app.rabbitmqPort = 5672
    app.rabbitmqUser = "guest"
    app.rabbitmqPassword = "guest"
    app.mongodbDatabase = serviceName
    app.courierSeed = time.Now().UnixNano()
    app.tracingConfig = observability.TracingConfig{ServiceName: serviceName}
    return nil
}

func newZapLogger() (*zap.Logger, error) {
    encoderConfig := zap.NewProductionEncoderConfig()
    encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
    zapConfig := zap.Config{
        Level:             zap.NewAtomicLevelAt(zap.DebugLevel),
        Development:       false,
        DisableStacktrace: true,
        Sampling: &zap.SamplingConfig{
            Initial:    100,
            Thereafter: 100,
        },
        Encoding:         "json",
        EncoderConfig:    encoderConfig,
        OutputPaths:      []string{"stderr"},
        ErrorOutputPaths: []string{"stderr"},
    }
    return zapConfig.Build()
}
