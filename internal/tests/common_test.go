package tests

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "strconv"
    "time"

    "github.com/walletera/food-delivery/internal/adapters/input/http/public"
    "github.com/walletera/food-delivery/internal/app"

    "github.com/cucumber/godog"
    "github.com/walletera/eventskit/rabbitmq"
    slogwatcher "github.com/walletera/logs-watcher/slog"
    "go.mongodb.org/mongo-driver/v2/mongo"
    "go.mongodb.org/mongo-driver/v2/mongo/options"
    "go.uber.org/zap"
    "go.uber.org/zap/exp/zapslog"
    "go.uber.org/zap/zapcore"
)

const (
    appKey                    = "app"
    appCtxCancelFuncKey       = "appCtxCancelFuncKey"
    logsWatcherKey            = "logsWatcher"
    scenarioKey               = "scenario"
    logsWatcherWaitForTimeout = 10 * time.Second
    eventuallyTimeout         = 10 * time.Second
    publicApiHttpServerPort   = 8484
    mongodbURL                = "mongodb://localhost:27017/?directConnection=true"
    mongodbDatabase           = "food-delivery-e2e"
    currency                  = "JPY"
)

var mongodbClient *mongo.Client

// scenario keeps the ids created by the steps of one scenario.
type scenario struct {
    restaurantID string
    consumerID   string
    orderID      string
}

func beforeScenarioHook(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
    handler, err := newZapHandler()
    if err != nil {
        return ctx, err
    }
    logsWatcher := slogwatcher.NewWatcher(handler)
    ctx = context.WithValue(ctx, logsWatcherKey, logsWatcher)
    ctx = context.WithValue(ctx, scenarioKey, &scenario{})

    client, err := getMongodbClient()
    if err != nil {
        return ctx, err
    }

    // cleanup database before each scenario
    err = client.Database(mongodbDatabase).Drop(ctx)
    if err != nil {
        return ctx, err
    }

    return ctx, nil
}

func afterScenarioHook(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
    logsWatcher := logsWatcherFromCtx(ctx)

    appFromCtx(ctx).Stop(ctx)
    foundLogEntry := logsWatcher.WaitFor("food-delivery stopped", logsWatcherWaitForTimeout)
    if !foundLogEntry {
        return ctx, fmt.Errorf("app termination failed (didn't find expected log entry)")
    }
    if cancel, ok := ctx.Value(appCtxCancelFuncKey).(context.CancelFunc); ok {
        cancel()
    }

    err = logsWatcher.Stop()
    if err != nil {
        return ctx, fmt.Errorf("failed stopping the logsWatcher: %w", err)
    }

    return ctx, nil
}

func initializeCommonSteps(ctx *godog.ScenarioContext) {
    ctx.Before(beforeScenarioHook)
    ctx.Given(`^a running food-delivery$`, aRunningFoodDelivery)
    ctx.Given(`^a restaurant "([^"]*)" with the menu:$`, aRestaurantWithTheMenu)
    ctx.Given(`^a consumer with an order limit of (\d+) and a credit limit of (\d+)$`, aConsumerWithLimits)
    ctx.When(`^the consumer orders:$`, theConsumerOrders)
    ctx.Then(`^the food-delivery produces the following log:$`, theFoodDeliveryProducesTheFollowingLog)
    ctx.Then(`^the order state becomes (\w+)$`, theOrderStateBecomes)
    ctx.Then(`^the order total is (\d+)$`, theOrderTotalIs)
    ctx.Then(`^the kitchen ticket state becomes (\w+)$`, theKitchenTicketStateBecomes)
    ctx.Then(`^the order history shows the order (\w+)$`, theOrderHistoryShowsTheOrder)
    ctx.After(afterScenarioHook)
}

func aRunningFoodDelivery(ctx context.Context) (context.Context, error) {
    logHandler := logsWatcherFromCtx(ctx).DecoratedHandler()

    appCtx, appCtxCancelFunc := context.WithCancel(ctx)

    foodDeliveryApp, err := app.NewApp(
        app.WithPublicAPIConfig(app.PublicAPIConfig{
            PublicAPIHttpServerPort: publicApiHttpServerPort,
        }),
        app.WithStorage(app.StorageMongoDB),
        app.WithMongoDBURL(mongodbURL),
        app.WithMongoDBDatabase(mongodbDatabase),
        app.WithTransport(app.TransportRabbitMQ),
        app.WithRabbitmqHost(rabbitmq.DefaultHost),
        app.WithRabbitmqPort(rabbitmq.DefaultPort),
        app.WithRabbitmqUser(rabbitmq.DefaultUser),
        app.WithRabbitmqPassword(rabbitmq.DefaultPassword),
        app.WithRelayConfig(app.RelayConfig{PollInterval: 50 * time.Millisecond}),
        app.WithCourierSeed(1),
        app.WithLogHandler(logHandler),
    )
    if err != nil {
        appCtxCancelFunc()
        return ctx, fmt.Errorf("failed initializing food-delivery: %w", err)
    }

    err = foodDeliveryApp.Run(appCtx)
    if err != nil {
        appCtxCancelFunc()
        return ctx, fmt.Errorf("failed running food-delivery: %w", err)
    }

    ctx = context.WithValue(ctx, appKey, foodDeliveryApp)
    ctx = context.WithValue(ctx, appCtxCancelFuncKey, appCtxCancelFunc)

    foundLogEntry := logsWatcherFromCtx(ctx).WaitFor("food-delivery started", logsWatcherWaitForTimeout)
    if !foundLogEntry {
        return ctx, fmt.Errorf("food-delivery startup failed (didn't find expected log entry)")
    }

    return ctx, eventually(func() (bool, error) {
        status, _, err := doRequest(ctx, http.MethodGet, "/health", nil)
        return err == nil && status == http.StatusOK, nil
    })
}

func aRestaurantWithTheMenu(ctx context.Context, name string, menu *godog.Table) (context.Context, error) {
    menuItems := make([]map[string]any, 0, len(menu.Rows))
    for _, row := range menu.Rows[1:] {
        price, err := strconv.ParseInt(row.Cells[2].Value, 10, 64)
        if err != nil {
            return ctx, fmt.Errorf("invalid price %q: %w", row.Cells[2].Value, err)
        }
        menuItems = append(menuItems, map[string]any{
            "menu_id":   row.Cells[0].Value,
            "menu_name": row.Cells[1].Value,
            "price":     money(price),
        })
    }
    var created public.RestaurantResponse
    err := post(ctx, "/restaurants", map[string]any{
        "name":       name,
        "address":    address("1 Main Street", "94611"),
        "menu_items": menuItems,
    }, http.StatusCreated, &created)
    if err != nil {
        return ctx, err
    }
    scenarioFromCtx(ctx).restaurantID = created.ID
    return ctx, nil
}

func aConsumerWithLimits(ctx context.Context, orderLimit int64, creditLimit int64) (context.Context, error) {
    var consumer public.ConsumerResponse
    err := post(ctx, "/consumers", map[string]any{
        "name":        map[string]string{"first_name": "John", "last_name": "Doe"},
        "order_limit": money(orderLimit),
    }, http.StatusCreated, &consumer)
    if err != nil {
        return ctx, err
    }
    err = post(ctx, "/accounts", map[string]any{
        "consumer_id":  consumer.ID,
        "card":         map[string]any{"last4": "4242", "expiry_year": 2099, "expiry_month": 12},
        "credit_limit": money(creditLimit),
    }, http.StatusCreated, nil)
    if err != nil {
        return ctx, err
    }
    scenarioFromCtx(ctx).consumerID = consumer.ID
    return ctx, nil
}

// theConsumerOrders retries while the order service has no replica of the
// restaurant yet.
func theConsumerOrders(ctx context.Context, items *godog.Table) (context.Context, error) {
    s := scenarioFromCtx(ctx)
    lineItems := make([]map[string]any, 0, len(items.Rows))
    for _, row := range items.Rows[1:] {
        quantity, err := strconv.Atoi(row.Cells[1].Value)
        if err != nil {
            return ctx, fmt.Errorf("invalid quantity %q: %w", row.Cells[1].Value, err)
        }
        lineItems = append(lineItems, map[string]any{"menu_id": row.Cells[0].Value, "quantity": quantity})
    }
    request := map[string]any{
        "consumer_id":      s.consumerID,
        "restaurant_id":    s.restaurantID,
        "line_items":       lineItems,
        "delivery_time":    time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339),
        "delivery_address": address("9 Amazing View", "94612"),
    }
    var created public.OrderResponse
    err := eventually(func() (bool, error) {
        status, payload, err := doRequest(ctx, http.MethodPost, "/orders", request)
        if err != nil {
            return false, err
        }
        switch status {
        case http.StatusCreated:
            return true, json.Unmarshal(payload, &created)
        case http.StatusServiceUnavailable:
            return false, nil
        default:
            return false, fmt.Errorf("creating order answered %d: %s", status, payload)
        }
    })
    if err != nil {
        return ctx, err
    }
    s.orderID = created.ID
    return ctx, nil
}

func theFoodDeliveryProducesTheFollowingLog(ctx context.Context, logMsg string) (context.Context, error) {
    logsWatcher := logsWatcherFromCtx(ctx)
    foundLogEntry := logsWatcher.WaitFor(logMsg, logsWatcherWaitForTimeout)
    if !foundLogEntry {
        return ctx, fmt.Errorf("didn't find expected log entry %q", logMsg)
    }
    return ctx, nil
}

func theOrderStateBecomes(ctx context.Context, state string) (context.Context, error) {
    return ctx, eventuallyEqual(ctx, "/orders/"+scenarioFromCtx(ctx).orderID, state, func(payload []byte) (string, error) {
        var order public.OrderResponse
        err := json.Unmarshal(payload, &order)
        return order.State, err
    })
}

func theOrderTotalIs(ctx context.Context, total int64) (context.Context, error) {
    var order public.OrderResponse
    err := get(ctx, "/orders/"+scenarioFromCtx(ctx).orderID, &order)
    if err != nil {
        return ctx, err
    }
    if order.OrderTotal.Value != total {
        return ctx, fmt.Errorf("expected order total to be %d, but got %d", total, order.OrderTotal.Value)
    }
    return ctx, nil
}

func theKitchenTicketStateBecomes(ctx context.Context, state string) (context.Context, error) {
    return ctx, eventuallyEqual(ctx, "/tickets/"+scenarioFromCtx(ctx).orderID, state, func(payload []byte) (string, error) {
        var ticket public.TicketResponse
        err := json.Unmarshal(payload, &ticket)
        return ticket.State, err
    })
}

type historyView struct {
    State    string `json:"state"`
    Delivery *struct {
        State string `json:"state"`
    } `json:"delivery"`
}

func theOrderHistoryShowsTheOrder(ctx context.Context, state string) (context.Context, error) {
    return ctx, eventuallyEqual(ctx, "/history/orders/"+scenarioFromCtx(ctx).orderID, state, func(payload []byte) (string, error) {
        var view historyView
        err := json.Unmarshal(payload, &view)
        return view.State, err
    })
}

func money(value int64) map[string]any {
    if value == 0 {
        return map[string]any{"value": 0, "currency": ""}
    }
    return map[string]any{"value": value, "currency": currency}
}

func address(street string, zip string) map[string]string {
    return map[string]string{"street1": street, "street2": "", "city": "Oakland", "state": "CA", "zip": zip}
}

func doRequest(ctx context.Context, method string, path string, body any) (int, []byte, error) {
    var reader io.Reader
    if body != nil {
        raw, err := json.Marshal(body)
        if err != nil {
            return 0, nil, err
        }
        reader = bytes.NewReader(raw)
    }
    url := fmt.Sprintf("http://127.0.0.1:%d%s", publicApiHttpServerPort, path)
    request, err := http.NewRequestWithContext(ctx, method, url, reader)
    if err != nil {
        return 0, nil, fmt.Errorf("failed to create request: %w", err)
    }
    request.Header.Set("Content-Type", "application/json")

    resp, err := http.DefaultClient.Do(request)
    if err != nil {
        return 0, nil, fmt.Errorf("failed to send request: %w", err)
    }
    defer resp.Body.Close()
    payload, err := io.ReadAll(resp.Body)
    if err != nil {
        return 0, nil, fmt.Errorf("failed to read response: %w", err)
    }
    return resp.StatusCode, payload, nil
}

func post(ctx context.Context, path string, body any, expectedStatus int, target any) error {
    status, payload, err := doRequest(ctx, http.MethodPost, path, body)
    if err != nil {
        return err
    }
    if status != expectedStatus {
        return fmt.Errorf("POST %s: expected status code %d, but got %d: %s", path, expectedStatus, status, payload)
    }
    if target == nil {
        return nil
    }
    return json.Unmarshal(payload, target)
}

func get(ctx context.Context, path string, target any) error {
    status, payload, err := doRequest(ctx, http.MethodGet, path, nil)
    if err != nil {
        return err
    }
    if status != http.StatusOK {
        return fmt.Errorf("GET %s: expected status code 200, but got %d: %s", path, status, payload)
    }
    return json.Unmarshal(payload, target)
}

// eventually polls condition until it holds, fails or times out.
func eventually(condition func() (bool, error)) error {
    deadline := time.Now().Add(eventuallyTimeout)
    for {
        done, err := condition()
        if err != nil {
            return err
        }
        if done {
            return nil
        }
        if time.Now().After(deadline) {
            return fmt.Errorf("condition not met after %s", eventuallyTimeout)
        }
        time.Sleep(100 * time.Millisecond)
    }
}

func eventuallyEqual(ctx context.Context, path string, expected string, extract func(payload []byte) (string, error)) error {
    var last string
    err := eventually(func() (bool, error) {
        status, payload, err := doRequest(ctx, http.MethodGet, path, nil)
        if err != nil {
            return false, err
        }
        if status != http.StatusOK {
            last = fmt.Sprintf("status %d", status)
            return false, nil
        }
        last, err = extract(payload)
        return last == expected, err
    })
    if err != nil {
        return fmt.Errorf("GET %s: expected %s, last seen %s: %w", path, expected, last, err)
    }
    return nil
}

func logsWatcherFromCtx(ctx context.Context) *slogwatcher.Watcher {
    value := ctx.Value(logsWatcherKey)
    if value == nil {
        panic("logs watcher not found in context")
    }
    watcher, ok := value.(*slogwatcher.Watcher)
    if !ok {
        panic("logs watcher has invalid type")
    }
    return watcher
}

func appFromCtx(ctx context.Context) *app.App {
    value := ctx.Value(appKey)
    if value == nil {
        panic("food-delivery app not found in context")
    }
    foodDeliveryApp, ok := value.(*app.App)
    if !ok {
        panic("food-delivery app has invalid type")
    }
    return foodDeliveryApp
}

func scenarioFromCtx(ctx context.Context) *scenario {
    value, ok := ctx.Value(scenarioKey).(*scenario)
    if !ok {
        panic("scenario not found in context")
    }
    return value
}

func newZapHandler() (slog.Handler, error) {
    encoderConfig := zap.NewProductionEncoderConfig()
    encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
    zapConfig := zap.Config{
        Level:             zap.NewAtomicLevelAt(zap.DebugLevel),
        Development:       false,
        DisableStacktrace: true,
        Encoding:          "json",
        EncoderConfig:     encoderConfig,
        OutputPaths:       []string{"stderr"},
        ErrorOutputPaths:  []string{"stderr"},
    }
    zapLogger, err := zapConfig.Build()
    if err != nil {
        return nil, err
    }
    return zapslog.NewHandler(zapLogger.Core()), nil
}

func getMongodbClient() (*mongo.Client, error) {
    if mongodbClient != nil {
        return mongodbClient, nil
    }
    client, err := mongo.Connect(options.Client().ApplyURI(mongodbURL))
    if err != nil {
        return nil, err
    }
    mongodbClient = client
    return mongodbClient, nil
}
