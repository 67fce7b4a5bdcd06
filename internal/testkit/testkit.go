// Package testkit wires every service on in-memory stores for tests.
package testkit

import (
    "context"
    "io"
    "log/slog"
    "testing"
    "time"

    "github.com/walletera/food-delivery/internal/adapters/memory"
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
    "github.com/walletera/food-delivery/internal/projection"

    "github.com/stretchr/testify/require"
)

const CourierSeed = 42

var Currency = shared.DefaultCurrency

// Kit is a complete food delivery system in one process. Events are not
// relayed automatically; tests deliver them with Deliver.
type Kit struct {
    Events   *memory.EventStore
    Records  *memory.RecordStore
    Replicas *memory.ReplicaStore
    Recorder *eventstore.Recorder
    Logger   *slog.Logger

    Restaurants  *restaurant.Service
    Orders       *order.Service
    Consumers    *consumer.Service
    Kitchen      *kitchen.Service
    Accounting   *accounting.Service
    Deliveries   *delivery.Service
    OrderHistory *orderhistory.Service
    Participants *dispatch.Participants

    OrderEvents    events.Handler
    KitchenEvents  events.Handler
    DeliveryEvents events.Handler
}

type Opt func(k *kitConfig)

type kitConfig struct {
    orderMinimum shared.Money
}

func WithOrderMinimum(minimum shared.Money) Opt {
    return func(k *kitConfig) { k.orderMinimum = minimum }
}

func New(t *testing.T, opts ...Opt) *Kit {
    t.Helper()
    config := kitConfig{}
    for _, opt := range opts {
        opt(&config)
    }

    k := &Kit{
        Events:   memory.NewEventStore(),
        Replicas: memory.NewReplicaStore(),
        Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
    }
    k.Records = memory.NewRecordStore(k.Events)
    k.Recorder = eventstore.NewRecorder(k.Events, eventstore.WithVoids(k.Events))

    orderRestaurants := restaurant.NewReplicas(k.Replicas, "order", k.Logger)
    kitchenRestaurants := restaurant.NewReplicas(k.Replicas, "kitchen", k.Logger)
    deliveryRestaurants := restaurant.NewReplicas(k.Replicas, "delivery", k.Logger)

    k.Restaurants = restaurant.NewService(k.Records, k.Recorder, k.Logger)
    k.Orders = order.NewService(k.Records, k.Recorder, orderRestaurants, k.Logger, order.WithOrderMinimum(config.orderMinimum))
    k.Consumers = consumer.NewService(k.Records, k.Recorder, k.Logger)
    k.Kitchen = kitchen.NewService(k.Records, k.Recorder, kitchenRestaurants, k.Logger)
    k.Accounting = accounting.NewService(k.Records, k.Recorder, k.Logger)
    k.Deliveries = delivery.NewService(k.Records, k.Recorder, deliveryRestaurants, k.Logger,
        delivery.WithCourierChooser(delivery.NewRandomChooser(CourierSeed)),
    )
    k.OrderHistory = orderhistory.NewService(k.Replicas, k.Logger)
    k.Participants = dispatch.NewParticipants(k.Orders, k.Consumers, k.Kitchen, k.Accounting)

    k.OrderEvents = order.NewEventsHandler(orderRestaurants)
    k.KitchenEvents = kitchen.NewEventsHandler(kitchenRestaurants)
    k.DeliveryEvents = delivery.NewEventsHandler(
        k.Deliveries,
        deliveryRestaurants,
        projection.NewInbox(k.Replicas, "delivery", k.Logger),
        k.Logger,
    )
    return k
}

// Menu is the menu of the restaurant created by CreateRestaurant.
func Menu() []shared.MenuItem {
    return []shared.MenuItem{
        {MenuID: "1", MenuName: "Chicken Vindaloo", Price: shared.NewMoney(500, Currency)},
        {MenuID: "2", MenuName: "Lamb 65", Price: shared.NewMoney(800, Currency)},
        {MenuID: "3", MenuName: "Garlic Naan", Price: shared.NewMoney(1700, Currency)},
    }
}

// LineItems orders 2x1, 3x2 and 1x3 from Menu, totalling 5100.
func LineItems() []order.LineItemRequest {
    return []order.LineItemRequest{
        {MenuID: "1", Quantity: 2},
        {MenuID: "2", Quantity: 3},
        {MenuID: "3", Quantity: 1},
    }
}

func DeliveryInformation() shared.DeliveryInformation {
    return shared.DeliveryInformation{
        DeliveryTime:    shared.NewTimestamp(time.Date(2030, 1, 1, 19, 0, 0, 0, time.UTC)),
        DeliveryAddress: shared.Address{Street1: "9 Amazing View", City: "Oakland", State: "CA", Zip: "94612"},
    }
}

// CreateRestaurant creates the restaurant and replicates it to every service
// keeping a restaurant replica.
func (k *Kit) CreateRestaurant(t *testing.T) *restaurant.Restaurant {
    t.Helper()
    created, err := k.Restaurants.CreateRestaurant(
        context.Background(),
        "Ajanta",
        shared.Address{Street1: "1 Main Street", City: "Oakland", State: "CA", Zip: "94611"},
        Menu(),
    )
    require.NoError(t, err)
    k.Deliver(t, events.AggregateRestaurant, k.OrderEvents, k.KitchenEvents, k.DeliveryEvents)
    return created
}

// CreateConsumer creates a consumer with its account. Zero limits mean no
// limit.
func (k *Kit) CreateConsumer(t *testing.T, orderLimit int64, creditLimit int64) string {
    t.Helper()
    ctx := context.Background()
    created, err := k.Consumers.CreateConsumer(ctx, shared.PersonName{FirstName: "John", LastName: "Doe"}, money(orderLimit))
    require.NoError(t, err)
    _, err = k.Accounting.CreateAccount(ctx, created.ID, accounting.Card{Last4: "4242", ExpiryYear: 2099, ExpiryMonth: 12}, money(creditLimit))
    require.NoError(t, err)
    return created.ID
}

func money(value int64) shared.Money {
    if value == 0 {
        return shared.Money{}
    }
    return shared.NewMoney(value, Currency)
}

// Deliver hands every envelope of the stream to each handler, in sequence
// order. Handlers are idempotent so the whole stream can be delivered again.
func (k *Kit) Deliver(t *testing.T, aggregateType string, handlers ...events.Handler) {
    t.Helper()
    envelopes, err := k.Events.ReadStream(context.Background(), aggregateType, 0, 0)
    require.NoError(t, err)
    for _, envelope := range envelopes {
        event, err := events.Wrap(envelope)
        require.NoError(t, err)
        for _, handler := range handlers {
            if wErr := event.Accept(context.Background(), handler); wErr != nil {
                require.NoError(t, wErr, "handling %s", envelope.ID())
            }
        }
    }
}

// Last returns the newest envelope of the given type for one aggregate.
func (k *Kit) Last(t *testing.T, aggregateType string, aggregateID string, eventType string) eventstore.Envelope {
    t.Helper()
    envelopes, err := k.Events.ReadAggregate(context.Background(), aggregateType, aggregateID)
    require.NoError(t, err)
    for i := len(envelopes) - 1; i >= 0; i-- {
        if envelopes[i].EventType == eventType {
            return envelopes[i]
        }
    }
    require.Failf(t, "envelope not found", "%s %s has no %s", aggregateType, aggregateID, eventType)
    return eventstore.Envelope{}
}

// EventTypes lists the event types recorded for one aggregate, oldest first.
func (k *Kit) EventTypes(t *testing.T, aggregateType string, aggregateID string) []string {
    t.Helper()
    envelopes, err := k.Events.ReadAggregate(context.Background(), aggregateType, aggregateID)
    require.NoError(t, err)
    eventTypes := make([]string, 0, len(envelopes))
    for _, envelope := range envelopes {
        eventTypes = append(eventTypes, envelope.EventType)
    }
    return eventTypes
}
