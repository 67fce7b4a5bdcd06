package localbus

import (
    "context"
    "io"
    "log/slog"
    "strings"
    "testing"
    "time"

    "github.com/walletera/food-delivery/internal/eventstore"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "github.com/walletera/eventskit/events"
    "github.com/walletera/eventskit/messages"
)

type orderCreated struct {
    OrderID string `json:"order_id"`
}

func (orderCreated) EventType() string  { return "OrderCreated" }
func (orderCreated) SchemaVersion() int { return 1 }

func newBus(opts ...BusOpt) *Bus {
    return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func publish(t *testing.T, bus *Bus, aggregateType string, sequenceNumber uint64) {
    t.Helper()
    envelope, err := eventstore.NewEnvelope(aggregateType, "id-1", sequenceNumber, time.Now(), orderCreated{OrderID: "id-1"})
    require.NoError(t, err)
    err = bus.Publish(context.Background(), envelope, events.RoutingInfo{Topic: "food-delivery", RoutingKey: envelope.RoutingKey()})
    require.NoError(t, err)
}

func receive(t *testing.T, ch <-chan messages.Message) messages.Message {
    t.Helper()
    select {
    case message := <-ch:
        return message
    case <-time.After(2 * time.Second):
        require.FailNow(t, "no message received")
        return messages.Message{}
    }
}

func assertEmpty(t *testing.T, ch <-chan messages.Message, wait time.Duration) {
    t.Helper()
    select {
    case message := <-ch:
        assert.Failf(t, "unexpected message", "%s", message.Payload())
    case <-time.After(wait):
    }
}

func TestTopicMatches(t *testing.T) {
    tests := []struct {
        pattern    string
        routingKey string
        want       bool
    }{
        {"order.ordercreated", "order.ordercreated", true},
        {"order.*", "order.ordercreated", true},
        {"order.*", "ticket.ticketcreated", false},
        {"*.ordercreated", "order.ordercreated", true},
        {"order.#", "order.ordercreated", true},
        {"order.#", "order", true},
        {"#", "delivery.deliverypickedup", true},
        {"#.deliverypickedup", "delivery.deliverypickedup", true},
        {"order.*", "order", false},
        {"order.*.x", "order.ordercreated", false},
    }
    for _, tt := range tests {
        t.Run(tt.pattern+" "+tt.routingKey, func(t *testing.T) {
            got := topicMatches(strings.Split(tt.pattern, "."), strings.Split(tt.routingKey, "."))
            assert.Equal(t, tt.want, got)
        })
    }
}

func TestPublishFansOutToMatchingSubscriptions(t *testing.T) {
    bus := newBus()
    orders := bus.Subscribe("orders", "order.*")
    tickets := bus.Subscribe("tickets", "ticket.*")
    everything := bus.Subscribe("everything", "#")

    publish(t, bus, "ORDER", 1)

    ordersCh, err := orders.Consume()
    require.NoError(t, err)
    ticketsCh, err := tickets.Consume()
    require.NoError(t, err)
    everythingCh, err := everything.Consume()
    require.NoError(t, err)

    var envelope eventstore.Envelope
    require.NoError(t, envelope.UnmarshalJSON(receive(t, ordersCh).Payload()))
    assert.Equal(t, "ORDER", envelope.AggregateType)
    assert.Equal(t, uint64(1), envelope.SequenceNumber)
    receive(t, everythingCh)
    assertEmpty(t, ticketsCh, 50*time.Millisecond)
}

func TestNackRequeueRedelivers(t *testing.T) {
    bus := newBus(WithRedeliveryDelay(time.Millisecond), WithMaxDeliveries(3))
    subscription := bus.Subscribe("orders", "order.#")
    ch, err := subscription.Consume()
    require.NoError(t, err)

    publish(t, bus, "ORDER", 1)

    for i := 0; i < 3; i++ {
        message := receive(t, ch)
        require.NoError(t, message.Acknowledger().Nack(messages.NackOpts{Requeue: true, ErrorMessage: "not yet"}))
    }
    assertEmpty(t, ch, 50*time.Millisecond)
}

func TestNackWithoutRequeueDrops(t *testing.T) {
    bus := newBus(WithRedeliveryDelay(time.Millisecond))
    subscription := bus.Subscribe("orders", "order.#")
    ch, err := subscription.Consume()
    require.NoError(t, err)

    publish(t, bus, "ORDER", 1)
    message := receive(t, ch)
    require.NoError(t, message.Acknowledger().Nack(messages.NackOpts{Requeue: false, ErrorMessage: "unprocessable"}))
    assertEmpty(t, ch, 50*time.Millisecond)
}

func TestClosedSubscriptionDoesNotBlockPublishers(t *testing.T) {
    bus := newBus()
    subscription := bus.Subscribe("orders", "order.#")
    require.NoError(t, subscription.Close())
    require.NoError(t, subscription.Close())

    envelope, err := eventstore.NewEnvelope("ORDER", "id-1", 1, time.Now(), orderCreated{OrderID: "id-1"})
    require.NoError(t, err)
    done := make(chan struct{})
    go func() {
        defer close(done)
        for i := 0; i < queueSize+10; i++ {
            assert.NoError(t, bus.Publish(context.Background(), envelope, events.RoutingInfo{RoutingKey: envelope.RoutingKey()}))
        }
    }()
    select {
    case <-done:
    case <-time.After(5 * time.Second):
        require.FailNow(t, "publish blocked on a closed subscription")
    }
}
