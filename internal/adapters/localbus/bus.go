package localbus

import (
    "context"
    "fmt"
    "log/slog"
    "strings"
    "sync"
    "time"

    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/walletera/eventskit/events"
    "github.com/walletera/eventskit/messages"
)

const (
    defaultRedeliveryDelay = 100 * time.Millisecond
    defaultMaxDeliveries   = 50
    queueSize              = 1024
)

var _ events.Publisher = (*Bus)(nil)

// Bus is an in-process topic exchange. Every subscription gets a copy of the
// messages whose routing key matches one of its binding patterns, using the
// amqp topic syntax (* matches one word, # zero or more).
type Bus struct {
    mu              sync.RWMutex
    subscriptions   []*Subscription
    redeliveryDelay time.Duration
    maxDeliveries   int
    logger          *slog.Logger
}

type BusOpt func(b *Bus)

func WithRedeliveryDelay(delay time.Duration) BusOpt {
    return func(b *Bus) { b.redeliveryDelay = delay }
}

func WithMaxDeliveries(maxDeliveries int) BusOpt {
    return func(b *Bus) { b.maxDeliveries = maxDeliveries }
}

func NewBus(logger *slog.Logger, opts ...BusOpt) *Bus {
    bus := &Bus{
        redeliveryDelay: defaultRedeliveryDelay,
        maxDeliveries:   defaultMaxDeliveries,
        logger:          logger,
    }
    for _, opt := range opts {
        opt(bus)
    }
    return bus
}

// Subscribe binds a new queue to the bus.
func (b *Bus) Subscribe(queueName string, bindings ...string) *Subscription {
    subscription := &Subscription{
        bus:      b,
        name:     queueName,
        bindings: bindings,
        ch:       make(chan messages.Message, queueSize),
        done:     make(chan struct{}),
    }
    b.mu.Lock()
    b.subscriptions = append(b.subscriptions, subscription)
    b.mu.Unlock()
    return subscription
}

func (b *Bus) Publish(ctx context.Context, data events.EventData, info events.RoutingInfo) error {
    payload, err := data.Serialize()
    if err != nil {
        return fmt.Errorf("failed serializing %s: %w", data.Type(), err)
    }
    b.mu.RLock()
    defer b.mu.RUnlock()
    for _, subscription := range b.subscriptions {
        if subscription.matches(info.RoutingKey) {
            subscription.deliver(ctx, payload, 1)
        }
    }
    return nil
}

var _ messages.Consumer = (*Subscription)(nil)

type Subscription struct {
    bus       *Bus
    name      string
    bindings  []string
    ch        chan messages.Message
    done      chan struct{}
    closeOnce sync.Once
}

func (s *Subscription) Consume() (<-chan messages.Message, error) {
    return s.ch, nil
}

func (s *Subscription) Close() error {
    s.closeOnce.Do(func() { close(s.done) })
    return nil
}

func (s *Subscription) matches(routingKey string) bool {
    for _, binding := range s.bindings {
        if topicMatches(strings.Split(binding, "."), strings.Split(routingKey, ".")) {
            return true
        }
    }
    return false
}

func (s *Subscription) deliver(ctx context.Context, payload []byte, delivery int) {
    message := messages.NewMessage(payload, &acknowledger{
        subscription: s,
        payload:      payload,
        delivery:     delivery,
    })
    select {
    case s.ch <- message:
    case <-s.done:
    case <-ctx.Done():
    }
}

type acknowledger struct {
    subscription *Subscription
    payload      []byte
    delivery     int
}

func (a *acknowledger) Ack() error {
    return nil
}

// Nack schedules a redelivery when asked to requeue, up to the bus limit.
func (a *acknowledger) Nack(opts messages.NackOpts) error {
    bus := a.subscription.bus
    logger := bus.logger.With(logattr.Component("localbus." + a.subscription.name))
    if !opts.Requeue || a.delivery >= bus.maxDeliveries {
        logger.Error(
            "message dropped",
            logattr.Error(opts.ErrorMessage),
        )
        return nil
    }
    time.AfterFunc(bus.redeliveryDelay, func() {
        a.subscription.deliver(context.Background(), a.payload, a.delivery+1)
    })
    return nil
}

func topicMatches(pattern []string, words []string) bool {
    if len(pattern) == 0 {
        return len(words) == 0
    }
    switch pattern[0] {
    case "#":
        for skip := 0; skip <= len(words); skip++ {
            if topicMatches(pattern[1:], words[skip:]) {
                return true
            }
        }
        return false
    case "*":
        return len(words) > 0 && topicMatches(pattern[1:], words[1:])
    default:
        return len(words) > 0 && pattern[0] == words[0] && topicMatches(pattern[1:], words[1:])
    }
}
