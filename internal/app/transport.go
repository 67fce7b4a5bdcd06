package app

import (
    "fmt"

    "github.com/walletera/food-delivery/internal/adapters/localbus"
    "github.com/walletera/food-delivery/pkg/logattr"

    kitevents "github.com/walletera/eventskit/events"
    "github.com/walletera/eventskit/messages"
    "github.com/walletera/eventskit/rabbitmq"
)

const (
    RabbitMQExchangeName = "food-delivery.events"
    RabbitMQExchangeType = rabbitmq.ExchangeTypeTopic
    RabbitMQRelayQueue   = "food-delivery.relay"
)

// transport is the broker side of the app: the publisher the relay writes
// to and a factory of queue consumers for the subscribers.
type transport struct {
    publisher   kitevents.Publisher
    newConsumer func(queueName string, routingKeys ...string) (messages.Consumer, error)
    close       func() error
}

func (app *App) openTransport() (*transport, error) {
    switch app.transport {
    case TransportLocal, "":
        bus := localbus.NewBus(app.logger.With(logattr.Component("localbus.Bus")), app.busOpts...)
        return &transport{
            publisher: bus,
            newConsumer: func(queueName string, routingKeys ...string) (messages.Consumer, error) {
                return bus.Subscribe(queueName, routingKeys...), nil
            },
            close: func() error { return nil },
        }, nil
    case TransportRabbitMQ:
        publisher, err := app.newRabbitMQClient(RabbitMQRelayQueue)
        if err != nil {
            return nil, fmt.Errorf("creating rabbitmq publisher: %w", err)
        }
        return &transport{
            publisher: publisher,
            newConsumer: func(queueName string, routingKeys ...string) (messages.Consumer, error) {
                return app.newRabbitMQClient(queueName, routingKeys...)
            },
            close: publisher.Close,
        }, nil
    default:
        return nil, fmt.Errorf("unsupported transport %q", app.transport)
    }
}

func (app *App) newRabbitMQClient(queueName string, routingKeys ...string) (*rabbitmq.Client, error) {
    client, err := rabbitmq.NewClient(
        rabbitmq.WithHost(app.rabbitmqHost),
        rabbitmq.WithPort(uint(app.rabbitmqPort)),
        rabbitmq.WithUser(app.rabbitmqUser),
        rabbitmq.WithPassword(app.rabbitmqPassword),
        rabbitmq.WithExchangeName(RabbitMQExchangeName),
        rabbitmq.WithExchangeType(RabbitMQExchangeType),
        rabbitmq.WithConsumerRoutingKeys(routingKeys...),
        rabbitmq.WithQueueName(queueName),
    )
    if err != nil {
        return nil, fmt.Errorf("creating rabbitmq client: %w", err)
    }
    return client, nil
}
