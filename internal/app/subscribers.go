package app

import (
    "context"
    "fmt"
    "log/slog"

    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/walletera/eventskit/messages"
    "github.com/walletera/werrors"
)

// subscriber is one service reading the event stream through its own queue.
type subscriber struct {
    name        string
    routingKeys []string
    handler     events.Handler
}

func (app *App) subscribers() []subscriber {
    c := app.components
    return []subscriber{
        {
            name:        "order-service",
            routingKeys: []string{"restaurant.*"},
            handler:     c.orderEvents,
        },
        {
            name:        "kitchen-service",
            routingKeys: []string{"restaurant.*"},
            handler:     c.kitchenEvents,
        },
        {
            name: "delivery-service",
            routingKeys: []string{
                "restaurant.*",
                "order.ordercreated",
                "ticket.ticketaccepted",
                "ticket.ticketcancelled",
            },
            handler: c.deliveryEvents,
        },
        {
            name:        "order-history-service",
            routingKeys: []string{"order.*", "delivery.*"},
            handler:     c.orderHistory,
        },
        {
            name: "saga-orchestrator",
            routingKeys: []string{
                "order.ordercreated",
                "order.cancelordersagarequested",
                "order.reviseordersagarequested",
            },
            handler: c.sagaTriggers,
        },
    }
}

func (app *App) startProcessors(ctx context.Context, transport *transport) error {
    for _, sub := range app.subscribers() {
        consumer, err := transport.newConsumer("food-delivery."+sub.name, sub.routingKeys...)
        if err != nil {
            return fmt.Errorf("failed creating consumer for %s: %w", sub.name, err)
        }
        logger := app.logger.With(logattr.Component(sub.name + ".MessageProcessor"))
        processor := messages.NewProcessor[events.Handler](
            consumer,
            events.NewDeserializer(logger),
            sub.handler,
            withErrorCallback(logger),
        )
        err = processor.Start(ctx)
        if err != nil {
            return fmt.Errorf("error starting %s message processor: %w", sub.name, err)
        }
    }
    return nil
}

func withErrorCallback(logger *slog.Logger) messages.ProcessorOpt {
    return messages.WithErrorCallback(func(wError werrors.WError) {
        logger.Error(
            "failed processing message",
            logattr.Error(wError.Message()))
    })
}
