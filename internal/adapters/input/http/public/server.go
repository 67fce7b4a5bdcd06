package public

import (
    "context"
    "crypto/rsa"
    "log/slog"
    "net/http"

    "github.com/walletera/food-delivery/internal/dispatch"
    "github.com/walletera/food-delivery/internal/domain/accounting"
    "github.com/walletera/food-delivery/internal/domain/consumer"
    "github.com/walletera/food-delivery/internal/domain/delivery"
    "github.com/walletera/food-delivery/internal/domain/kitchen"
    "github.com/walletera/food-delivery/internal/domain/order"
    "github.com/walletera/food-delivery/internal/domain/orderhistory"
    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/saga"

    "github.com/danielgtaylor/huma/v2"
    "github.com/danielgtaylor/huma/v2/adapters/humachi"
    "github.com/go-chi/chi/v5"
)

// Services groups what the API exposes. Nil services leave their routes
// unregistered.
type Services struct {
    Restaurants  *restaurant.Service
    Consumers    *consumer.Service
    Accounting   *accounting.Service
    Orders       *order.Service
    Kitchen      *kitchen.Service
    Deliveries   *delivery.Service
    OrderHistory *orderhistory.Service
    Sagas        *saga.Orchestrator
    // SagaParticipants answers saga step invocations on /saga-commands.
    SagaParticipants dispatch.Handler
}

type Server struct {
    services  Services
    publicKey *rsa.PublicKey
    logger    *slog.Logger
}

// NewServer builds the public API. A nil publicKey disables authentication.
func NewServer(services Services, publicKey *rsa.PublicKey, logger *slog.Logger) http.Handler {
    server := &Server{
        services:  services,
        publicKey: publicKey,
        logger:    logger,
    }

    huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
        for _, err := range errs {
            if err != nil {
                msg += ": " + err.Error()
            }
        }
        return newAPIError(status, codeForStatus(status), msg)
    }

    router := chi.NewRouter()
    router.Use(server.authMiddleware)
    api := humachi.New(router, huma.DefaultConfig("Food Delivery API", "1.0.0"))

    registerHealth(api)
    if services.Restaurants != nil {
        server.registerRestaurants(api)
    }
    if services.Consumers != nil && services.Accounting != nil {
        server.registerConsumers(api)
    }
    if services.Orders != nil {
        server.registerOrders(api)
    }
    if services.Kitchen != nil {
        server.registerTickets(api)
    }
    if services.Deliveries != nil {
        server.registerDeliveries(api)
    }
    if services.OrderHistory != nil {
        server.registerOrderHistory(api)
    }
    if services.Sagas != nil {
        server.registerSagas(api)
    }
    if services.SagaParticipants != nil {
        server.registerSagaCommands(api)
    }
    return router
}

func registerHealth(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID: "health",
        Method:      http.MethodGet,
        Path:        "/health",
        Summary:     "Health check",
    }, func(ctx context.Context, _ *struct{}) (*struct {
        Body map[string]string `json:"body"`
    }, error) {
        return &struct {
            Body map[string]string `json:"body"`
        }{Body: map[string]string{"status": "ok"}}, nil
    })
}
