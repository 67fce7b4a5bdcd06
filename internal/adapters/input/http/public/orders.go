package public

import (
    "context"
    "net/http"

    "github.com/walletera/food-delivery/internal/domain/order"
    "github.com/walletera/food-delivery/internal/domain/orderhistory"
    "github.com/walletera/food-delivery/internal/domain/shared"

    "github.com/danielgtaylor/huma/v2"
)

type orderOutput struct {
    Body OrderResponse `json:"body"`
}

func (s *Server) orderOutput(o *order.Order, operation string) (*orderOutput, error) {
    response, err := orderResponse(o)
    if err != nil {
        return nil, s.handleError(err, operation)
    }
    return &orderOutput{Body: response}, nil
}

func (s *Server) registerOrders(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID:   "create-order",
        Method:        http.MethodPost,
        Path:          "/orders",
        Summary:       "Place an order",
        Description:   "The order is created APPROVAL_PENDING; the create order saga approves or rejects it.",
        DefaultStatus: http.StatusCreated,
    }, func(ctx context.Context, input *struct {
        Body CreateOrderRequest `json:"body"`
    }) (*orderOutput, error) {
        created, err := s.services.Orders.CreateOrder(
            ctx,
            input.Body.ConsumerID,
            input.Body.RestaurantID,
            input.Body.LineItems,
            shared.DeliveryInformation{
                DeliveryTime:    shared.NewTimestamp(input.Body.DeliveryTime),
                DeliveryAddress: input.Body.DeliveryAddress,
            },
        )
        if err != nil {
            return nil, s.handleError(err, "create-order")
        }
        return s.orderOutput(created, "create-order")
    })

    huma.Register(api, huma.Operation{
        OperationID: "get-order",
        Method:      http.MethodGet,
        Path:        "/orders/{id}",
        Summary:     "Get an order",
    }, func(ctx context.Context, input *idPath) (*orderOutput, error) {
        found, err := s.services.Orders.FindByID(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "get-order")
        }
        return s.orderOutput(found, "get-order")
    })

    huma.Register(api, huma.Operation{
        OperationID:   "cancel-order",
        Method:        http.MethodPost,
        Path:          "/orders/{id}/cancel",
        Summary:       "Request the cancellation of an approved order",
        DefaultStatus: http.StatusAccepted,
    }, func(ctx context.Context, input *idPath) (*orderOutput, error) {
        requested, err := s.services.Orders.RequestCancel(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "cancel-order")
        }
        return s.orderOutput(requested, "cancel-order")
    })

    huma.Register(api, huma.Operation{
        OperationID:   "revise-order",
        Method:        http.MethodPost,
        Path:          "/orders/{id}/revise",
        Summary:       "Request a revision of an approved order",
        DefaultStatus: http.StatusAccepted,
    }, func(ctx context.Context, input *struct {
        ID   string             `path:"id"`
        Body ReviseOrderRequest `json:"body"`
    }) (*orderOutput, error) {
        requested, err := s.services.Orders.RequestRevision(ctx, input.ID, input.Body.revision())
        if err != nil {
            return nil, s.handleError(err, "revise-order")
        }
        return s.orderOutput(requested, "revise-order")
    })
}

func (s *Server) registerOrderHistory(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID: "get-order-history",
        Method:      http.MethodGet,
        Path:        "/history/orders/{id}",
        Summary:     "Get the history view of an order",
    }, func(ctx context.Context, input *idPath) (*struct {
        Body orderhistory.View `json:"body"`
    }, error) {
        view, err := s.services.OrderHistory.GetOrder(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "get-order-history")
        }
        return &struct {
            Body orderhistory.View `json:"body"`
        }{Body: view}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "list-order-history",
        Method:      http.MethodGet,
        Path:        "/history/orders",
        Summary:     "List the orders of a consumer",
    }, func(ctx context.Context, input *struct {
        ConsumerID string `query:"consumer_id" required:"true"`
    }) (*struct {
        Body []orderhistory.View `json:"body"`
    }, error) {
        views, err := s.services.OrderHistory.ListOrders(ctx, input.ConsumerID)
        if err != nil {
            return nil, s.handleError(err, "list-order-history")
        }
        if views == nil {
            views = []orderhistory.View{}
        }
        return &struct {
            Body []orderhistory.View `json:"body"`
        }{Body: views}, nil
    })
}
