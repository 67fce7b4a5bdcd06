package public

import (
    "context"
    "net/http"

    "github.com/danielgtaylor/huma/v2"
)

type deliveryOutput struct {
    Body DeliveryResponse `json:"body"`
}

type courierOutput struct {
    Body CourierResponse `json:"body"`
}

func (s *Server) registerTickets(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID: "get-ticket",
        Method:      http.MethodGet,
        Path:        "/tickets/{id}",
        Summary:     "Get a kitchen ticket",
    }, func(ctx context.Context, input *idPath) (*struct {
        Body TicketResponse `json:"body"`
    }, error) {
        ticket, err := s.services.Kitchen.FindByID(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "get-ticket")
        }
        return &struct {
            Body TicketResponse `json:"body"`
        }{Body: ticketResponse(ticket)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "accept-ticket",
        Method:      http.MethodPost,
        Path:        "/tickets/{id}/accept",
        Summary:     "Accept a ticket and promise a ready time",
    }, func(ctx context.Context, input *struct {
        ID   string              `path:"id"`
        Body AcceptTicketRequest `json:"body"`
    }) (*struct {
        Body TicketResponse `json:"body"`
    }, error) {
        ticket, err := s.services.Kitchen.Accept(ctx, input.ID, input.Body.ReadyBy)
        if err != nil {
            return nil, s.handleError(err, "accept-ticket")
        }
        return &struct {
            Body TicketResponse `json:"body"`
        }{Body: ticketResponse(ticket)}, nil
    })
}

func (s *Server) registerDeliveries(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID: "update-courier-availability",
        Method:      http.MethodPut,
        Path:        "/couriers/{id}/availability",
        Summary:     "Mark a courier available or unavailable",
    }, func(ctx context.Context, input *struct {
        ID   string                     `path:"id"`
        Body CourierAvailabilityRequest `json:"body"`
    }) (*courierOutput, error) {
        courier, err := s.services.Deliveries.UpdateCourierAvailability(ctx, input.ID, input.Body.Available)
        if err != nil {
            return nil, s.handleError(err, "update-courier-availability")
        }
        return &courierOutput{Body: courierResponse(courier)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "get-courier",
        Method:      http.MethodGet,
        Path:        "/couriers/{id}",
        Summary:     "Get a courier and its plan",
    }, func(ctx context.Context, input *idPath) (*courierOutput, error) {
        courier, err := s.services.Deliveries.FindCourier(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "get-courier")
        }
        return &courierOutput{Body: courierResponse(courier)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "get-delivery",
        Method:      http.MethodGet,
        Path:        "/deliveries/{id}",
        Summary:     "Get a delivery",
    }, func(ctx context.Context, input *idPath) (*deliveryOutput, error) {
        found, err := s.services.Deliveries.FindDelivery(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "get-delivery")
        }
        return &deliveryOutput{Body: deliveryResponse(found)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "pickup-delivery",
        Method:      http.MethodPost,
        Path:        "/deliveries/{id}/pickup",
        Summary:     "Record the pickup of a delivery by its courier",
    }, func(ctx context.Context, input *idPath) (*deliveryOutput, error) {
        pickedUp, err := s.services.Deliveries.PickUp(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "pickup-delivery")
        }
        return &deliveryOutput{Body: deliveryResponse(pickedUp)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "dropoff-delivery",
        Method:      http.MethodPost,
        Path:        "/deliveries/{id}/dropoff",
        Summary:     "Record the dropoff of a delivery",
    }, func(ctx context.Context, input *idPath) (*deliveryOutput, error) {
        delivered, err := s.services.Deliveries.Deliver(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "dropoff-delivery")
        }
        return &deliveryOutput{Body: deliveryResponse(delivered)}, nil
    })
}
