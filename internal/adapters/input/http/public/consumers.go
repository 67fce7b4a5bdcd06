package public

import (
    "context"
    "net/http"

    "github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerConsumers(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID:   "create-consumer",
        Method:        http.MethodPost,
        Path:          "/consumers",
        Summary:       "Create a consumer",
        DefaultStatus: http.StatusCreated,
    }, func(ctx context.Context, input *struct {
        Body CreateConsumerRequest `json:"body"`
    }) (*struct {
        Body ConsumerResponse `json:"body"`
    }, error) {
        created, err := s.services.Consumers.CreateConsumer(ctx, input.Body.Name, input.Body.OrderLimit)
        if err != nil {
            return nil, s.handleError(err, "create-consumer")
        }
        return &struct {
            Body ConsumerResponse `json:"body"`
        }{Body: consumerResponse(created)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "get-consumer",
        Method:      http.MethodGet,
        Path:        "/consumers/{id}",
        Summary:     "Get a consumer",
    }, func(ctx context.Context, input *idPath) (*struct {
        Body ConsumerResponse `json:"body"`
    }, error) {
        found, err := s.services.Consumers.FindByID(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "get-consumer")
        }
        return &struct {
            Body ConsumerResponse `json:"body"`
        }{Body: consumerResponse(found)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID:   "create-account",
        Method:        http.MethodPost,
        Path:          "/accounts",
        Summary:       "Open the account of a consumer",
        DefaultStatus: http.StatusCreated,
    }, func(ctx context.Context, input *struct {
        Body CreateAccountRequest `json:"body"`
    }) (*struct {
        Body AccountResponse `json:"body"`
    }, error) {
        if _, err := s.services.Consumers.FindByID(ctx, input.Body.ConsumerID); err != nil {
            return nil, s.handleError(err, "create-account")
        }
        created, err := s.services.Accounting.CreateAccount(ctx, input.Body.ConsumerID, input.Body.Card, input.Body.CreditLimit)
        if err != nil {
            return nil, s.handleError(err, "create-account")
        }
        return &struct {
            Body AccountResponse `json:"body"`
        }{Body: accountResponse(created)}, nil
    })
}
