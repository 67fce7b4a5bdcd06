package public

import (
    "context"
    "net/http"

    "github.com/danielgtaylor/huma/v2"
)

type restaurantOutput struct {
    Body RestaurantResponse `json:"body"`
}

func (s *Server) registerRestaurants(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID:   "create-restaurant",
        Method:        http.MethodPost,
        Path:          "/restaurants",
        Summary:       "Create a restaurant",
        DefaultStatus: http.StatusCreated,
    }, func(ctx context.Context, input *struct {
        Body CreateRestaurantRequest `json:"body"`
    }) (*restaurantOutput, error) {
        created, err := s.services.Restaurants.CreateRestaurant(ctx, input.Body.Name, input.Body.Address, input.Body.MenuItems)
        if err != nil {
            return nil, s.handleError(err, "create-restaurant")
        }
        return &restaurantOutput{Body: restaurantResponse(created)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "get-restaurant",
        Method:      http.MethodGet,
        Path:        "/restaurants/{id}",
        Summary:     "Get a restaurant",
    }, func(ctx context.Context, input *idPath) (*restaurantOutput, error) {
        found, err := s.services.Restaurants.FindByID(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "get-restaurant")
        }
        return &restaurantOutput{Body: restaurantResponse(found)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "revise-menu",
        Method:      http.MethodPut,
        Path:        "/restaurants/{id}/menu",
        Summary:     "Replace the menu of a restaurant",
    }, func(ctx context.Context, input *struct {
        ID   string            `path:"id"`
        Body ReviseMenuRequest `json:"body"`
    }) (*restaurantOutput, error) {
        revised, err := s.services.Restaurants.ReviseMenu(ctx, input.ID, input.Body.MenuItems)
        if err != nil {
            return nil, s.handleError(err, "revise-menu")
        }
        return &restaurantOutput{Body: restaurantResponse(revised)}, nil
    })
}
