package public

import (
    "time"

    "github.com/walletera/food-delivery/internal/domain/accounting"
    "github.com/walletera/food-delivery/internal/domain/consumer"
    "github.com/walletera/food-delivery/internal/domain/delivery"
    "github.com/walletera/food-delivery/internal/domain/kitchen"
    "github.com/walletera/food-delivery/internal/domain/order"
    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/saga"
)

type idPath struct {
    ID string `path:"id"`
}

type CreateRestaurantRequest struct {
    Name      string            `json:"name" minLength:"1"`
    Address   shared.Address    `json:"address"`
    MenuItems []shared.MenuItem `json:"menu_items"`
}

type ReviseMenuRequest struct {
    MenuItems []shared.MenuItem `json:"menu_items"`
}

type RestaurantResponse struct {
    ID        string            `json:"id"`
    Name      string            `json:"name"`
    Address   shared.Address    `json:"address"`
    MenuItems []shared.MenuItem `json:"menu_items"`
}

func restaurantResponse(r *restaurant.Restaurant) RestaurantResponse {
    return RestaurantResponse{ID: r.ID, Name: r.Name, Address: r.Address, MenuItems: r.MenuItems}
}

type CreateConsumerRequest struct {
    Name       shared.PersonName `json:"name"`
    OrderLimit shared.Money      `json:"order_limit"`
}

type ConsumerResponse struct {
    ID         string            `json:"id"`
    Name       shared.PersonName `json:"name"`
    OrderLimit shared.Money      `json:"order_limit"`
}

func consumerResponse(c *consumer.Consumer) ConsumerResponse {
    return ConsumerResponse{ID: c.ID, Name: c.Name, OrderLimit: c.OrderLimit}
}

type CreateAccountRequest struct {
    ConsumerID  string          `json:"consumer_id" minLength:"1"`
    Card        accounting.Card `json:"card"`
    CreditLimit shared.Money    `json:"credit_limit"`
}

type AccountResponse struct {
    ID          string          `json:"id"`
    ConsumerID  string          `json:"consumer_id"`
    Card        accounting.Card `json:"card"`
    CreditLimit shared.Money    `json:"credit_limit"`
}

func accountResponse(a *accounting.Account) AccountResponse {
    return AccountResponse{ID: a.ID, ConsumerID: a.ConsumerID, Card: a.Card, CreditLimit: a.CreditLimit}
}

type CreateOrderRequest struct {
    ConsumerID      string                  `json:"consumer_id" minLength:"1"`
    RestaurantID    string                  `json:"restaurant_id" minLength:"1"`
    LineItems       []order.LineItemRequest `json:"line_items" minItems:"1"`
    DeliveryTime    time.Time               `json:"delivery_time"`
    DeliveryAddress shared.Address          `json:"delivery_address"`
}

type ReviseOrderRequest struct {
    RevisedLineItemQuantities map[string]int  `json:"revised_line_item_quantities"`
    DeliveryTime              *time.Time      `json:"delivery_time,omitempty"`
    DeliveryAddress           *shared.Address `json:"delivery_address,omitempty"`
}

func (r ReviseOrderRequest) revision() shared.OrderRevision {
    revision := shared.OrderRevision{RevisedLineItemQuantities: r.RevisedLineItemQuantities}
    if r.DeliveryTime != nil && r.DeliveryAddress != nil {
        revision.DeliveryInformation = &shared.DeliveryInformation{
            DeliveryTime:    shared.NewTimestamp(*r.DeliveryTime),
            DeliveryAddress: *r.DeliveryAddress,
        }
    }
    return revision
}

type OrderResponse struct {
    ID                  string                     `json:"id"`
    State               string                     `json:"state"`
    ConsumerID          string                     `json:"consumer_id"`
    RestaurantID        string                     `json:"restaurant_id"`
    LineItems           []shared.OrderLineItem     `json:"line_items"`
    OrderTotal          shared.Money               `json:"order_total"`
    DeliveryInformation shared.DeliveryInformation `json:"delivery_information"`
    Version             uint64                     `json:"version"`
}

func orderResponse(o *order.Order) (OrderResponse, error) {
    total, err := o.Total()
    if err != nil {
        return OrderResponse{}, err
    }
    return OrderResponse{
        ID:                  o.ID,
        State:               string(o.State),
        ConsumerID:          o.ConsumerID,
        RestaurantID:        o.RestaurantID,
        LineItems:           o.LineItems,
        OrderTotal:          total,
        DeliveryInformation: o.DeliveryInformation,
        Version:             o.Version(),
    }, nil
}

type AcceptTicketRequest struct {
    ReadyBy time.Time `json:"ready_by"`
}

type TicketResponse struct {
    ID           string                  `json:"id"`
    State        string                  `json:"state"`
    RestaurantID string                  `json:"restaurant_id"`
    LineItems    []shared.TicketLineItem `json:"line_items"`
    ReadyBy      *time.Time              `json:"ready_by,omitempty"`
}

func ticketResponse(t *kitchen.Ticket) TicketResponse {
    return TicketResponse{
        ID:           t.ID,
        State:        string(t.State),
        RestaurantID: t.RestaurantID,
        LineItems:    t.LineItems,
        ReadyBy:      t.ReadyBy,
    }
}

type CourierAvailabilityRequest struct {
    Available bool `json:"available"`
}

type CourierResponse struct {
    ID        string            `json:"id"`
    Available bool              `json:"available"`
    Plan      []delivery.Action `json:"plan"`
    Done      []delivery.Action `json:"done"`
}

func courierResponse(c *delivery.Courier) CourierResponse {
    return CourierResponse{ID: c.ID, Available: c.Available, Plan: c.Plan, Done: c.Done}
}

type DeliveryResponse struct {
    ID              string         `json:"id"`
    State           string         `json:"state"`
    RestaurantID    string         `json:"restaurant_id"`
    PickupAddress   shared.Address `json:"pickup_address"`
    DeliveryAddress shared.Address `json:"delivery_address"`
    AssignedCourier string         `json:"assigned_courier,omitempty"`
    ReadyBy         *time.Time     `json:"ready_by,omitempty"`
    PickupTime      *time.Time     `json:"pickup_time,omitempty"`
    DeliveryTime    *time.Time     `json:"delivery_time,omitempty"`
}

func deliveryResponse(d *delivery.Delivery) DeliveryResponse {
    return DeliveryResponse{
        ID:              d.ID,
        State:           string(d.State),
        RestaurantID:    d.RestaurantID,
        PickupAddress:   d.PickupAddress,
        DeliveryAddress: d.DeliveryAddress,
        AssignedCourier: d.AssignedCourier,
        ReadyBy:         d.ReadyBy,
        PickupTime:      d.PickupTime,
        DeliveryTime:    d.DeliveryTime,
    }
}

type SagaRunResponse struct {
    ID                   string    `json:"id"`
    SagaName             string    `json:"saga_name"`
    Status               string    `json:"status"`
    Cursor               int       `json:"cursor"`
    CompensationStack    []string  `json:"compensation_stack"`
    PendingCompensations []string  `json:"pending_compensations"`
    FailedStep           string    `json:"failed_step,omitempty"`
    ErrorCode            string    `json:"error_code,omitempty"`
    Error                string    `json:"error,omitempty"`
    CreatedAt            time.Time `json:"created_at"`
    UpdatedAt            time.Time `json:"updated_at"`
}

func sagaRunResponse(run *saga.Run) SagaRunResponse {
    return SagaRunResponse{
        ID:                   run.ID,
        SagaName:             run.SagaName,
        Status:               string(run.Status),
        Cursor:               run.Cursor,
        CompensationStack:    run.CompensationStack,
        PendingCompensations: run.PendingCompensations,
        FailedStep:           run.FailedStep,
        ErrorCode:            run.ErrorCode,
        Error:                run.Error,
        CreatedAt:            run.CreatedAt,
        UpdatedAt:            run.UpdatedAt,
    }
}
