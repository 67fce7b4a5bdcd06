package orderhistory

import (
    "github.com/walletera/food-delivery/internal/domain/shared"
)

const (
    OrderReplicaType    = "orderhistory.order"
    DeliveryReplicaType = "orderhistory.delivery"
)

// Order is the order stream side of the history.
type Order struct {
    OrderID             string                     `json:"order_id"`
    ConsumerID          string                     `json:"consumer_id"`
    RestaurantID        string                     `json:"restaurant_id"`
    State               string                     `json:"state"`
    LineItems           []shared.OrderLineItem     `json:"line_items"`
    OrderTotal          shared.Money               `json:"order_total"`
    DeliveryInformation shared.DeliveryInformation `json:"delivery_information"`
    CreatedAt           *shared.Timestamp          `json:"created_at,omitempty"`
    UpdatedAt           shared.Timestamp           `json:"updated_at"`
}

// Delivery is the delivery stream side of the history. It is kept apart from
// Order because sequence numbers of two streams cannot be compared.
type Delivery struct {
    DeliveryID  string            `json:"delivery_id"`
    State       string            `json:"state"`
    CourierID   string            `json:"courier_id"`
    PickedUpAt  *shared.Timestamp `json:"picked_up_at,omitempty"`
    DeliveredAt *shared.Timestamp `json:"delivered_at,omitempty"`
}

// View is what readers of the history get.
type View struct {
    Order
    Delivery *Delivery `json:"delivery,omitempty"`
}
