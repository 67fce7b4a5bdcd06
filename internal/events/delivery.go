package events

import "github.com/walletera/food-delivery/internal/domain/shared"

const (
    DeliveryCreatedType   = "DeliveryCreated"
    DeliveryScheduledType = "DeliveryScheduled"
    DeliveryCancelledType = "DeliveryCancelled"
    DeliveryPickedUpType  = "DeliveryPickedUp"
    DeliveryDeliveredType = "DeliveryDelivered"
)

type DeliveryCreated struct {
    DeliveryID      string         `json:"delivery_id"`
    RestaurantID    string         `json:"restaurant_id"`
    PickupAddress   shared.Address `json:"pickup_address"`
    DeliveryAddress shared.Address `json:"delivery_address"`
}

func (DeliveryCreated) EventType() string  { return DeliveryCreatedType }
func (DeliveryCreated) SchemaVersion() int { return 1 }

type DeliveryScheduled struct {
    DeliveryID string           `json:"delivery_id"`
    CourierID  string           `json:"courier_id"`
    ReadyBy    shared.Timestamp `json:"ready_by"`
}

func (DeliveryScheduled) EventType() string  { return DeliveryScheduledType }
func (DeliveryScheduled) SchemaVersion() int { return 1 }

type DeliveryCancelled struct {
    DeliveryID string `json:"delivery_id"`
}

func (DeliveryCancelled) EventType() string  { return DeliveryCancelledType }
func (DeliveryCancelled) SchemaVersion() int { return 1 }

type DeliveryPickedUp struct {
    DeliveryID string           `json:"delivery_id"`
    CourierID  string           `json:"courier_id"`
    PickedUpAt shared.Timestamp `json:"picked_up_at"`
}

func (DeliveryPickedUp) EventType() string  { return DeliveryPickedUpType }
func (DeliveryPickedUp) SchemaVersion() int { return 1 }

type DeliveryDelivered struct {
    DeliveryID  string           `json:"delivery_id"`
    CourierID   string           `json:"courier_id"`
    DeliveredAt shared.Timestamp `json:"delivered_at"`
}

func (DeliveryDelivered) EventType() string  { return DeliveryDeliveredType }
func (DeliveryDelivered) SchemaVersion() int { return 1 }
