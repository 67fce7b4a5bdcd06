package events

import "github.com/walletera/food-delivery/internal/domain/shared"

const (
    OrderCreatedType             = "OrderCreated"
    OrderAuthorizedType          = "OrderAuthorized"
    OrderRejectedType            = "OrderRejected"
    OrderCancelledType           = "OrderCancelled"
    OrderRevisionProposedType    = "OrderRevisionProposed"
    OrderRevisedType             = "OrderRevised"
    CancelOrderSagaRequestedType = "CancelOrderSagaRequested"
    ReviseOrderSagaRequestedType = "ReviseOrderSagaRequested"
)

type OrderDetails struct {
    ConsumerID     string                 `json:"consumer_id"`
    RestaurantID   string                 `json:"restaurant_id"`
    OrderLineItems []shared.OrderLineItem `json:"order_line_items"`
    OrderTotal     shared.Money           `json:"order_total"`
}

type OrderCreated struct {
    OrderID             string                     `json:"order_id"`
    OrderDetails        OrderDetails               `json:"order_details"`
    DeliveryInformation shared.DeliveryInformation `json:"delivery_information"`
}

func (OrderCreated) EventType() string  { return OrderCreatedType }
func (OrderCreated) SchemaVersion() int { return 1 }

type OrderAuthorized struct {
    OrderID string `json:"order_id"`
}

func (OrderAuthorized) EventType() string  { return OrderAuthorizedType }
func (OrderAuthorized) SchemaVersion() int { return 1 }

type OrderRejected struct {
    OrderID string `json:"order_id"`
}

func (OrderRejected) EventType() string  { return OrderRejectedType }
func (OrderRejected) SchemaVersion() int { return 1 }

type OrderCancelled struct {
    OrderID string `json:"order_id"`
}

func (OrderCancelled) EventType() string  { return OrderCancelledType }
func (OrderCancelled) SchemaVersion() int { return 1 }

type OrderRevisionProposed struct {
    OrderID           string               `json:"order_id"`
    OrderRevision     shared.OrderRevision `json:"order_revision"`
    CurrentOrderTotal shared.Money         `json:"current_order_total"`
    NewOrderTotal     shared.Money         `json:"new_order_total"`
}

func (OrderRevisionProposed) EventType() string  { return OrderRevisionProposedType }
func (OrderRevisionProposed) SchemaVersion() int { return 1 }

type OrderRevised struct {
    OrderID           string                 `json:"order_id"`
    OrderRevision     shared.OrderRevision   `json:"order_revision"`
    CurrentOrderTotal shared.Money           `json:"current_order_total"`
    NewOrderTotal     shared.Money           `json:"new_order_total"`
    OrderLineItems    []shared.OrderLineItem `json:"order_line_items"`
}

func (OrderRevised) EventType() string  { return OrderRevisedType }
func (OrderRevised) SchemaVersion() int { return 1 }

type CancelOrderSagaRequested struct {
    OrderID    string       `json:"order_id"`
    ConsumerID string       `json:"consumer_id"`
    OrderTotal shared.Money `json:"order_total"`
}

func (CancelOrderSagaRequested) EventType() string  { return CancelOrderSagaRequestedType }
func (CancelOrderSagaRequested) SchemaVersion() int { return 1 }

type ReviseOrderSagaRequested struct {
    OrderID       string               `json:"order_id"`
    ConsumerID    string               `json:"consumer_id"`
    OrderRevision shared.OrderRevision `json:"order_revision"`
}

func (ReviseOrderSagaRequested) EventType() string  { return ReviseOrderSagaRequestedType }
func (ReviseOrderSagaRequested) SchemaVersion() int { return 1 }
