package events

const (
    AggregateRestaurant = "RESTAURANT"
    AggregateOrder      = "ORDER"
    AggregateTicket     = "TICKET"
    AggregateDelivery   = "DELIVERY"
    AggregateCourier    = "COURIER"
    AggregateConsumer   = "CONSUMER"
    AggregateAccount    = "ACCOUNT"
    AggregateSaga       = "SAGA"
)
