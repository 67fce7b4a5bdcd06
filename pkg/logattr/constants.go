package logattr

import "log/slog"

func ServiceName(serviceName string) slog.Attr {
    return slog.String("service_name", serviceName)
}

func Component(component string) slog.Attr {
    return slog.String("component", component)
}

func Error(err string) slog.Attr {
    return slog.String("error", err)
}

func CorrelationId(correlationId string) slog.Attr {
    return slog.String("correlation_id", correlationId)
}

func EventType(eventType string) slog.Attr {
    return slog.String("event_type", eventType)
}

func AggregateType(aggregateType string) slog.Attr {
    return slog.String("aggregate_type", aggregateType)
}

func AggregateId(aggregateId string) slog.Attr {
    return slog.String("aggregate_id", aggregateId)
}

func SequenceNumber(sequenceNumber uint64) slog.Attr {
    return slog.Uint64("sequence_number", sequenceNumber)
}

func StreamName(streamName string) slog.Attr {
    return slog.String("stream_name", streamName)
}

func RoutingKey(routingKey string) slog.Attr {
    return slog.String("routing_key", routingKey)
}

func ReplicaType(replicaType string) slog.Attr {
    return slog.String("replica_type", replicaType)
}

func SagaName(sagaName string) slog.Attr {
    return slog.String("saga_name", sagaName)
}

func SagaRunId(sagaRunId string) slog.Attr {
    return slog.String("saga_run_id", sagaRunId)
}

func SagaStep(sagaStep string) slog.Attr {
    return slog.String("saga_step", sagaStep)
}

func SagaStatus(sagaStatus string) slog.Attr {
    return slog.String("saga_status", sagaStatus)
}

func OrderId(orderId string) slog.Attr {
    return slog.String("order_id", orderId)
}

func TicketId(ticketId string) slog.Attr {
    return slog.String("ticket_id", ticketId)
}

func DeliveryId(deliveryId string) slog.Attr {
    return slog.String("delivery_id", deliveryId)
}

func CourierId(courierId string) slog.Attr {
    return slog.String("courier_id", courierId)
}

func ConsumerId(consumerId string) slog.Attr {
    return slog.String("consumer_id", consumerId)
}

func RestaurantId(restaurantId string) slog.Attr {
    return slog.String("restaurant_id", restaurantId)
}

func HttpStatus(httpStatus int) slog.Attr {
    return slog.Int("http_status", httpStatus)
}

func State(state string) slog.Attr {
    return slog.String("state", state)
}

func AccountId(accountId string) slog.Attr {
    return slog.String("account_id", accountId)
}

func Operation(operation string) slog.Attr {
    return slog.String("operation", operation)
}
