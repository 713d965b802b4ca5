package models

import (
	"encoding/json"
	"time"
)

// OutboxStatus represents the status of an outbox message
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusCompleted  OutboxStatus = "completed"
	OutboxStatusFailed     OutboxStatus = "failed"
)

// OutboxMessage is an order lifecycle event written in the same transaction
// as the order mutation and published asynchronously.
type OutboxMessage struct {
	ID                 int64        `db:"id" json:"id"`
	AggregateType      string       `db:"aggregate_type" json:"aggregate_type"`
	AggregateID        string       `db:"aggregate_id" json:"aggregate_id"`
	EventType          string       `db:"event_type" json:"event_type"`
	Payload            []byte       `db:"payload" json:"payload"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	ProcessedAt        *time.Time   `db:"processed_at" json:"processed_at,omitempty"`
	ProcessingAttempts int          `db:"processing_attempts" json:"processing_attempts"`
	LastError          *string      `db:"last_error" json:"last_error,omitempty"`
	Status             OutboxStatus `db:"status" json:"status"`
}

// Event types carried on the orders topic
const (
	EventOrderCreated = "order_created"
	EventOrderPaid    = "order_paid"
	EventOrderFailed  = "order_failed"
)

// OutboxMessageEvent is the envelope serialized into the outbox payload
type OutboxMessageEvent struct {
	EventType   string      `json:"event_type"`
	EventID     string      `json:"event_id"`
	AggregateID string      `json:"aggregate_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Data        interface{} `json:"data"`
}

func newOrderEvent(eventType string, order *Order, data interface{}) (*OutboxMessage, error) {
	event := OutboxMessageEvent{
		EventType:   eventType,
		EventID:     GenerateID("evt"),
		AggregateID: order.OrderID,
		OccurredAt:  GetCurrentTime(),
		Data:        data,
	}

	payload, err := json.Marshal(event)

	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		AggregateType:      "order",
		AggregateID:        order.OrderID,
		EventType:          eventType,
		Payload:            payload,
		CreatedAt:          GetCurrentTime(),
		ProcessingAttempts: 0,
		Status:             OutboxStatusPending,
	}, nil
}

// NewOrderCreatedEvent builds the event emitted when an order is placed
func NewOrderCreatedEvent(order *Order) (*OutboxMessage, error) {
	return newOrderEvent(EventOrderCreated, order, order)
}

// NewOrderPaidEvent builds the event emitted when payment is confirmed
func NewOrderPaidEvent(order *Order) (*OutboxMessage, error) {
	return newOrderEvent(EventOrderPaid, order, map[string]interface{}{
		"order_id": order.OrderID,
		"total":    order.Total,
		"currency": order.Currency,
		"email":    order.Customer.Email,
	})
}

// NewOrderFailedEvent builds the event emitted when payment fails
func NewOrderFailedEvent(order *Order) (*OutboxMessage, error) {
	return newOrderEvent(EventOrderFailed, order, map[string]interface{}{
		"order_id": order.OrderID,
		"total":    order.Total,
		"currency": order.Currency,
	})
}
