package model

import "time"

// OrderCreatedEvent is the payload published to Kafka when an order is
// accepted. EventID is the idempotency key for consumers.
type OrderCreatedEvent struct {
	EventID    string           `json:"event_id"`
	OrderID    string           `json:"order_id"`
	CustomerID string           `json:"customer_id"`
	Lines      []OrderEventLine `json:"lines"`
	OccurredAt time.Time        `json:"occurred_at"`
}

type OrderEventLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
