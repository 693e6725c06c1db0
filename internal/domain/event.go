package domain

import "time"

const (
	EventOrderConfirmed     = "order_confirmed"
	EventOrderRejected      = "order_rejected"
	EventOrderFailed        = "order_failed"
	EventNotificationFailed = "notification_failed"
)

// OrderEvent is published on the order lifecycle topic.
type OrderEvent struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	Status     OrderStatus `json:"status"`
	Amount     int64       `json:"amount"`
	OccurredAt time.Time   `json:"occurred_at"`
}
