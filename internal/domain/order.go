package domain

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusRejected, OrderStatusFailed:
		return true
	}
	return false
}

// CanTransition encodes the order lifecycle:
// CREATED -> PENDING -> {CONFIRMED | REJECTED}, FAILED from CREATED or PENDING.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return to == OrderStatusPending || to == OrderStatusConfirmed ||
			to == OrderStatusRejected || to == OrderStatusFailed
	case OrderStatusPending:
		return to == OrderStatusConfirmed || to == OrderStatusRejected || to == OrderStatusFailed
	}
	return false
}

type Customer struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Gender       string `json:"gender"`
	Comments     string `json:"comments"`
	DepositLabel string `json:"deposit_label"`
}

type Order struct {
	OrderID       string      `json:"order_id"`
	GatewayToken  string      `json:"gateway_token,omitempty"`
	Amount        int64       `json:"amount"`
	Currency      string      `json:"currency"`
	Subject       string      `json:"subject"`
	Customer      Customer    `json:"customer"`
	Status        OrderStatus `json:"status"`
	GatewayStatus int         `json:"gateway_status,omitempty"`
	PayerEmail    string      `json:"payer_email,omitempty"`
	FailureReason string      `json:"failure_reason,omitempty"`
	NotifiedAt    *time.Time  `json:"notified_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Transition describes a single status change applied by the store.
type Transition struct {
	To            OrderStatus
	GatewayStatus int
	PayerEmail    string
	FailureReason string
}
