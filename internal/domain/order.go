package domain

import (
	"github.com/shopspring/decimal"
)

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderKind distinguishes limit and market orders.
type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderStatus is owned by the backend; the client only observes transitions.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusExecuted OrderStatus = "executed"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Order is one of the user's orders as last reported by the backend.
// Invariant: RemainingQuantity <= Quantity.
type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Side              Side            `json:"type"`
	Kind              OrderKind       `json:"order_kind"`
	Price             decimal.Decimal `json:"price"`
	Quantity          decimal.Decimal `json:"quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Status            OrderStatus     `json:"status"`
	CreatedAt         Time            `json:"created_at"`
	UpdatedAt         Time            `json:"updated_at"`
}

// IsOpen reports whether the order can still match.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusPending
}

// OrderDraft is the client-side order form. UserID is filled from the
// authoritative snapshot before submission.
type OrderDraft struct {
	UserID   string          `json:"user_id"`
	Side     Side            `json:"type"`
	Kind     OrderKind       `json:"order_kind"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewOrderDraft returns the default form state used after a reset.
func NewOrderDraft(userID string) OrderDraft {
	return OrderDraft{
		UserID: userID,
		Side:   SideBuy,
		Kind:   OrderKindLimit,
	}
}
