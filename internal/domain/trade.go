package domain

import (
	"github.com/shopspring/decimal"
)

// TradeType reports which side of the fill the current user was on.
type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

// Trade is one executed fill involving the current user. Trades are
// immutable once received and append-only in client memory.
type Trade struct {
	ID               string          `json:"id"`
	Quantity         decimal.Decimal `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	CreatedAt        Time            `json:"created_at"`
	TradeType        TradeType       `json:"trade_type"`
	CounterpartyName string          `json:"counterparty_name"`
}
