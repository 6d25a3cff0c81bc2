package domain

import (
	"github.com/shopspring/decimal"
)

// Wallet mirrors the backend wallet row. All four numeric fields are
// non-negative; the client never computes them, only displays them and
// requests changes through the wallet endpoints.
type Wallet struct {
	Balance          decimal.Decimal `json:"balance"`
	ReservedBalance  decimal.Decimal `json:"reserved_balance"`
	Holdings         decimal.Decimal `json:"holdings"`
	ReservedHoldings decimal.Decimal `json:"reserved_holdings"`
	Currency         string          `json:"currency"`
	AssetSymbol      string          `json:"asset_symbol"`
}
