package domain

import (
	"github.com/shopspring/decimal"
)

// EventKind identifies the classified type of a push message.
type EventKind string

const (
	EventKindOrderBook EventKind = "order_book_update"
	EventKindTradeBook EventKind = "trade_book_update"
	EventKindWallet    EventKind = "wallet_update"
	EventKindUnknown   EventKind = "unknown"
)

// PushEvent is one classified push-channel message. Events are transient:
// they are consumed once by the reconciler and optionally retained in the
// bounded display log.
type PushEvent interface {
	Kind() EventKind
	// Raw returns the original wire text for display.
	Raw() string
}

// OrderBookRow is one price level in an order-book push snapshot.
type OrderBookRow struct {
	Price             decimal.Decimal `json:"price"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	CreatedAt         Time            `json:"created_at"`
	OrderKind         OrderKind       `json:"order_kind"`
}

// OrderBookSnapshot is the payload of an order-book push.
type OrderBookSnapshot struct {
	BuyOrders  []OrderBookRow `json:"buy_orders"`
	SellOrders []OrderBookRow `json:"sell_orders"`
}

// OrderBookUpdate signals that resting orders changed; quantities the user
// can act on may be stale and must be re-pulled.
type OrderBookUpdate struct {
	Text string
	Book OrderBookSnapshot
}

func (e OrderBookUpdate) Kind() EventKind { return EventKindOrderBook }
func (e OrderBookUpdate) Raw() string     { return e.Text }

// TradeBookUpdate carries recently executed trades. The payload is
// self-contained, so no snapshot refresh is needed.
type TradeBookUpdate struct {
	Text   string
	Trades []Trade
}

func (e TradeBookUpdate) Kind() EventKind { return EventKindTradeBook }
func (e TradeBookUpdate) Raw() string     { return e.Text }

// WalletUpdate signals a balance change. The payload is carried as opaque
// text; the authoritative wallet is re-pulled over HTTP.
type WalletUpdate struct {
	Text string
}

func (e WalletUpdate) Kind() EventKind { return EventKindWallet }
func (e WalletUpdate) Raw() string     { return e.Text }

// UnknownEvent is any payload that did not match a known tag or failed to
// parse. It is display-only and never an error.
type UnknownEvent struct {
	Text string
}

func (e UnknownEvent) Kind() EventKind { return EventKindUnknown }
func (e UnknownEvent) Raw() string     { return e.Text }
