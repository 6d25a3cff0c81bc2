package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/godesk/internal/domain"
	"github.com/tradedesk/godesk/internal/services"
)

// parseOrderInput fills a draft from a prompt line shaped like
// "buy limit 0.5 64000" or "sell market 0.1". Anything it cannot parse
// is left at a value the dispatcher will reject, so bad input still
// produces a user-visible failure instead of a silent no-op.
func parseOrderInput(draft domain.OrderDraft, input string) domain.OrderDraft {
	draft.Quantity = decimal.Zero
	draft.Price = decimal.Zero

	fields := strings.Fields(strings.ToLower(input))
	if len(fields) < 3 {
		return draft
	}

	switch fields[0] {
	case "buy":
		draft.Side = domain.SideBuy
	case "sell":
		draft.Side = domain.SideSell
	default:
		return draft
	}

	switch fields[1] {
	case "limit":
		draft.Kind = domain.OrderKindLimit
	case "market":
		draft.Kind = domain.OrderKindMarket
	default:
		return draft
	}

	if qty, err := decimal.NewFromString(fields[2]); err == nil {
		draft.Quantity = qty
	}
	if len(fields) > 3 {
		if price, err := decimal.NewFromString(fields[3]); err == nil {
			draft.Price = price
		}
	}
	return draft
}

// resolveOrderID accepts either a full order id or a 1-based row number
// from the open-orders panel.
func resolveOrderID(desk *services.Desk, input string) string {
	input = strings.TrimSpace(input)
	row, err := strconv.Atoi(input)
	if err != nil {
		return input
	}

	snap, ok := desk.Snapshot()
	if !ok {
		return input
	}
	open := openOrders(snap.Orders)
	if row < 1 || row > len(open) {
		return input
	}
	return open[row-1].ID
}

// dispatchAmount parses the prompt line as a decimal; unparseable input
// becomes zero, which the dispatcher rejects with its own message.
func dispatchAmount(ctx context.Context, send func(context.Context, decimal.Decimal) error, input string) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		amount = decimal.Zero
	}
	return send(ctx, amount)
}

func openOrders(orders []domain.Order) []domain.Order {
	open := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if order.IsOpen() {
			open = append(open, order)
		}
	}
	return open
}
