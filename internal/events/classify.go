package events

import (
	"encoding/json"
	"strings"

	"github.com/tradedesk/godesk/internal/domain"
)

// Wire tags used by the backend push channel. Keepalive probes never reach
// this package; the connection layer answers them in place.
const (
	orderBookPrefix = "Order Book Update: "
	tradeBookPrefix = "Trade Book Update: "
	walletPrefix    = "Wallet Update"
)

// Classify parses one raw push message into a typed event. Classification is
// tolerant: a payload that fails to parse degrades to UnknownEvent carrying
// the original text, never an error. A single bad message must not interrupt
// the stream.
func Classify(raw string) domain.PushEvent {
	switch {
	case strings.HasPrefix(raw, orderBookPrefix):
		var book domain.OrderBookSnapshot
		if err := json.Unmarshal([]byte(raw[len(orderBookPrefix):]), &book); err != nil {
			return domain.UnknownEvent{Text: raw}
		}
		return domain.OrderBookUpdate{Text: raw, Book: book}

	case strings.HasPrefix(raw, tradeBookPrefix):
		var trades []domain.Trade
		if err := json.Unmarshal([]byte(raw[len(tradeBookPrefix):]), &trades); err != nil {
			return domain.UnknownEvent{Text: raw}
		}
		return domain.TradeBookUpdate{Text: raw, Trades: trades}

	case strings.HasPrefix(raw, walletPrefix):
		// Wallet pushes are free-form text; the authoritative wallet state
		// comes from the snapshot refresh they trigger.
		return domain.WalletUpdate{Text: raw}

	default:
		return domain.UnknownEvent{Text: raw}
	}
}
