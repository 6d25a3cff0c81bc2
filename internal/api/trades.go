package api

import (
	"context"

	"github.com/tradedesk/godesk/internal/domain"
)

// MyTrades fetches the current user's trade history.
func (c *Client) MyTrades(ctx context.Context, session domain.Session) ([]domain.Trade, error) {
	var trades []domain.Trade
	if err := c.get(ctx, session, "/trades/my", &trades); err != nil {
		return nil, err
	}
	return trades, nil
}
