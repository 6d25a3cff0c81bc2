package api

import (
	"context"

	"github.com/tradedesk/godesk/internal/domain"
)

// MyOrders fetches the current user's orders.
func (c *Client) MyOrders(ctx context.Context, session domain.Session) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.get(ctx, session, "/orders/me", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder submits a new order from the draft.
func (c *Client) CreateOrder(ctx context.Context, session domain.Session, draft domain.OrderDraft) (domain.Order, error) {
	if !session.Valid() {
		return domain.Order{}, ErrAuthRequired
	}
	var created domain.Order
	resp, err := c.newRequest(ctx, session).
		SetBody(draft).
		SetResult(&created).
		Post("/orders/")
	if err != nil {
		return domain.Order{}, wrapTransport(err, "/orders/")
	}
	if err := checkResponse(resp); err != nil {
		return domain.Order{}, err
	}
	return created, nil
}

// CancelOrder cancels one of the user's orders by id.
func (c *Client) CancelOrder(ctx context.Context, session domain.Session, orderID string) error {
	if !session.Valid() {
		return ErrAuthRequired
	}
	resp, err := c.newRequest(ctx, session).
		SetPathParam("id", orderID).
		Delete("/orders/{id}")
	if err != nil {
		return wrapTransport(err, "/orders/{id}")
	}
	return checkResponse(resp)
}
