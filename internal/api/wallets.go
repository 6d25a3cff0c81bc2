package api

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/godesk/internal/domain"
)

// MyWallet fetches the current user's wallet.
func (c *Client) MyWallet(ctx context.Context, session domain.Session) (domain.Wallet, error) {
	var wallet domain.Wallet
	if err := c.get(ctx, session, "/wallets/me", &wallet); err != nil {
		return domain.Wallet{}, err
	}
	return wallet, nil
}

// The wallet mutation endpoints take their amount as a query parameter.
func (c *Client) walletAction(ctx context.Context, session domain.Session, path, param string, amount decimal.Decimal) error {
	if !session.Valid() {
		return ErrAuthRequired
	}
	resp, err := c.newRequest(ctx, session).
		SetQueryParam(param, amount.String()).
		Post(path)
	if err != nil {
		return wrapTransport(err, path)
	}
	return checkResponse(resp)
}

// TopUp adds fiat balance to the wallet.
func (c *Client) TopUp(ctx context.Context, session domain.Session, amount decimal.Decimal) error {
	return c.walletAction(ctx, session, "/wallets/topup", "amount", amount)
}

// Withdraw removes fiat balance from the wallet.
func (c *Client) Withdraw(ctx context.Context, session domain.Session, amount decimal.Decimal) error {
	return c.walletAction(ctx, session, "/wallets/deduct", "amount", amount)
}

// AddAsset credits asset holdings.
func (c *Client) AddAsset(ctx context.Context, session domain.Session, quantity decimal.Decimal) error {
	return c.walletAction(ctx, session, "/wallets/add_btc", "quantity", quantity)
}

// WithdrawAsset debits asset holdings.
func (c *Client) WithdrawAsset(ctx context.Context, session domain.Session, quantity decimal.Decimal) error {
	return c.walletAction(ctx, session, "/wallets/withdraw_btc", "quantity", quantity)
}
