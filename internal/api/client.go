// Package api is the HTTP client for the trading backend. It covers the
// four snapshot reads, the mutating order/wallet actions, and the auth flow.
// Every call takes the session explicitly; nothing here reads ambient state.
package api

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/tradedesk/godesk/internal/domain"
)

var apiLog = logrus.WithField("component", "api")

// Client wraps a resty client configured for the trading backend.
type Client struct {
	rc *resty.Client
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8000".
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "godesk/1.0")

	return &Client{rc: rc}
}

// newRequest sets per-request defaults. The bearer credential is attached
// here and nowhere else.
func (c *Client) newRequest(ctx context.Context, session domain.Session) *resty.Request {
	r := c.rc.R().SetContext(ctx)
	if session.Valid() {
		r.SetHeader("Authorization", session.Authorization())
	}
	return r
}

// get issues an authenticated GET and decodes a 2xx body into out.
func (c *Client) get(ctx context.Context, session domain.Session, path string, out any) error {
	if !session.Valid() {
		return ErrAuthRequired
	}
	resp, err := c.newRequest(ctx, session).SetResult(out).Get(path)
	if err != nil {
		return wrapTransport(err, path)
	}
	return checkResponse(resp)
}
