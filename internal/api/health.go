package api

import (
	"context"
)

// Health probes the backend. The endpoint is unauthenticated; a non-nil
// error means the backend is unreachable or unhealthy.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.rc.R().SetContext(ctx).Get("/health")
	if err != nil {
		return wrapTransport(err, "/health")
	}
	return checkResponse(resp)
}
