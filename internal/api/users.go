package api

import (
	"context"

	"github.com/tradedesk/godesk/internal/domain"
)

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context, session domain.Session) (domain.User, error) {
	var user domain.User
	if err := c.get(ctx, session, "/users/me", &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
