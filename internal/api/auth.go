package api

import (
	"context"

	"github.com/tradedesk/godesk/internal/domain"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a session. The backend expects OAuth2
// password-form encoding on this endpoint, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Session, error) {
	var tok tokenResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		SetResult(&tok).
		Post("/auth/login")
	if err != nil {
		return domain.Session{}, wrapTransport(err, "/auth/login")
	}
	if err := checkResponse(resp); err != nil {
		return domain.Session{}, err
	}

	apiLog.WithField("username", username).Info("logged in")
	return domain.Session{Token: tok.AccessToken, TokenType: tok.TokenType}, nil
}

// RegisterRequest is the signup form.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and returns the created user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	var user domain.User
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&user).
		Post("/auth/register")
	if err != nil {
		return domain.User{}, wrapTransport(err, "/auth/register")
	}
	if err := checkResponse(resp); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
