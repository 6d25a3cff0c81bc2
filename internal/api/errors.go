package api

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// ErrAuthRequired means no credential is available. Callers redirect to the
// login flow; no request is attempted.
var ErrAuthRequired = errors.New("authentication required")

// Error is a non-2xx backend response. Detail is the backend's own message
// when the body carried one, so the user sees exactly what the server said.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// Message returns the user-facing text for the failure.
func (e *Error) Message() string {
	return e.Detail
}

// checkResponse converts a non-2xx response into *Error, pulling the
// "detail" field FastAPI-style bodies carry.
func checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	detail := resp.Status()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Detail != "" {
		detail = body.Detail
	}

	apiLog.WithField("status", resp.StatusCode()).Warnf("request failed: %s", detail)
	return &Error{Status: resp.StatusCode(), Detail: detail}
}

func wrapTransport(err error, path string) error {
	return errors.Wrapf(err, "request %s failed", path)
}
