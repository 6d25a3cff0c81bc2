// Package ports holds the small neutral interfaces shared between services,
// infrastructure, and the UI, so none of them import each other directly.
package ports

import (
	"context"
)

// Refresher re-pulls the authoritative snapshot. Implementations must be
// safe for overlapping calls.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ActionNotifier receives the outcome of user-initiated actions. The UI
// implements it to reset input fields on success and show failure detail.
type ActionNotifier interface {
	ActionSucceeded(action string)
	ActionFailed(action, detail string)
}
