package domain

// User is the authenticated account as reported by the backend. The
// in-memory copy refreshed from /users/me is authoritative; the copy cached
// in local storage exists only for display continuity across restarts.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
