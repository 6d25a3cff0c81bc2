package domain

// Session holds the bearer credential for an authenticated user. It is
// created by the login flow, destroyed on logout, and never mutated by any
// other component.
type Session struct {
	Token     string
	TokenType string
}

// Valid reports whether the session carries a credential.
func (s Session) Valid() bool {
	return s.Token != ""
}

// Authorization returns the value for the Authorization header.
func (s Session) Authorization() string {
	typ := s.TokenType
	if typ == "" {
		typ = "Bearer"
	}
	return typ + " " + s.Token
}
