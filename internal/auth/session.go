package auth

import "time"

// Session is the client-side view of who is signed in. It is a value:
// Login and Logout return the next session rather than mutating shared state.
type Session struct {
	Username  string
	Role      string
	Token     string
	ExpiresAt time.Time
}

// Login returns the session holding t
func (s Session) Login(t Token) Session {
	return Session{
		Username:  t.Username,
		Role:      t.Role,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
	}
}

// Logout returns the anonymous session
func (s Session) Logout() Session {
	return Session{}
}

// Authenticated reports whether the session holds a token that has not expired at now.
// A zero ExpiresAt never expires.
func (s Session) Authenticated(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}
