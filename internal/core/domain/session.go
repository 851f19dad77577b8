package domain

import "time"

// Identity is the authenticated caller stamped onto every backend request.
type Identity struct {
	UserID string
	Email  string
}

func (i Identity) Valid() bool {
	return i.UserID != ""
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Session ties an opaque token to a user. Sessions are persisted so the
// gateway can restore authentication state across restarts; they are
// mutated only by sign-in, sign-out and provider auth-state changes.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s *Session) Identity() Identity {
	return Identity{UserID: s.UserID, Email: s.Email}
}
