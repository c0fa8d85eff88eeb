package domain

import "time"

// Session is the authenticated state held by a session provider.
type Session struct {
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenType    string    `toml:"token_type"`
	Expiry       time.Time `toml:"expiry"`
	UserID       string    `toml:"user_id"`
	Email        string    `toml:"email"`
}

// IsZero reports whether no session is held.
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}
