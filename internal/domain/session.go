package domain

import "time"

// Session is a server-side login session for a vendor. The cookie carries
// an opaque token; only its SHA-256 hash is stored.
type Session struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendor_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// Valid reports whether the session can still authenticate requests.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && !s.Revoked && s.ExpiresAt.After(now)
}
