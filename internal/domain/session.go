package domain

import "time"

// Session represents an OAuth install handshake in flight
type Session struct {
	Shop      string    `json:"shop"`
	State     string    `json:"state"`
	Scopes    []string  `json:"scopes"`
	ReturnURL string    `json:"return_url"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the handshake is too old to complete
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// APISession carries what is needed to call the Admin API for one shop
type APISession struct {
	ShopDomain  string
	AccessToken string
}
