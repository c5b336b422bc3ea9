package domain

import (
	"regexp"
	"time"
)

var shopDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-]*\.myshopify\.com$`)

// ValidShopDomain reports whether shop looks like a myshopify domain
func ValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

// Shop represents a merchant store that installed the app.
// ID is the Shopify-assigned shop id and stays stable across reinstalls;
// Domain is the unique myshopify domain.
type Shop struct {
	ID             int64      `json:"id"`
	Domain         string     `json:"domain"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	AccessToken    string     `json:"-"`
	Scopes         []string   `json:"scopes"`
	LLMGeneratedAt *time.Time `json:"llm_generated_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasAccessToken reports whether the shop can make Admin API calls
func (s *Shop) HasAccessToken() bool {
	return s != nil && s.AccessToken != ""
}

// HasArtifact reports whether an llms.txt has been generated for the shop.
// The timestamp is kept in step with the artifact store on a best-effort basis only.
func (s *Shop) HasArtifact() bool {
	return s != nil && s.LLMGeneratedAt != nil
}

// APISession returns the Admin API session for the shop
func (s *Shop) APISession() APISession {
	return APISession{
		ShopDomain:  s.Domain,
		AccessToken: s.AccessToken,
	}
}

// BaseURL is the public storefront URL used for product links
func (s *Shop) BaseURL() string {
	return "https://" + s.Domain
}

// TokenPreview returns the first characters of the access token for diagnostics
func (s *Shop) TokenPreview() string {
	if s == nil || s.AccessToken == "" {
		return "empty"
	}
	if len(s.AccessToken) <= 10 {
		return s.AccessToken[:len(s.AccessToken)/2] + "..."
	}
	return s.AccessToken[:10] + "..."
}
