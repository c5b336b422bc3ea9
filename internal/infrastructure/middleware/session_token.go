package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// SessionClaims are the claims of an App Bridge session token
type SessionClaims struct {
	Dest string `json:"dest"`
	Sid  string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// SessionConfig configures merchant session authentication
type SessionConfig struct {
	APIKey    string
	APISecret string
	Shops     ports.ShopRepository
	Shopify   ports.ShopifyClient
	Logger    zerolog.Logger
}

// ShopSession authenticates the merchant either by an App Bridge session token
// in the Authorization header or by a signed admin query string. The shop is
// stored in the request context; an authenticated shop missing from the
// directory leaves the context empty.
func ShopSession(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shopDomain, err := authenticate(cfg, r)
			if err != nil {
				cfg.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Session authentication failed")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			shop, err := cfg.Shops.GetShopByDomain(r.Context(), shopDomain)
			if err != nil {
				cfg.Logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to load shop for session")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if shop == nil {
				cfg.Logger.Info().Str("shop", shopDomain).Msg("Authenticated shop is not installed")
				next.ServeHTTP(w, r.WithContext(domain.WithShopDomain(r.Context(), shopDomain)))
				return
			}

			ctx := domain.WithShopDomain(r.Context(), shopDomain)
			next.ServeHTTP(w, r.WithContext(domain.WithShop(ctx, shop)))
		})
	}
}

func authenticate(cfg SessionConfig, r *http.Request) (string, error) {
	if token := extractToken(r); token != "" {
		claims, err := ValidateSessionToken(token, cfg.APIKey, cfg.APISecret)
		if err != nil {
			return "", err
		}
		return shopFromDest(claims.Dest)
	}

	query := r.URL.Query()
	if query.Get("hmac") == "" || query.Get("shop") == "" {
		return "", errors.New("no session token or signed query")
	}
	ok, err := cfg.Shopify.VerifyAuthorizationURL(r.URL)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("invalid query signature")
	}
	shop := query.Get("shop")
	if !domain.ValidShopDomain(shop) {
		return "", fmt.Errorf("invalid shop %q", shop)
	}
	return shop, nil
}

// ValidateSessionToken verifies an App Bridge session token signed with the app secret
func ValidateSessionToken(tokenString, apiKey, apiSecret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(apiSecret), nil
	},
		jwt.WithAudience(apiKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// shopFromDest extracts the shop domain from the dest claim, e.g. "https://x.myshopify.com"
func shopFromDest(dest string) (string, error) {
	u, err := url.Parse(dest)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid dest claim %q", dest)
	}
	if !domain.ValidShopDomain(u.Host) {
		return "", fmt.Errorf("invalid shop in dest claim %q", dest)
	}
	return u.Host, nil
}

func extractToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:7]) == "BEARER " {
		return bearer[7:]
	}
	return ""
}
