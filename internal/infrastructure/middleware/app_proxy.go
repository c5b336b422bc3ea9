package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// AppProxySignature rejects storefront proxy requests whose signature parameter
// does not match the app secret.
func AppProxySignature(apiSecret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !VerifyProxySignature(r.URL.Query(), apiSecret) {
				logger.Warn().Str("shop", r.URL.Query().Get("shop")).Msg("App proxy signature verification failed")
				http.Error(w, "Invalid signature", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VerifyProxySignature checks the app proxy signature: the hex HMAC-SHA256 of the
// sorted key=value pairs, concatenated without separators, with multiple values joined by commas.
func VerifyProxySignature(query url.Values, apiSecret string) bool {
	signature := query.Get("signature")
	if signature == "" {
		return false
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, proxyMAC(query, apiSecret))
}

func proxyMAC(query url.Values, apiSecret string) []byte {
	pairs := make([]string, 0, len(query))
	for key, values := range query {
		if key == "signature" {
			continue
		}
		pairs = append(pairs, key+"="+strings.Join(values, ","))
	}
	sort.Strings(pairs)

	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(strings.Join(pairs, "")))
	return mac.Sum(nil)
}
