package ports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/msmoosa/llm-shopify/internal/domain"
)

// RESTRequest is one Admin REST call. Path is relative to the versioned admin prefix, e.g. "products.json".
type RESTRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// RESTResponse mirrors what the Admin API answered. Errors is set for any non-2xx reply;
// Body then holds the error message reported by Shopify.
type RESTResponse struct {
	Status int
	Body   json.RawMessage
	Errors bool
}

// ShopifyClient defines the Shopify operations the app depends on
type ShopifyClient interface {
	// REST issues an Admin API request. A transport failure is returned as an error;
	// an error reported by Shopify comes back as a response with Errors set.
	REST(ctx context.Context, session domain.APISession, req RESTRequest) (*RESTResponse, error)

	// Authentication
	GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error)
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)
	VerifyAuthorizationURL(u *url.URL) (bool, error)
	VerifyWebhookRequest(r *http.Request) bool
}
