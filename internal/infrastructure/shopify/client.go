package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	apiKey      string
	apiVersion  string
	app         goshopify.App
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      zerolog.Logger
}

// Options configures the Shopify client adapter
type Options struct {
	APIVersion  string
	RedirectURI string
	Scopes      []string
	HTTPClient  *http.Client
	RateLimiter *RateLimiter
}

// NewClient creates a new Shopify client adapter
func NewClient(apiKey, apiSecret string, opts Options, logger zerolog.Logger) ports.ShopifyClient {
	app := goshopify.App{
		ApiKey:      apiKey,
		ApiSecret:   apiSecret,
		RedirectUrl: opts.RedirectURI,
		Scope:       strings.Join(opts.Scopes, ","),
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{
		apiKey:      apiKey,
		apiVersion:  opts.APIVersion,
		app:         app,
		httpClient:  httpClient,
		rateLimiter: opts.RateLimiter,
		logger:      logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(session domain.APISession) (*goshopify.Client, error) {
	opts := []goshopify.Option{goshopify.WithHTTPClient(c.httpClient)}
	if c.apiVersion != "" {
		opts = append(opts, goshopify.WithVersion(c.apiVersion))
	}
	client, err := goshopify.NewClient(c.app, session.ShopDomain, session.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// REST issues one Admin API call. Errors reported by Shopify are folded into the
// response so callers can classify them by status.
func (c *client) REST(ctx context.Context, session domain.APISession, req ports.RESTRequest) (*ports.RESTResponse, error) {
	client, err := c.createClient(session)
	if err != nil {
		return nil, err
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx, session.ShopDomain); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	path := strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		path += "?" + req.Query.Encode()
	}

	var body json.RawMessage
	switch strings.ToUpper(req.Method) {
	case "", http.MethodGet:
		err = client.Get(ctx, path, &body, nil)
	case http.MethodPost:
		err = client.Post(ctx, path, req.Body, &body)
	case http.MethodPut:
		err = client.Put(ctx, path, req.Body, &body)
	case http.MethodDelete:
		err = client.Delete(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported method %s", req.Method)
	}

	if err != nil {
		if resp, ok := responseFromError(err); ok {
			c.logger.Debug().
				Str("shop", session.ShopDomain).
				Str("method", req.Method).
				Str("path", req.Path).
				Int("status", resp.Status).
				Msg("Shopify API returned an error")
			return resp, nil
		}
		return nil, fmt.Errorf("failed to call %s %s: %w", req.Method, req.Path, err)
	}

	return &ports.RESTResponse{Status: http.StatusOK, Body: body}, nil
}

// responseFromError turns an API-reported error into a response value
func responseFromError(err error) (*ports.RESTResponse, bool) {
	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return errorResponse(rateErr.ResponseError), true
	}
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return errorResponse(respErr), true
	}
	// Non-JSON error pages from Shopify or its edge
	var decodeErr goshopify.ResponseDecodingError
	if errors.As(err, &decodeErr) && decodeErr.Status != 0 {
		return errorResponse(goshopify.ResponseError{
			Status:  decodeErr.Status,
			Message: strings.TrimSpace(string(decodeErr.Body)),
		}), true
	}
	return nil, false
}

func errorResponse(respErr goshopify.ResponseError) *ports.RESTResponse {
	status := respErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	message := respErr.Message
	if message == "" {
		message = http.StatusText(status)
	}
	payload := map[string]interface{}{"errors": message}
	if len(respErr.Errors) > 0 {
		payload["details"] = respErr.Errors
	}
	body, _ := json.Marshal(payload)
	return &ports.RESTResponse{Status: status, Body: body, Errors: true}
}

// Authentication methods

func (c *client) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	// Shopify expects scopes to be comma-separated (no spaces)
	scopesStr := strings.Join(scopes, ",")

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		c.apiKey,
		url.QueryEscape(scopesStr),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)

	c.logger.Info().
		Str("shop", shop).
		Strs("scopes", scopes).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

func (c *client) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	ok, err := c.app.VerifyAuthorizationURL(u)
	if err != nil {
		return false, fmt.Errorf("failed to verify authorization url: %w", err)
	}
	return ok, nil
}

func (c *client) VerifyWebhookRequest(r *http.Request) bool {
	return c.app.VerifyWebhookRequest(r)
}
