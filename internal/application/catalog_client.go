package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

const (
	productPageLimit = 250
	productFields    = "id,title,handle,body_html,vendor,product_type,updated_at,status,variants,images"
)

// CatalogClient reads shop metadata and products from the Admin API and hands
// back plain domain values.
type CatalogClient struct {
	shopify ports.ShopifyClient
	logger  zerolog.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(shopify ports.ShopifyClient, logger zerolog.Logger) *CatalogClient {
	return &CatalogClient{
		shopify: shopify,
		logger:  logger,
	}
}

// FetchShop returns the shop metadata
func (c *CatalogClient) FetchShop(ctx context.Context, session domain.APISession) (*domain.ShopInfo, error) {
	var payload struct {
		Shop domain.ShopInfo `json:"shop"`
	}
	if err := c.get(ctx, session, "shop.json", nil, &payload); err != nil {
		return nil, err
	}
	return &payload.Shop, nil
}

// FetchProducts returns up to 250 products with the fields the renderer needs.
// A shop without products yields an empty slice.
func (c *CatalogClient) FetchProducts(ctx context.Context, session domain.APISession) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(productPageLimit))
	query.Set("fields", productFields)

	var payload struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.get(ctx, session, "products.json", query, &payload); err != nil {
		return nil, err
	}
	if payload.Products == nil {
		return []domain.Product{}, nil
	}
	return payload.Products, nil
}

func (c *CatalogClient) get(ctx context.Context, session domain.APISession, path string, query url.Values, out interface{}) error {
	if session.AccessToken == "" {
		return domain.NewError(domain.KindAuthenticationMissing,
			"Shop is not properly authenticated. Missing access token. Please re-install the app.", nil)
	}

	resp, err := c.shopify.REST(ctx, session, ports.RESTRequest{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
	if err != nil {
		c.logger.Error().Err(err).Str("shop", session.ShopDomain).Str("path", path).Msg("Error connecting to Shopify API")
		return domain.NewError(domain.KindTransport, "Error connecting to Shopify API: "+err.Error(), err)
	}

	if resp.Errors || resp.Status >= http.StatusBadRequest {
		return c.classify(session, path, resp)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return domain.NewError(domain.KindUpstream, fmt.Sprintf("Unexpected response from Shopify for %s", path), err)
	}
	return nil
}

// classify maps an API-reported error onto the error taxonomy
func (c *CatalogClient) classify(session domain.APISession, path string, resp *ports.RESTResponse) error {
	body := errorMessage(resp.Body)

	if resp.Status == http.StatusUnauthorized {
		c.logger.Error().
			Str("shop", session.ShopDomain).
			Bool("has_token", session.AccessToken != "").
			Int("token_length", len(session.AccessToken)).
			Str("error", body).
			Msg("Shopify API authentication failed")
		return &domain.Error{
			Kind: domain.KindAuthenticationInvalid,
			Message: "Authentication failed. The access token might be invalid or expired. " +
				"Please ensure: 1) The app was properly installed, 2) The API key/secret matches the app credentials. " +
				"Error: " + body,
			Status: resp.Status,
			Body:   body,
		}
	}

	c.logger.Error().
		Str("shop", session.ShopDomain).
		Str("path", path).
		Int("status", resp.Status).
		Str("body", body).
		Msg("Error fetching from Shopify")
	return &domain.Error{
		Kind:    domain.KindUpstream,
		Message: fmt.Sprintf("Error fetching %s: %s", path, body),
		Status:  resp.Status,
		Body:    body,
	}
}

// errorMessage extracts the "errors" member of an error body, falling back to the raw body
func errorMessage(body json.RawMessage) string {
	if len(body) == 0 {
		return "Unknown error"
	}
	var payload struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return string(body)
	}
	var message string
	if err := json.Unmarshal(payload.Errors, &message); err == nil {
		return message
	}
	return string(payload.Errors)
}
