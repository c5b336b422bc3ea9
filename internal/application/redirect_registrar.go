package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

// WellKnownPath is the storefront path redirected to the app proxy
const WellKnownPath = "/llms.txt"

type redirect struct {
	ID     int64  `json:"id,omitempty"`
	Path   string `json:"path"`
	Target string `json:"target"`
}

// RedirectRegistrar points the storefront /llms.txt at the app proxy
type RedirectRegistrar struct {
	shopify   ports.ShopifyClient
	proxyPath string
	logger    zerolog.Logger
}

// NewRedirectRegistrar creates a new redirect registrar. proxyPath is the app proxy
// path on the storefront, e.g. "apps/sellgpt/llms".
func NewRedirectRegistrar(shopify ports.ShopifyClient, proxyPath string, logger zerolog.Logger) *RedirectRegistrar {
	return &RedirectRegistrar{
		shopify:   shopify,
		proxyPath: strings.Trim(proxyPath, "/"),
		logger:    logger,
	}
}

// Target is the URL /llms.txt is redirected to
func (r *RedirectRegistrar) Target(shopDomain string) string {
	return fmt.Sprintf("https://%s/%s", shopDomain, r.proxyPath)
}

// EnsureRedirect creates or updates the /llms.txt redirect. Any failure is logged
// and returned as a warning only.
func (r *RedirectRegistrar) EnsureRedirect(ctx context.Context, session domain.APISession, shopDomain string) (string, error) {
	target := r.Target(shopDomain)

	existing, err := r.find(ctx, session)
	if err != nil {
		r.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to look up llms.txt redirect")
		return target, err
	}

	if existing != nil {
		err = r.call(ctx, session, http.MethodPut, fmt.Sprintf("redirects/%d.json", existing.ID),
			redirect{ID: existing.ID, Path: WellKnownPath, Target: target})
	} else {
		err = r.call(ctx, session, http.MethodPost, "redirects.json",
			redirect{Path: WellKnownPath, Target: target})
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("shop", shopDomain).Str("target", target).Msg("Failed to register llms.txt redirect")
		return target, err
	}

	r.logger.Info().Str("shop", shopDomain).Str("target", target).Bool("updated", existing != nil).Msg("Registered llms.txt redirect")
	return target, nil
}

func (r *RedirectRegistrar) find(ctx context.Context, session domain.APISession) (*redirect, error) {
	query := url.Values{}
	query.Set("path", strings.TrimPrefix(WellKnownPath, "/"))
	query.Set("limit", "1")

	resp, err := r.shopify.REST(ctx, session, ports.RESTRequest{Method: http.MethodGet, Path: "redirects.json", Query: query})
	if err != nil {
		return nil, err
	}
	if resp.Errors {
		return nil, fmt.Errorf("redirect lookup failed: status %d, body: %s", resp.Status, errorMessage(resp.Body))
	}

	var payload struct {
		Redirects []redirect `json:"redirects"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode redirects: %w", err)
	}
	if len(payload.Redirects) == 0 {
		return nil, nil
	}
	return &payload.Redirects[0], nil
}

func (r *RedirectRegistrar) call(ctx context.Context, session domain.APISession, method, path string, rd redirect) error {
	resp, err := r.shopify.REST(ctx, session, ports.RESTRequest{
		Method: method,
		Path:   path,
		Body:   map[string]redirect{"redirect": rd},
	})
	if err != nil {
		return err
	}
	if resp.Errors {
		return fmt.Errorf("%s %s failed: status %d, body: %s", method, path, resp.Status, errorMessage(resp.Body))
	}
	return nil
}
