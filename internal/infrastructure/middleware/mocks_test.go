package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"
)

type mockShopRepository struct {
	GetShopByDomainFunc func(ctx context.Context, shopDomain string) (*domain.Shop, error)
}

func (m *mockShopRepository) SaveShop(ctx context.Context, shop *domain.Shop) error { return nil }

func (m *mockShopRepository) GetShopByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	if m.GetShopByDomainFunc == nil {
		return nil, nil
	}
	return m.GetShopByDomainFunc(ctx, shopDomain)
}

func (m *mockShopRepository) GetShopByID(ctx context.Context, id int64) (*domain.Shop, error) {
	return nil, nil
}

func (m *mockShopRepository) SetLLMGeneratedAt(ctx context.Context, id int64, at *time.Time) error {
	return nil
}

func (m *mockShopRepository) DeleteShop(ctx context.Context, id int64) error { return nil }

type mockShopifyClient struct {
	VerifyAuthorizationURLFunc func(u *url.URL) (bool, error)
}

func (m *mockShopifyClient) REST(ctx context.Context, session domain.APISession, req ports.RESTRequest) (*ports.RESTResponse, error) {
	return nil, nil
}

func (m *mockShopifyClient) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	return "", nil
}

func (m *mockShopifyClient) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	return "", nil
}

func (m *mockShopifyClient) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	if m.VerifyAuthorizationURLFunc == nil {
		return false, nil
	}
	return m.VerifyAuthorizationURLFunc(u)
}

func (m *mockShopifyClient) VerifyWebhookRequest(r *http.Request) bool { return false }
