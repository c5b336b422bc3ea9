package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"
)

type mockShopifyClient struct {
	RESTFunc                  func(ctx context.Context, session domain.APISession, req ports.RESTRequest) (*ports.RESTResponse, error)
	VerifyWebhookRequestFunc func(r *http.Request) bool
}

func (m *mockShopifyClient) REST(ctx context.Context, session domain.APISession, req ports.RESTRequest) (*ports.RESTResponse, error) {
	if m.RESTFunc == nil {
		return &ports.RESTResponse{Status: http.StatusOK, Body: json.RawMessage(`{}`)}, nil
	}
	return m.RESTFunc(ctx, session, req)
}

func (m *mockShopifyClient) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state, nil
}

func (m *mockShopifyClient) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	return "shpat_new", nil
}

func (m *mockShopifyClient) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	return true, nil
}

func (m *mockShopifyClient) VerifyWebhookRequest(r *http.Request) bool {
	if m.VerifyWebhookRequestFunc == nil {
		return true
	}
	return m.VerifyWebhookRequestFunc(r)
}

type mockShopRepository struct {
	mu    sync.Mutex
	shops map[string]*domain.Shop
}

func newMockShopRepository(shops ...*domain.Shop) *mockShopRepository {
	m := &mockShopRepository{shops: make(map[string]*domain.Shop)}
	for _, shop := range shops {
		m.shops[shop.Domain] = shop
	}
	return m
}

func (m *mockShopRepository) SaveShop(ctx context.Context, shop *domain.Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shops[shop.Domain] = shop
	return nil
}

func (m *mockShopRepository) GetShopByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shops[shopDomain], nil
}

func (m *mockShopRepository) GetShopByID(ctx context.Context, id int64) (*domain.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, shop := range m.shops {
		if shop.ID == id {
			return shop, nil
		}
	}
	return nil, nil
}

func (m *mockShopRepository) SetLLMGeneratedAt(ctx context.Context, id int64, at *time.Time) error {
	return nil
}

func (m *mockShopRepository) DeleteShop(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, shop := range m.shops {
		if shop.ID == id {
			delete(m.shops, key)
		}
	}
	return nil
}

type mockArtifactStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *mockArtifactStore) Put(ctx context.Context, key string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = content
	return nil
}

func (m *mockArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return content, nil
}

func (m *mockArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *mockArtifactStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type mockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func (m *mockSessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.State] = session
	return nil
}

func (m *mockSessionRepository) GetSession(ctx context.Context, state string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[state], nil
}

func (m *mockSessionRepository) DeleteSession(ctx context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, state)
	return nil
}

type mockWebhookLog struct {
	mu     sync.Mutex
	events []*domain.WebhookEvent
}

func (m *mockWebhookLog) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}
