package application

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

// mockShopifyClient is a func-field fake of ports.ShopifyClient
type mockShopifyClient struct {
	RESTFunc                   func(ctx context.Context, session domain.APISession, req ports.RESTRequest) (*ports.RESTResponse, error)
	GenerateAuthURLFunc        func(shop string, scopes []string, redirectURI string, state string) (string, error)
	ExchangeTokenFunc          func(ctx context.Context, shop string, code string) (string, error)
	VerifyAuthorizationURLFunc func(u *url.URL) (bool, error)

	mu       sync.Mutex
	requests []ports.RESTRequest
}

func (m *mockShopifyClient) REST(ctx context.Context, session domain.APISession, req ports.RESTRequest) (*ports.RESTResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.RESTFunc == nil {
		return &ports.RESTResponse{Status: http.StatusOK, Body: json.RawMessage(`{}`)}, nil
	}
	return m.RESTFunc(ctx, session, req)
}

func (m *mockShopifyClient) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	if m.GenerateAuthURLFunc == nil {
		return "https://" + shop + "/admin/oauth/authorize?state=" + state, nil
	}
	return m.GenerateAuthURLFunc(shop, scopes, redirectURI, state)
}

func (m *mockShopifyClient) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	if m.ExchangeTokenFunc == nil {
		return "shpat_test_token_0123456789", nil
	}
	return m.ExchangeTokenFunc(ctx, shop, code)
}

func (m *mockShopifyClient) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	if m.VerifyAuthorizationURLFunc == nil {
		return true, nil
	}
	return m.VerifyAuthorizationURLFunc(u)
}

func (m *mockShopifyClient) VerifyWebhookRequest(r *http.Request) bool {
	return true
}

func (m *mockShopifyClient) calls() []ports.RESTRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.RESTRequest(nil), m.requests...)
}

// restRoutes answers REST calls keyed by "METHOD path". Unrouted calls get a 404.
func restRoutes(routes map[string]func(req ports.RESTRequest) (*ports.RESTResponse, error)) func(context.Context, domain.APISession, ports.RESTRequest) (*ports.RESTResponse, error) {
	return func(ctx context.Context, session domain.APISession, req ports.RESTRequest) (*ports.RESTResponse, error) {
		if route, ok := routes[req.Method+" "+req.Path]; ok {
			return route(req)
		}
		return &ports.RESTResponse{Status: http.StatusNotFound, Body: json.RawMessage(`{"errors":"Not Found"}`), Errors: true}, nil
	}
}

func okJSON(body string) func(ports.RESTRequest) (*ports.RESTResponse, error) {
	return func(ports.RESTRequest) (*ports.RESTResponse, error) {
		return &ports.RESTResponse{Status: http.StatusOK, Body: json.RawMessage(body)}, nil
	}
}

func errorJSON(status int, body string) func(ports.RESTRequest) (*ports.RESTResponse, error) {
	return func(ports.RESTRequest) (*ports.RESTResponse, error) {
		return &ports.RESTResponse{Status: status, Body: json.RawMessage(body), Errors: true}, nil
	}
}

// mockShopRepository keeps shops in memory; the Err fields force failures
type mockShopRepository struct {
	mu    sync.Mutex
	shops map[string]*domain.Shop

	GetErr   error
	SaveErr  error
	StampErr error

	stamps []*time.Time
}

func newMockShopRepository(shops ...*domain.Shop) *mockShopRepository {
	m := &mockShopRepository{shops: make(map[string]*domain.Shop)}
	for _, shop := range shops {
		m.shops[shop.Domain] = shop
	}
	return m
}

func (m *mockShopRepository) SaveShop(ctx context.Context, shop *domain.Shop) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *shop
	m.shops[shop.Domain] = &copied
	return nil
}

func (m *mockShopRepository) GetShopByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shops[shopDomain], nil
}

func (m *mockShopRepository) GetShopByID(ctx context.Context, id int64) (*domain.Shop, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamps = append(m.stamps, at)
	if m.StampErr != nil {
		return m.StampErr
	}
	for _, shop := range m.shops {
		if shop.ID == id {
			shop.LLMGeneratedAt = at
		}
	}
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

// mockArtifactStore is an in-memory ports.ArtifactStore
type mockArtifactStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	PutErr    error
	GetErr    error
	ExistsErr error
	puts      int
}

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{objects: make(map[string][]byte)}
}

func (m *mockArtifactStore) Put(ctx context.Context, key string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.objects[key] = append([]byte(nil), content...)
	return nil
}

func (m *mockArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return content, nil
}

func (m *mockArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
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

// mockSessionRepository keeps OAuth handshakes in memory
type mockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*domain.Session)}
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

// mockWebhookLog records logged events
type mockWebhookLog struct {
	mu     sync.Mutex
	events []*domain.WebhookEvent
	Err    error
}

func (m *mockWebhookLog) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

// mockJobQueue is a FIFO ports.JobQueue
type mockJobQueue struct {
	mu         sync.Mutex
	jobs       []*domain.Job
	EnqueueErr error
	DequeueErr error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *domain.Job) error {
	if m.EnqueueErr != nil {
		return m.EnqueueErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockJobQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Job, error) {
	if m.DequeueErr != nil {
		return nil, m.DequeueErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.jobs) == 0 {
		return nil, nil
	}
	job := m.jobs[0]
	m.jobs = m.jobs[1:]
	return job, nil
}

// mockDispatcher records dispatched events
type mockDispatcher struct {
	mu           sync.Mutex
	events       []*domain.WebhookEvent
	DispatchFunc func(ctx context.Context, event *domain.WebhookEvent) error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.DispatchFunc == nil {
		return nil
	}
	return m.DispatchFunc(ctx, event)
}

func (m *mockDispatcher) topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var topics []string
	for _, event := range m.events {
		topics = append(topics, event.Topic)
	}
	return topics
}

// mockHandler is a func-field WebhookHandler
type mockHandler struct {
	topics     []string
	HandleFunc func(ctx context.Context, event *domain.WebhookEvent) error
	handled    int
}

func (m *mockHandler) CanHandle(topic string) bool {
	for _, t := range m.topics {
		if t == topic {
			return true
		}
	}
	return false
}

func (m *mockHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	m.handled++
	if m.HandleFunc == nil {
		return nil
	}
	return m.HandleFunc(ctx, event)
}
