package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/msmoosa/llm-shopify/internal/application"
	"github.com/msmoosa/llm-shopify/internal/application/webhook_handlers"
	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

const testShopHeader = "X-Test-Shop"

type testServer struct {
	router  http.Handler
	shopify *mockShopifyClient
	shops   *mockShopRepository
	store   *mockArtifactStore
	log     *mockWebhookLog
}

func restFixture(ctx context.Context, session domain.APISession, req ports.RESTRequest) (*ports.RESTResponse, error) {
	switch req.Method + " " + req.Path {
	case "GET shop.json":
		return &ports.RESTResponse{Status: http.StatusOK, Body: json.RawMessage(`{"shop":{"id":1001,"name":"Widgets","currency":"USD"}}`)}, nil
	case "GET products.json":
		return &ports.RESTResponse{Status: http.StatusOK, Body: json.RawMessage(`{"products":[{"id":1,"title":"Blue Mug","handle":"blue-mug","status":"active","variants":[{"id":2,"title":"Default Title","price":"9.99"}]}]}`)}, nil
	case "GET redirects.json":
		return &ports.RESTResponse{Status: http.StatusOK, Body: json.RawMessage(`{"redirects":[]}`)}, nil
	}
	return &ports.RESTResponse{Status: http.StatusCreated, Body: json.RawMessage(`{}`)}, nil
}

// testSessionAuth trusts a test header in place of App Bridge authentication
func testSessionAuth(shops ports.ShopRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shopDomain := r.Header.Get(testShopHeader)
			if shopDomain == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := domain.WithShopDomain(r.Context(), shopDomain)
			if shop, _ := shops.GetShopByDomain(ctx, shopDomain); shop != nil {
				ctx = domain.WithShop(ctx, shop)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestServer(shops ...*domain.Shop) *testServer {
	logger := zerolog.Nop()
	ts := &testServer{
		shopify: &mockShopifyClient{RESTFunc: restFixture},
		shops:   newMockShopRepository(shops...),
		store:   &mockArtifactStore{objects: make(map[string][]byte)},
		log:     &mockWebhookLog{},
	}

	dispatcher := application.NewWebhookDispatcher(logger)
	dispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, ts.shops, ts.store))
	dispatcher.RegisterHandler(webhook_handlers.NewShopRedactHandler(logger, ts.shops, ts.store))

	catalog := application.NewCatalogClient(ts.shopify, logger)
	handlers := NewHandlers(
		application.NewGenerationService(catalog, application.NewRedirectRegistrar(ts.shopify, "apps/sellgpt/llms", logger), ts.store, ts.shops, logger),
		application.NewRetrievalService(ts.shops, ts.store, logger),
		application.NewInstallService(ts.shopify, catalog, ts.shops, &mockSessionRepository{sessions: map[string]*domain.Session{}}, dispatcher, nil,
			[]string{"read_products"}, "https://app.example.com/auth/callback", 0, logger),
		application.NewWebhookService(ts.log, dispatcher, nil, logger),
		ts.shopify,
		"api-key",
		logger,
	)

	ts.router = NewRouter(Config{
		Handlers:    handlers,
		SessionAuth: testSessionAuth(ts.shops),
	})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func widgets() *domain.Shop {
	return &domain.Shop{ID: 1001, Domain: "widgets.myshopify.com", Name: "Widgets", AccessToken: "shpat_abc"}
}

func TestHealth(t *testing.T) {
	rec := newTestServer().do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateEndpoint(t *testing.T) {
	ts := newTestServer(widgets())

	req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
	req.Header.Set(testShopHeader, "widgets.myshopify.com")
	rec := ts.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	var result application.GenerationResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !result.Success || result.Filename != "llm/1001.txt" || result.RedirectURL != "https://widgets.myshopify.com/apps/sellgpt/llms" {
		t.Errorf("unexpected result %+v", result)
	}
	if _, ok := ts.store.objects["llm/1001.txt"]; !ok {
		t.Error("artifact should be stored")
	}
}

func TestGenerateEndpointErrors(t *testing.T) {
	noToken := widgets()
	noToken.AccessToken = ""

	tests := []struct {
		name       string
		shops      []*domain.Shop
		header     string
		wantStatus int
		wantBody   string
	}{
		{"unauthenticated", nil, "", http.StatusUnauthorized, "Unauthorized"},
		{"missing token", []*domain.Shop{noToken}, "widgets.myshopify.com", http.StatusForbidden, "Missing access token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(tt.shops...)
			req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
			if tt.header != "" {
				req.Header.Set(testShopHeader, tt.header)
			}
			rec := ts.do(req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.wantBody)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("errors should be plain text, got %q", ct)
			}
		})
	}
}

func TestShowLLMs(t *testing.T) {
	ts := newTestServer(widgets())
	ts.store.objects["llm/1001.txt"] = []byte("# Widgets (https://widgets.myshopify.com)\n")

	for _, path := range []string{"/llms", "/app/sellgpt/llms"} {
		rec := ts.do(httptest.NewRequest(http.MethodGet, path+"?shop=widgets.myshopify.com", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
			t.Errorf("%s: unexpected content type %q", path, ct)
		}
		if rec.Body.String() != "# Widgets (https://widgets.myshopify.com)\n" {
			t.Errorf("%s: body should be returned verbatim, got %q", path, rec.Body.String())
		}
	}
}

func TestShowLLMsErrors(t *testing.T) {
	ts := newTestServer(widgets())

	tests := []struct {
		query      string
		wantStatus int
		wantBody   string
	}{
		{"", http.StatusBadRequest, "Missing shop parameter"},
		{"?shop=ghost.myshopify.com", http.StatusNotFound, "Shop not found: ghost.myshopify.com"},
		{"?shop=widgets.myshopify.com", http.StatusNotFound, "has not been generated"},
	}
	for _, tt := range tests {
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/llms"+tt.query, nil))
		if rec.Code != tt.wantStatus || !strings.Contains(rec.Body.String(), tt.wantBody) {
			t.Errorf("query %q: got %d %q, want %d containing %q", tt.query, rec.Code, rec.Body.String(), tt.wantStatus, tt.wantBody)
		}
	}
}

func TestHome(t *testing.T) {
	ts := newTestServer(widgets())
	ts.store.objects["llm/1001.txt"] = []byte("x")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(testShopHeader, "widgets.myshopify.com")
	rec := ts.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"LLMs.txt for Widgets", "Regenerate", "https://widgets.myshopify.com/llms.txt", `content="api-key"`} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestHomeRedirectsUninstalledShopToInstall(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(testShopHeader, "new.myshopify.com")
	rec := ts.do(req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth?shop=new.myshopify.com" {
		t.Errorf("unexpected location %q", loc)
	}
}

func TestBeginAuth(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/auth?shop=widgets.myshopify.com", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "https://widgets.myshopify.com/admin/oauth/authorize") {
		t.Errorf("unexpected location %q", loc)
	}

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/auth?shop=evil.example.com", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid shop: expected 400, got %d", rec.Code)
	}
}

func TestWebhookUninstallRemovesShopAndArtifact(t *testing.T) {
	ts := newTestServer(widgets())
	ts.store.objects["llm/1001.txt"] = []byte("x")

	req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(`{"id":1001,"myshopify_domain":"widgets.myshopify.com"}`))
	req.Header.Set("X-Shopify-Topic", "app/uninstalled")
	req.Header.Set("X-Shopify-Shop-Domain", "widgets.myshopify.com")
	req.Header.Set("X-Shopify-Webhook-Id", "wh-1")
	rec := ts.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := ts.store.objects["llm/1001.txt"]; ok {
		t.Error("artifact should be deleted")
	}
	if _, ok := ts.shops.shops["widgets.myshopify.com"]; ok {
		t.Error("shop should be deleted")
	}
	if len(ts.log.events) != 1 || ts.log.events[0].ID != "wh-1" {
		t.Errorf("webhook should be logged with its delivery id, got %+v", ts.log.events)
	}
}

func TestWebhookShopFromPayload(t *testing.T) {
	ts := newTestServer(widgets())
	ts.store.objects["llm/1001.txt"] = []byte("x")

	req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(`{"shop_id":1001,"shop_domain":"widgets.myshopify.com"}`))
	req.Header.Set("X-Shopify-Topic", "shop/redact")
	rec := ts.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ts.log.events[0].Shop != "widgets.myshopify.com" {
		t.Errorf("shop should be read from the payload, got %q", ts.log.events[0].Shop)
	}
	if _, ok := ts.store.objects["llm/1001.txt"]; ok {
		t.Error("artifact should be deleted inline without a queue")
	}
}

func TestWebhookRejects(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(`{}`))
	if rec := ts.do(req); rec.Code != http.StatusBadRequest {
		t.Errorf("missing topic: expected 400, got %d", rec.Code)
	}

	ts.shopify.VerifyWebhookRequestFunc = func(*http.Request) bool { return false }
	req = httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(`{}`))
	req.Header.Set("X-Shopify-Topic", "app/uninstalled")
	if rec := ts.do(req); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad signature: expected 401, got %d", rec.Code)
	}
	if len(ts.log.events) != 0 {
		t.Error("unverified webhooks must not be recorded")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newTestServer().do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
