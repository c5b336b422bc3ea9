package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/msmoosa/llm-shopify/internal/application"
	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/home.html"))

// Handlers serves the merchant-facing and Shopify-facing endpoints
type Handlers struct {
	generation *application.GenerationService
	retrieval  *application.RetrievalService
	install    *application.InstallService
	webhooks   *application.WebhookService
	shopify    ports.ShopifyClient
	apiKey     string
	logger     zerolog.Logger
}

// NewHandlers creates the HTTP handlers
func NewHandlers(
	generation *application.GenerationService,
	retrieval *application.RetrievalService,
	install *application.InstallService,
	webhooks *application.WebhookService,
	shopify ports.ShopifyClient,
	apiKey string,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		generation: generation,
		retrieval:  retrieval,
		install:    install,
		webhooks:   webhooks,
		shopify:    shopify,
		apiKey:     apiKey,
		logger:     logger,
	}
}

type homeView struct {
	ShopName    string
	ShopDomain  string
	APIKey      string
	Generated   bool
	GeneratedAt string
	LLMsURL     string
}

// Home renders the status page for the authenticated shop
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shop := domain.ShopFromContext(ctx)
	if shop == nil {
		if shopDomain := domain.ShopDomainFromContext(ctx); shopDomain != "" {
			http.Redirect(w, r, "/auth?shop="+url.QueryEscape(shopDomain), http.StatusFound)
			return
		}
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	generated, err := h.retrieval.Status(ctx, shop)
	if err != nil {
		h.logger.Error().Err(err).Str("shop", shop.Domain).Msg("Failed to check llms.txt status")
		writeError(w, err)
		return
	}

	view := homeView{
		ShopName:   shop.Name,
		ShopDomain: shop.Domain,
		APIKey:     h.apiKey,
		Generated:  generated,
		LLMsURL:    shop.BaseURL() + application.WellKnownPath,
	}
	if shop.LLMGeneratedAt != nil {
		view.GeneratedAt = shop.LLMGeneratedAt.UTC().Format(time.RFC1123)
	}

	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, view); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render home page")
		writeText(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Generate runs the generation pipeline for the authenticated shop
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	result, err := h.generation.Generate(r.Context(), domain.ShopFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ShowLLMs returns the stored llms.txt of the shop named by the shop parameter
func (h *Handlers) ShowLLMs(w http.ResponseWriter, r *http.Request) {
	content, err := h.retrieval.Show(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// BeginAuth redirects the merchant to the Shopify consent screen
func (h *Handlers) BeginAuth(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	authURL, err := h.install.BeginInstall(r.Context(), query.Get("shop"), query.Get("return_url"))
	if err != nil {
		h.logger.Error().Err(err).Str("shop", query.Get("shop")).Msg("Failed to begin install")
		writeError(w, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// AuthCallback completes the install and sends the merchant back to the app
func (h *Handlers) AuthCallback(w http.ResponseWriter, r *http.Request) {
	shop, session, err := h.install.CompleteInstall(r.Context(), r.URL)
	if err != nil {
		h.logger.Error().Err(err).Str("shop", r.URL.Query().Get("shop")).Msg("Failed to complete install")
		writeError(w, err)
		return
	}

	returnURL := session.ReturnURL
	if returnURL == "" {
		returnURL = "https://" + shop.Domain + "/admin/apps/" + h.apiKey
	}

	h.logger.Info().Str("shop", shop.Domain).Int64("shop_id", shop.ID).Str("returnURL", returnURL).Msg("Install completed")
	http.Redirect(w, r, returnURL, http.StatusFound)
}

// Webhook verifies and accepts a Shopify webhook delivery
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		h.logger.Warn().Msg("Missing X-Shopify-Topic header")
		writeText(w, http.StatusBadRequest, "Missing X-Shopify-Topic header")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read webhook payload")
		writeText(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(payload))

	if !h.shopify.VerifyWebhookRequest(r) {
		h.logger.Warn().Str("topic", topic).Msg("Webhook signature verification failed")
		writeText(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	shopDomain := r.Header.Get("X-Shopify-Shop-Domain")
	if shopDomain == "" {
		var body struct {
			ShopDomain      string `json:"shop_domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(payload, &body); err == nil {
			shopDomain = body.ShopDomain
			if shopDomain == "" {
				shopDomain = body.MyshopifyDomain
			}
		}
	}

	h.webhooks.Receive(r.Context(), &domain.WebhookEvent{
		ID:       r.Header.Get("X-Shopify-Webhook-Id"),
		Topic:    topic,
		Shop:     shopDomain,
		Payload:  payload,
		Verified: true,
	})

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, message)
}

// writeError maps a classified error onto a plain text response
func writeError(w http.ResponseWriter, err error) {
	message := domain.MessageOf(err)
	if domain.KindOf(err) == "" {
		message = "Internal server error"
	}
	writeText(w, domain.StatusOf(err), strings.TrimSpace(message))
}
