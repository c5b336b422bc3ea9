package api

import (
	"net/http"

	"github.com/msmoosa/llm-shopify/internal/infrastructure/metrics"
	securitymiddleware "github.com/msmoosa/llm-shopify/internal/infrastructure/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Config holds the configuration for creating a router
type Config struct {
	Handlers       *Handlers
	SessionAuth    func(http.Handler) http.Handler
	AppProxyAuth   func(http.Handler) http.Handler
	SwaggerDocPath string
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg Config) *chi.Mux {
	h := cfg.Handlers
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", h.Health)
	r.Handle("/metrics", metrics.Handler())

	docPath := cfg.SwaggerDocPath
	if docPath == "" {
		docPath = "./docs/swagger.json"
	}
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, docPath)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// OAuth install
	r.Get("/auth", h.BeginAuth)
	r.Get("/auth/callback", h.AuthCallback)

	// Webhooks are authenticated by their HMAC header
	r.Post("/webhooks", h.Webhook)

	// Storefront retrieval, optionally behind the app proxy signature
	r.Group(func(r chi.Router) {
		if cfg.AppProxyAuth != nil {
			r.Use(cfg.AppProxyAuth)
		}
		r.Get("/llms", h.ShowLLMs)
		r.Get("/app/sellgpt/llms", h.ShowLLMs)
	})

	// Merchant routes
	r.Group(func(r chi.Router) {
		if cfg.SessionAuth != nil {
			r.Use(cfg.SessionAuth)
		}
		r.Get("/", h.Home)
		r.Get("/api/generate", h.Generate)
	})

	return r
}
