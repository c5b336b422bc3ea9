package ports

import (
	"context"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
)

// ShopRepository is the shop directory. Lookups return nil, nil when no shop matches.
type ShopRepository interface {
	SaveShop(ctx context.Context, shop *domain.Shop) error
	GetShopByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
	GetShopByID(ctx context.Context, id int64) (*domain.Shop, error)
	SetLLMGeneratedAt(ctx context.Context, id int64, at *time.Time) error
	DeleteShop(ctx context.Context, id int64) error
}

// WebhookLogRepository records received webhooks
type WebhookLogRepository interface {
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
}

// SessionRepository stores OAuth install handshakes until the callback arrives
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	// GetSession returns nil, nil for unknown or expired states
	GetSession(ctx context.Context, state string) (*domain.Session, error)
	DeleteSession(ctx context.Context, state string) error
}
