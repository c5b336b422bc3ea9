package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/msmoosa/llm-shopify/internal/domain"
	"github.com/msmoosa/llm-shopify/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventDispatcher delivers lifecycle events to their handlers
type EventDispatcher interface {
	Dispatch(ctx context.Context, event *domain.WebhookEvent) error
}

// InstallService runs the OAuth install handshake and keeps the shop directory current
type InstallService struct {
	shopify     ports.ShopifyClient
	catalog     *CatalogClient
	shops       ports.ShopRepository
	sessions    ports.SessionRepository
	events      EventDispatcher
	webhooks    *WebhookRegistrar
	scopes      []string
	redirectURI string
	stateTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewInstallService creates a new install service
func NewInstallService(
	shopify ports.ShopifyClient,
	catalog *CatalogClient,
	shops ports.ShopRepository,
	sessions ports.SessionRepository,
	events EventDispatcher,
	webhooks *WebhookRegistrar,
	scopes []string,
	redirectURI string,
	stateTTL time.Duration,
	logger zerolog.Logger,
) *InstallService {
	return &InstallService{
		shopify:     shopify,
		catalog:     catalog,
		shops:       shops,
		sessions:    sessions,
		events:      events,
		webhooks:    webhooks,
		scopes:      scopes,
		redirectURI: redirectURI,
		stateTTL:    stateTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// BeginInstall stores a handshake and returns the URL to send the merchant to
func (s *InstallService) BeginInstall(ctx context.Context, shop, returnURL string) (string, error) {
	if !domain.ValidShopDomain(shop) {
		return "", domain.NewError(domain.KindBadRequest, "Invalid shop parameter", nil)
	}

	// Generate random state for CSRF protection
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	now := s.now()
	session := &domain.Session{
		Shop:      shop,
		State:     state,
		Scopes:    s.scopes,
		ReturnURL: returnURL,
		ExpiresAt: now.Add(s.stateTTL),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	authURL, err := s.shopify.GenerateAuthURL(shop, s.scopes, s.redirectURI, state)
	if err != nil {
		return "", fmt.Errorf("failed to generate auth URL: %w", err)
	}
	return authURL, nil
}

// CompleteInstall verifies the OAuth callback, exchanges the code for an offline
// token and saves the shop. The token is rotated on reinstall.
func (s *InstallService) CompleteInstall(ctx context.Context, callback *url.URL) (*domain.Shop, *domain.Session, error) {
	query := callback.Query()
	shopDomain := query.Get("shop")
	code := query.Get("code")
	state := query.Get("state")

	if shopDomain == "" || code == "" || state == "" {
		return nil, nil, domain.NewError(domain.KindBadRequest, "Missing required parameters", nil)
	}
	if !domain.ValidShopDomain(shopDomain) {
		return nil, nil, domain.NewError(domain.KindBadRequest, "Invalid shop parameter", nil)
	}

	ok, err := s.shopify.VerifyAuthorizationURL(callback)
	if err != nil || !ok {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("OAuth callback signature verification failed")
		return nil, nil, domain.NewError(domain.KindUnauthenticated, "Invalid signature", err)
	}

	session, err := s.sessions.GetSession(ctx, state)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.Shop != shopDomain || session.Expired(s.now()) {
		return nil, nil, domain.NewError(domain.KindUnauthenticated, "Invalid session", nil)
	}
	if err := s.sessions.DeleteSession(ctx, state); err != nil {
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Failed to delete OAuth session")
	}

	accessToken, err := s.shopify.ExchangeToken(ctx, shopDomain, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to exchange token")
		return nil, nil, domain.NewError(domain.KindUpstream, "Failed to complete installation", err)
	}

	s.logger.Info().
		Str("shop", shopDomain).
		Int("token_length", len(accessToken)).
		Str("token_preview", (&domain.Shop{AccessToken: accessToken}).TokenPreview()).
		Msg("Setting access token")

	info, err := s.catalog.FetchShop(ctx, domain.APISession{ShopDomain: shopDomain, AccessToken: accessToken})
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to get shop info")
		return nil, nil, err
	}

	shop, err := s.saveShop(ctx, shopDomain, accessToken, session.Scopes, info)
	if err != nil {
		return nil, nil, err
	}

	if s.webhooks != nil {
		_ = s.webhooks.EnsureSubscriptions(ctx, shop.APISession())
	}

	event := &domain.WebhookEvent{
		ID:         uuid.NewString(),
		Topic:      domain.TopicAppInstalled,
		Shop:       shop.Domain,
		ShopID:     shop.ID,
		Verified:   true,
		ReceivedAt: s.now().UTC(),
	}
	if err := s.events.Dispatch(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop.Domain).Msg("Failed to dispatch app installed event")
	}

	return shop, session, nil
}

func (s *InstallService) saveShop(ctx context.Context, shopDomain, accessToken string, scopes []string, info *domain.ShopInfo) (*domain.Shop, error) {
	existing, err := s.shops.GetShopByDomain(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	now := s.now().UTC()
	shop := &domain.Shop{
		ID:          info.ID,
		Domain:      shopDomain,
		Name:        info.Name,
		Email:       info.Email,
		AccessToken: accessToken,
		Scopes:      scopes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		shop.CreatedAt = existing.CreatedAt
		shop.LLMGeneratedAt = existing.LLMGeneratedAt
		if shop.ID == 0 {
			shop.ID = existing.ID
		}
	}

	if err := s.shops.SaveShop(ctx, shop); err != nil {
		s.logger.Error().Err(err).Str("shop", shopDomain).Msg("Failed to save shop")
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}
	return shop, nil
}
