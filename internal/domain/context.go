package domain

import "context"

type contextKey string

const shopContextKey contextKey = "shop"

// WithShop stores the authenticated shop in the context
func WithShop(ctx context.Context, shop *Shop) context.Context {
	return context.WithValue(ctx, shopContextKey, shop)
}

// ShopFromContext returns the authenticated shop, or nil
func ShopFromContext(ctx context.Context) *Shop {
	if shop, ok := ctx.Value(shopContextKey).(*Shop); ok {
		return shop
	}
	return nil
}

const shopDomainContextKey contextKey = "shop_domain"

// WithShopDomain stores the authenticated shop domain, which may not be installed
func WithShopDomain(ctx context.Context, shopDomain string) context.Context {
	return context.WithValue(ctx, shopDomainContextKey, shopDomain)
}

// ShopDomainFromContext returns the authenticated shop domain, or ""
func ShopDomainFromContext(ctx context.Context) string {
	if shopDomain, ok := ctx.Value(shopDomainContextKey).(string); ok {
		return shopDomain
	}
	return ""
}
