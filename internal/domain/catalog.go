package domain

import "strings"

// ShopInfo is the shop metadata returned by the Admin API shop endpoint.
// Timestamps are kept exactly as the API returned them.
type ShopInfo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Domain        string `json:"domain"`
	MyshopifyHost string `json:"myshopify_domain"`
	PrimaryLocale string `json:"primary_locale"`
	Currency      string `json:"currency"`
	IANATimezone  string `json:"iana_timezone"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// Product is a catalog entry as fetched for one generation run
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Handle      string    `json:"handle"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	UpdatedAt   string    `json:"updated_at"`
	Variants    []Variant `json:"variants"`
	Images      []Image   `json:"images"`
}

// IsActive reports whether the product is published as active
func (p Product) IsActive() bool {
	return strings.EqualFold(p.Status, "active")
}

// Variant inventory policies
const (
	InventoryPolicyDeny     = "deny"
	InventoryPolicyContinue = "continue"
)

// DefaultVariantTitle is the title Shopify gives the only variant of a product without options
const DefaultVariantTitle = "Default Title"

// Variant is a purchasable option of a product
type Variant struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	InventoryPolicy   string `json:"inventory_policy"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// IsAvailable reports whether the variant can be bought
func (v Variant) IsAvailable() bool {
	return v.InventoryQuantity > 0 || v.InventoryPolicy == InventoryPolicyContinue
}

// Image is a product image
type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}
