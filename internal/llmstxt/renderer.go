// Package llmstxt renders a shop catalog into the llms.txt markdown document.
package llmstxt

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/msmoosa/llm-shopify/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	defaultLocale   = "en"
	defaultCurrency = "USD"
	defaultTimezone = "UTC"
	defaultVariant  = "Default"
)

// tagPattern matches an HTML tag, including one left open at the end of the text
var tagPattern = regexp.MustCompile(`<[^>]*>?`)

// Render builds the llms.txt document for a shop. It performs no I/O and returns
// identical output for identical input.
func Render(info domain.ShopInfo, products []domain.Product, shopBaseURL string) string {
	shopBaseURL = strings.TrimRight(shopBaseURL, "/")
	host := hostOf(shopBaseURL)
	currency := orDefault(info.Currency, defaultCurrency)

	lines := []string{
		fmt.Sprintf("# %s (%s)", orDefault(info.Name, host), shopBaseURL),
		"",
		"- Domain: " + orDefault(info.Domain, host),
		"- Locale: " + orDefault(info.PrimaryLocale, defaultLocale),
		"- Currency: " + currency,
		"- Timezone: " + orDefault(info.IANATimezone, defaultTimezone),
	}
	if info.CreatedAt != "" {
		lines = append(lines, "- Created: "+info.CreatedAt)
	}
	if info.Email != "" {
		lines = append(lines, "- Contact Email: "+info.Email)
	}
	if info.UpdatedAt != "" {
		lines = append(lines, "- Updated: "+info.UpdatedAt)
	}

	lines = append(lines, "", "## Products", "")
	for _, product := range products {
		lines = append(lines, productLines(product, shopBaseURL, currency)...)
	}

	return strings.Join(lines, "\n")
}

func productLines(product domain.Product, shopBaseURL, currency string) []string {
	productURL := fmt.Sprintf("%s/products/%s", shopBaseURL, product.Handle)

	entry := fmt.Sprintf("- [%s](%s)", product.Title, productURL)
	if description := PlainText(product.BodyHTML); description != "" {
		entry += ": " + description
	}
	lines := []string{entry}

	if product.UpdatedAt != "" {
		lines = append(lines, "  Updated: "+product.UpdatedAt)
	}
	if product.Vendor != "" {
		lines = append(lines, "  Vendor: "+product.Vendor)
	}
	if product.ProductType != "" {
		lines = append(lines, "  Product Type: "+product.ProductType)
	}
	lines = append(lines, "  Availability: "+availability(product.IsActive()))
	if len(product.Images) > 0 && product.Images[0].Src != "" {
		lines = append(lines, "  Image: "+product.Images[0].Src)
	}
	if len(product.Variants) > 0 && product.Variants[0].Price != "" {
		lines = append(lines, "  Price: "+FormatPrice(product.Variants[0].Price, currency))
	}

	if len(product.Variants) > 1 {
		for _, variant := range product.Variants {
			lines = append(lines,
				fmt.Sprintf("  - [%s](%s)", orDefault(variant.Title, defaultVariant), VariantURL(productURL, variant, len(product.Variants))),
				"    Availability: "+availability(variant.IsAvailable()),
			)
			if variant.Price != "" {
				lines = append(lines, "    Price: "+FormatPrice(variant.Price, currency))
			}
		}
	}

	return lines
}

// VariantURL links to a variant. The query suffix is dropped only for the lone
// "Default Title" variant, which has nothing to select.
func VariantURL(productURL string, variant domain.Variant, variantCount int) string {
	if variantCount == 1 && variant.Title == domain.DefaultVariantTitle {
		return productURL
	}
	return fmt.Sprintf("%s?variant=%d", productURL, variant.ID)
}

// PlainText removes HTML tags from a product description. Surrounding
// whitespace is left as it is; stray '>' from malformed markup is dropped.
func PlainText(html string) string {
	if html == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(html, "")
	return strings.ReplaceAll(text, ">", "")
}

// FormatPrice renders a decimal price string as "$12.50 USD".
// Prices that do not parse are passed through untouched.
func FormatPrice(price, currency string) string {
	amount, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return fmt.Sprintf("$%s %s", price, currency)
	}
	return fmt.Sprintf("$%s %s", amount.StringFixed(2), currency)
}

func availability(available bool) string {
	if available {
		return "Available"
	}
	return "Unavailable"
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	}
	return u.Host
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
