package routing

import (
	"net/url"
	"strconv"
	"strings"
)

// StoreURL joins path segments under "/store/:slug". Segments are escaped.
func StoreURL(slug string, segments ...string) string {
	var b strings.Builder
	b.WriteString("/store/")
	b.WriteString(url.PathEscape(slug))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// ProductURL is the product detail page.
func ProductURL(slug, product string) string { return StoreURL(slug, "product", product) }

// CategoryURL is a product category listing.
func CategoryURL(slug, category string) string { return StoreURL(slug, "product-category", category) }

// ProductsURL is the product listing, page 1 when page <= 1.
func ProductsURL(slug string, page int) string {
	if page <= 1 {
		return StoreURL(slug, "products")
	}
	return StoreURL(slug, "products", "page", strconv.Itoa(page))
}

// CategoriesURL lists categories.
func CategoriesURL(slug string) string { return StoreURL(slug, "categories") }

// CheckoutURL is the checkout page.
func CheckoutURL(slug string) string { return StoreURL(slug, "checkout") }

// WishlistURL is the wishlist page.
func WishlistURL(slug string) string { return StoreURL(slug, "wishlist") }

// OrderReceivedURL is shown after a successful checkout.
func OrderReceivedURL(slug, orderID string) string {
	return StoreURL(slug, "checkout", "order-received", orderID)
}
