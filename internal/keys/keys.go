// Package keys builds the object keys used in the asset bucket.
package keys

import (
	"fmt"
	"strings"

	"coffeeshop/internal/models"
)

// DefaultImage is the placeholder shown for shops without an image.
const DefaultImage = "images/default/coffee-shop.jpg"

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// Shop returns the canonical key for a shop snapshot.
func Shop(s models.Shop) string {
	return fmt.Sprintf("catalog/shops/%s.json", sanitizeKey(s.ID))
}
