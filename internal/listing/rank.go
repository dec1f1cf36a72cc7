package listing

import (
	"sort"
	"strings"

	"coffeeshop/internal/models"
)

// Rank splits a response into the full list and the featured subset.
//
// all keeps the server order. featured holds every shop rated at least
// models.FeaturedRating, highest rating first; with a non-empty query it is
// ordered by case-insensitive name instead. Both sorts are stable and both
// results are copies of the input.
func Rank(shops []models.Shop, query string) (all, featured []models.Shop) {
	all = make([]models.Shop, len(shops))
	for i, s := range shops {
		all[i] = s.Clone()
	}

	byRating := append([]models.Shop(nil), all...)
	sort.SliceStable(byRating, func(i, j int) bool {
		return byRating[i].Rating > byRating[j].Rating
	})

	featured = make([]models.Shop, 0, len(byRating))
	for _, s := range byRating {
		if s.Featured() {
			featured = append(featured, s.Clone())
		}
	}

	if query != "" {
		sort.SliceStable(featured, func(i, j int) bool {
			return strings.ToLower(featured[i].Name) < strings.ToLower(featured[j].Name)
		})
	}
	return all, featured
}
