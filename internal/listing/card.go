package listing

import (
	"github.com/dustin/go-humanize"

	"coffeeshop/internal/models"
)

// Placeholders shown when the API omits a value.
const (
	ReviewsPlaceholder  = "1,200"
	DistancePlaceholder = "2.5"
)

// Card is the render-time projection of a shop in the list. Nothing here is
// stored back into the view model.
type Card struct {
	ID            string
	Name          string
	Rating        float64
	ReviewsLabel  string
	DistanceLabel string
	ImageURL      string
	Categories    []string
	Featured      bool
	Favorite      bool
}

func NewCard(s models.Shop, defaultImage string) Card {
	c := Card{
		ID:            s.ID,
		Name:          s.Name,
		Rating:        s.Rating,
		ReviewsLabel:  ReviewsPlaceholder,
		DistanceLabel: DistancePlaceholder,
		ImageURL:      s.Image,
		Categories:    models.UniqueCategories(s.Products),
		Featured:      s.Featured(),
		Favorite:      s.IsFavorite,
	}
	if s.Reviews.Present {
		c.ReviewsLabel = humanize.Comma(int64(s.Reviews.Count))
	}
	if s.Distance.Present {
		c.DistanceLabel = humanize.FtoaWithDigits(s.Distance.Value, 1)
	}
	if c.ImageURL == "" {
		c.ImageURL = defaultImage
	}
	return c
}
