package listing

import (
	"reflect"
	"testing"

	"coffeeshop/internal/models"
)

func TestNewCard(t *testing.T) {
	full := models.Shop{
		ID:       "1",
		Name:     "Roastery",
		Rating:   4.8,
		Reviews:  models.Reviews{Count: 1543, Present: true},
		Distance: models.Measure{Value: 1.2, Present: true},
		Image:    "https://img.example/roastery.jpg",
		Products: []models.Product{
			{ID: "p1", Category: "coffee"},
			{ID: "p2", Category: "food"},
			{ID: "p3", Category: "coffee"},
		},
		IsFavorite: true,
	}
	bare := models.Shop{ID: "2", Name: "Corner Cafe", Rating: 4.2}

	tests := []struct {
		name string
		shop models.Shop
		want Card
	}{
		{
			name: "all fields present",
			shop: full,
			want: Card{
				ID: "1", Name: "Roastery", Rating: 4.8,
				ReviewsLabel: "1,543", DistanceLabel: "1.2",
				ImageURL:   "https://img.example/roastery.jpg",
				Categories: []string{"coffee", "food"},
				Featured:   true, Favorite: true,
			},
		},
		{
			name: "placeholders and default image",
			shop: bare,
			want: Card{
				ID: "2", Name: "Corner Cafe", Rating: 4.2,
				ReviewsLabel: ReviewsPlaceholder, DistanceLabel: DistancePlaceholder,
				ImageURL: "assets/default.jpg",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewCard(tt.shop, "assets/default.jpg")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestNewCard_ZeroReviewsIsNotPlaceholder(t *testing.T) {
	c := NewCard(models.Shop{Reviews: models.Reviews{Present: true}}, "")
	if c.ReviewsLabel != "0" {
		t.Errorf("ReviewsLabel = %q, want 0", c.ReviewsLabel)
	}
}
