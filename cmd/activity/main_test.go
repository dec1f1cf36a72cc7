package main

import (
	"strings"
	"testing"
	"time"

	"coffeeshop/internal/activity"
)

func TestDescribe(t *testing.T) {
	yes := true
	at := time.Now().Add(-2 * time.Hour)

	tests := []struct {
		name  string
		event activity.Event
		want  string
	}{
		{"list", activity.Event{Type: activity.Search, ResultCount: 3, At: at}, "listed 3 shops"},
		{"search", activity.Event{Type: activity.Search, Query: "brew", ResultCount: 1, At: at}, `searched "brew", 1 results`},
		{"favorite", activity.Event{Type: activity.FavoriteToggled, ShopID: "s1", Favorite: &yes, At: at}, "favorited shop s1"},
		{"unfavorite", activity.Event{Type: activity.FavoriteToggled, ShopID: "s1", At: at}, "unfavorited shop s1"},
		{"view", activity.Event{Type: activity.ShopViewed, ShopID: "s2", At: at}, "viewed shop s2"},
		{"category", activity.Event{Type: activity.CategorySelected, ShopID: "s2", Category: "food", At: at}, "category food"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describe(tt.event)
			if !strings.Contains(got, tt.want) {
				t.Errorf("describe() = %q, want it to contain %q", got, tt.want)
			}
			if !strings.HasPrefix(got, "2 hours ago") {
				t.Errorf("describe() = %q, want relative time prefix", got)
			}
		})
	}
}
