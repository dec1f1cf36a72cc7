package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"coffeeshop/internal/listing"
	"coffeeshop/internal/models"
)

func TestFormatCard(t *testing.T) {
	tests := []struct {
		name string
		card listing.Card
		want []string
	}{
		{
			name: "distance in miles",
			card: listing.NewCard(models.Shop{Name: "Roastery", Rating: 4.2}, ""),
			want: []string{"Roastery", "(1,200 reviews)", "2.5 mi"},
		},
		{
			name: "favorite and featured",
			card: listing.Card{Name: "Brew Lab", Rating: 4.9, ReviewsLabel: "10", DistanceLabel: "0.4", Favorite: true, Featured: true},
			want: []string{"* Brew Lab", "0.4 mi", "[featured]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatCard(tt.card)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatCard() = %q, missing %q", got, w)
				}
			}
			if strings.Contains(got, "km") {
				t.Errorf("formatCard() = %q, distance must be in miles", got)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	tests := []struct {
		category string
		want     bool
	}{
		{"", true},
		{"coffee", true},
		{"drinks", true},
		{"food", true},
		{"tea", false},
		{"Coffee", false},
	}
	for _, tt := range tests {
		if got := validCategory(tt.category); got != tt.want {
			t.Errorf("validCategory(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestParseNear(t *testing.T) {
	tests := []struct {
		in      string
		want    *models.Coordinates
		wantErr bool
	}{
		{in: ""},
		{in: "12.97, 77.59", want: &models.Coordinates{Lat: 12.97, Lng: 77.59}},
		{in: "12.97", wantErr: true},
		{in: "north,77", wantErr: true},
		{in: "91,0", wantErr: true},
		{in: "0,181", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc, err := parseNear(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseNear(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			got, err := loc.CurrentLocation(context.Background())
			if tt.want == nil {
				if !errors.Is(err, errLocationDisabled) {
					t.Errorf("CurrentLocation() error = %v, want errLocationDisabled", err)
				}
				return
			}
			if err != nil || got != *tt.want {
				t.Errorf("CurrentLocation() = %+v, %v; want %+v", got, err, *tt.want)
			}
		})
	}
}
