package models

import "encoding/json"

// Product categories offered on the shop detail page.
const (
	CategoryCoffee = "coffee"
	CategoryDrinks = "drinks"
	CategoryFood   = "food"
)

// Categories lists the selectable categories in display order.
var Categories = []string{CategoryCoffee, CategoryDrinks, CategoryFood}

type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		AltID string `json:"id"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

// FilterByCategory returns the products in category, preserving order.
// The result is never nil.
func FilterByCategory(products []Product, category string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// UniqueCategories returns the distinct categories in first-seen order.
func UniqueCategories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	var out []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
