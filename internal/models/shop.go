package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FeaturedRating is the minimum rating for a shop to be featured.
const FeaturedRating = 4.7

type Shop struct {
	ID       string    `json:"_id"`
	Name     string    `json:"name"`
	Rating   float64   `json:"rating"`
	Reviews  Reviews   `json:"reviews"`
	Distance Measure   `json:"distance"`
	Address  string    `json:"address"`
	Image    string    `json:"image,omitempty"`
	Products []Product `json:"products"`

	// IsFavorite is overlaid from local state and never trusted from the server.
	IsFavorite bool `json:"isFavorite"`
}

// UnmarshalJSON accepts both "_id" and "id" for the shop identifier.
func (s *Shop) UnmarshalJSON(data []byte) error {
	type plain Shop
	aux := struct {
		*plain
		AltID string `json:"id"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = aux.AltID
	}
	s.IsFavorite = false
	return nil
}

// Featured reports whether the shop clears the featured threshold.
func (s Shop) Featured() bool {
	return s.Rating >= FeaturedRating
}

// Clone returns a copy that shares no slices with s.
func (s Shop) Clone() Shop {
	c := s
	if s.Products != nil {
		c.Products = append([]Product(nil), s.Products...)
	}
	return c
}

// Reviews is the review count of a shop. The API sends either a number or
// the list of review records, and may omit the field altogether. A value
// that is none of these decodes as absent.
type Reviews struct {
	Count   int
	Present bool
}

func (r *Reviews) UnmarshalJSON(data []byte) error {
	n, ok := decodeCountOrLength(data)
	*r = Reviews{Count: int(n), Present: ok}
	return nil
}

func (r Reviews) MarshalJSON() ([]byte, error) {
	if !r.Present {
		return []byte("null"), nil
	}
	return json.Marshal(r.Count)
}

// Measure is an optional numeric value such as the distance to a shop.
// Arrays are reduced to their length, anything unreadable is absent.
type Measure struct {
	Value   float64
	Present bool
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	v, ok := decodeCountOrLength(data)
	*m = Measure{Value: v, Present: ok}
	return nil
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Present {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// decodeCountOrLength reports anything unreadable as absent.
// value must not drop the whole shop list.
func decodeCountOrLength(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false
	}
	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return 0, false
		}
		return float64(len(items)), true
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return 0, false
		}
		return v, true
	}
}
