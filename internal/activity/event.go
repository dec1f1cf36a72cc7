// Package activity describes the storefront events published for analytics
// and the plumbing to publish and read them back.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	Search           Type = "search"
	FavoriteToggled  Type = "favorite_toggled"
	ShopViewed       Type = "shop_viewed"
	CategorySelected Type = "category_selected"
)

type Event struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	ShopID      string    `json:"shop_id,omitempty"`
	Query       string    `json:"query,omitempty"`
	Category    string    `json:"category,omitempty"`
	Favorite    *bool     `json:"favorite,omitempty"`
	ResultCount int       `json:"result_count,omitempty"`
	At          time.Time `json:"at"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(t Type) Event {
	return Event{ID: uuid.NewString(), Type: t, At: time.Now().UTC()}
}

// Key is the partitioning key, the shop id when there is one.
func (e Event) Key() string {
	if e.ShopID != "" {
		return e.ShopID
	}
	return string(e.Type)
}

// Sink receives activity events. Implementations must not block the caller
// for long and must be safe for concurrent use.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// Discard drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(context.Context, Event) {}
