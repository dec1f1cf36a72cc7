package shopapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /coffeeShops", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"_id":"1","name":"Blue Tokai","rating":4.8,"reviews":[{},{}],"address":"Indiranagar","products":[]},
			{"_id":"2","name":"Third Wave","rating":4.5,"distance":1.2,"products":[{"_id":"p1","name":"Latte","price":3.5,"category":"coffee"}]}
		]`)
	})
	mux.HandleFunc("GET /coffeeShops/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			t.Errorf("search called without q")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{"_id": "9", "name": q, "rating": 4.9}})
	})
	mux.HandleFunc("GET /coffeeShops/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"id":"`+r.PathValue("id")+`","name":"Roastery","isFavorite":true,"reviews":120,
			"products":[{"_id":"a","category":"coffee"},{"_id":"b","category":"food"}]}`)
	})
	mux.HandleFunc("GET /coffeeShops/{id}/products/{category}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("category") == "food" {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		_, _ = io.WriteString(w, `[{"_id":"x","name":"Cold Brew","category":"`+r.PathValue("category")+`"}]`)
	})
	mux.HandleFunc("PUT /coffeeShops/{id}/favorite", func(w http.ResponseWriter, r *http.Request) {
		var body favoriteRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding favorite body: %v", err)
		}
		if !body.Favorite {
			http.Error(w, "expected favorite=true", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_ListShops(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL+"/", WithTimeout(time.Second))

	shops, err := client.ListShops(context.Background())
	if err != nil {
		t.Fatalf("ListShops error: %v", err)
	}
	if len(shops) != 2 {
		t.Fatalf("len(shops) = %d, want 2", len(shops))
	}
	if shops[0].ID != "1" || shops[0].Reviews.Count != 2 || !shops[0].Reviews.Present {
		t.Errorf("unexpected first shop: %+v", shops[0])
	}
	if shops[1].Reviews.Present {
		t.Errorf("reviews should be absent for shop 2")
	}
	if !shops[1].Distance.Present || shops[1].Distance.Value != 1.2 {
		t.Errorf("distance = %+v, want 1.2", shops[1].Distance)
	}
}

func TestClient_ListShops_KeepsShopsWithUnreadableReviews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"1","rating":4.9,"reviews":10},{"_id":"2","rating":4.8,"reviews":"many"}]`)
	}))
	defer server.Close()

	shops, err := NewClient(server.URL).ListShops(context.Background())
	if err != nil {
		t.Fatalf("ListShops error: %v", err)
	}
	if len(shops) != 2 {
		t.Fatalf("len(shops) = %d, want 2", len(shops))
	}
	if shops[1].Reviews.Present {
		t.Errorf("unreadable reviews should decode as absent, got %+v", shops[1].Reviews)
	}
}

func TestClient_SearchShops_EncodesQuery(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)

	shops, err := client.SearchShops(context.Background(), "flat white & co")
	if err != nil {
		t.Fatalf("SearchShops error: %v", err)
	}
	if len(shops) != 1 || shops[0].Name != "flat white & co" {
		t.Errorf("got %+v", shops)
	}
}

func TestClient_GetShop(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)

	tests := []struct {
		name       string
		id         string
		wantErr    bool
		wantStatus int
	}{
		{name: "found", id: "42"},
		{name: "not found", id: "missing", wantErr: true, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop, err := client.GetShop(context.Background(), tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var se *StatusError
				if !errors.As(err, &se) || se.StatusCode != tt.wantStatus {
					t.Fatalf("expected StatusError %d, got %v", tt.wantStatus, err)
				}
				if !errors.Is(err, ErrUnexpectedStatus) {
					t.Errorf("error should wrap ErrUnexpectedStatus")
				}
				return
			}
			if shop.ID != tt.id {
				t.Errorf("ID = %q, want %q (id alias)", shop.ID, tt.id)
			}
			if shop.IsFavorite {
				t.Errorf("IsFavorite must not be taken from the server")
			}
			if shop.Reviews.Count != 120 || len(shop.Products) != 2 {
				t.Errorf("unexpected shop: %+v", shop)
			}
		})
	}
}

func TestClient_ProductsByCategory(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)

	got, err := client.ProductsByCategory(context.Background(), "1", "drinks")
	if err != nil {
		t.Fatalf("ProductsByCategory error: %v", err)
	}
	if len(got) != 1 || got[0].Category != "drinks" {
		t.Errorf("got %+v", got)
	}

	empty, err := client.ProductsByCategory(context.Background(), "1", "food")
	if err != nil {
		t.Fatalf("ProductsByCategory error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", empty)
	}
}

func TestClient_SetFavorite(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, WithRateLimit(100))

	if err := client.SetFavorite(context.Background(), "1", true); err != nil {
		t.Fatalf("SetFavorite(true) error: %v", err)
	}
	if err := client.SetFavorite(context.Background(), "1", false); !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("SetFavorite(false) = %v, want status error", err)
	}
}

func TestClient_RateLimiterHonoursContext(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", WithRateLimit(0.001))
	// consume the single burst token
	client.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.ListShops(ctx); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
}
