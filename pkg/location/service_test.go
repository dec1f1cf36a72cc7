package location

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coffeeshop/internal/models"
)

type rewriteRoundTripper struct{ base *url.URL }

func (r rewriteRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone the request to avoid mutating the original
	c := req.Clone(req.Context())
	c.URL.Scheme = r.base.Scheme
	c.URL.Host = r.base.Host
	c.Host = r.base.Host
	return http.DefaultTransport.RoundTrip(c)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	u, _ := url.Parse(server.URL)
	return NewClient("test-key", &http.Client{Transport: rewriteRoundTripper{base: u}}, nil)
}

func TestClient_Geocode(t *testing.T) {
	tests := []struct {
		name        string
		response    any
		status      int
		wantErr     error
		wantAnyErr  bool
		wantResults []models.GeoResult
	}{
		{
			name: "first candidate converted",
			response: map[string]any{
				"status": "OK",
				"results": []map[string]any{{
					"formatted_address": "100 Feet Rd, Indiranagar, Bengaluru",
					"geometry":          map[string]any{"location": map[string]float64{"lat": 12.97, "lng": 77.64}},
				}},
			},
			wantResults: []models.GeoResult{{
				FormattedAddress: "100 Feet Rd, Indiranagar, Bengaluru",
				Location:         models.Coordinates{Lat: 12.97, Lng: 77.64},
			}},
		},
		{
			name:        "zero results is not an error",
			response:    map[string]any{"status": "ZERO_RESULTS", "results": []any{}},
			wantResults: []models.GeoResult{},
		},
		{
			name:     "request denied",
			response: map[string]any{"status": "REQUEST_DENIED", "error_message": "bad key"},
			wantErr:  ErrRequestDenied,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/maps/api/geocode/json" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.URL.Query().Get("key") != "test-key" || r.URL.Query().Get("address") == "" {
					t.Errorf("missing query params: %s", r.URL.RawQuery)
				}
				if tt.status != 0 {
					w.WriteHeader(tt.status)
					return
				}
				_ = json.NewEncoder(w).Encode(tt.response)
			})

			got, err := client.Geocode(context.Background(), "100 Feet Rd")
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.wantAnyErr:
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			case err != nil:
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.wantResults) {
				t.Fatalf("got %d results, want %d", len(got), len(tt.wantResults))
			}
			for i := range got {
				if got[i] != tt.wantResults[i] {
					t.Errorf("idx %d: got %+v want %+v", i, got[i], tt.wantResults[i])
				}
			}
		})
	}
}

type countingGeocoder struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (g *countingGeocoder) Geocode(_ context.Context, address string) ([]models.GeoResult, error) {
	g.calls.Add(1)
	time.Sleep(g.delay)
	if g.err != nil {
		return nil, g.err
	}
	return []models.GeoResult{{FormattedAddress: address}}, nil
}

func TestCachedGeocoder_DedupesAndCaches(t *testing.T) {
	upstream := &countingGeocoder{delay: 150 * time.Millisecond}
	g := NewCachedGeocoder(upstream)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Geocode(context.Background(), "MG Road"); err != nil {
				t.Errorf("Geocode error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := g.Geocode(context.Background(), "MG Road")
	if err != nil || len(got) != 1 || got[0].FormattedAddress != "MG Road" {
		t.Fatalf("cached lookup = %+v, %v", got, err)
	}
	if n := upstream.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
}

func TestCachedGeocoder_DoesNotCacheFailures(t *testing.T) {
	upstream := &countingGeocoder{err: errors.New("offline")}
	g := NewCachedGeocoder(upstream)

	for i := 0; i < 2; i++ {
		if _, err := g.Geocode(context.Background(), "Koramangala"); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := upstream.calls.Load(); n != 2 {
		t.Errorf("upstream calls = %d, want 2", n)
	}
}
