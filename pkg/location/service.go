// Package location resolves postal addresses to coordinates using the Google
// Geocoding API.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coffeeshop/internal/models"
	"coffeeshop/pkg/logger"
)

const geocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrRequestDenied is returned when Google rejects the request, usually
// because of a bad or missing API key.
var ErrRequestDenied = errors.New("geocoding request denied")

// GeocodeResponse is shaped for the API response
type GeocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Results      []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	FormattedAddress string `json:"formatted_address"`
	PlaceID          string `json:"place_id"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
	Types []string `json:"types"`
}

// GeoResult converts the API result to the domain type.
func (r GeocodeResult) GeoResult() models.GeoResult {
	return models.GeoResult{
		FormattedAddress: r.FormattedAddress,
		Location: models.Coordinates{
			Lat: r.Geometry.Location.Lat,
			Lng: r.Geometry.Location.Lng,
		},
	}
}

type Client struct {
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

func NewClient(apiKey string, httpClient *http.Client, log *zap.Logger) *Client {
	log = logger.OrNop(log)
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, apiKey: apiKey, logger: log}
}

// Geocode looks up an address. A well-formed response without matches
// yields an empty slice and no error.
func (c *Client) Geocode(ctx context.Context, address string) ([]models.GeoResult, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	u := fmt.Sprintf("%s?%s", geocodeURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "geocoding %q", address)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding %q: unexpected status: %s", address, resp.Status)
	}

	var body GeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decoding geocode response")
	}

	switch body.Status {
	case "OK", "ZERO_RESULTS", "":
	case "REQUEST_DENIED":
		return nil, fmt.Errorf("%w: %s", ErrRequestDenied, body.ErrorMessage)
	default:
		return nil, fmt.Errorf("geocoding %q: status %s: %s", address, body.Status, body.ErrorMessage)
	}

	results := make([]models.GeoResult, 0, len(body.Results))
	for _, r := range body.Results {
		results = append(results, r.GeoResult())
	}
	c.logger.Debug("geocoded address", zap.String("address", address), zap.Int("results", len(results)))
	return results, nil
}
