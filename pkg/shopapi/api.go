// Package shopapi is the HTTP client for the coffee shop REST API.
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"coffeeshop/internal/models"
)

// ErrUnexpectedStatus is wrapped by StatusError for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError carries the status of a failed API call.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s %d", e.Method, e.URL, ErrUnexpectedStatus, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		c := *cl.httpClient
		c.Timeout = d
		cl.httpClient = &c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "coffeeshop-storefront/1.0",
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListShops fetches every shop.
func (c *Client) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := c.do(ctx, http.MethodGet, "/coffeeShops", nil, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

// SearchShops fetches the shops matching query.
func (c *Client) SearchShops(ctx context.Context, query string) ([]models.Shop, error) {
	params := url.Values{}
	params.Set("q", query)
	var shops []models.Shop
	if err := c.do(ctx, http.MethodGet, "/coffeeShops/search?"+params.Encode(), nil, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

// GetShop fetches one shop with its full product list.
func (c *Client) GetShop(ctx context.Context, id string) (*models.Shop, error) {
	var shop models.Shop
	if err := c.do(ctx, http.MethodGet, "/coffeeShops/"+url.PathEscape(id), nil, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

// ProductsByCategory fetches the products of a shop in one category.
func (c *Client) ProductsByCategory(ctx context.Context, id, category string) ([]models.Product, error) {
	path := fmt.Sprintf("/coffeeShops/%s/products/%s", url.PathEscape(id), url.PathEscape(category))
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SetFavorite stores the favorite flag of a shop. The acknowledgement body is
// only logged.
func (c *Client) SetFavorite(ctx context.Context, id string, favorite bool) error {
	var ack json.RawMessage
	path := fmt.Sprintf("/coffeeShops/%s/favorite", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPut, path, favoriteRequest{Favorite: favorite}, &ack); err != nil {
		return err
	}
	c.logger.Debug("favorite update acknowledged",
		zap.String("shop_id", id), zap.Bool("favorite", favorite), zap.ByteString("response", ack))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter")
		}
	}

	reqURL := c.baseURL + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, reqURL)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", zap.String("method", method), zap.String("url", reqURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, reqURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, URL: reqURL, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "reading %s %s", method, reqURL)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decoding %s %s", method, reqURL)
	}
	return nil
}
