package geoapify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/placehub/placehub-api/internal/config"
	"github.com/placehub/placehub-api/internal/model"
	"go.uber.org/zap"
)

// Client talks to the Geoapify HTTP API. Credentials and endpoints are
// injected through config; nothing is read from ambient state.
type Client struct {
	cfg      config.GeoapifyConfig
	http     *http.Client
	logger   *zap.Logger
	requests atomic.Int64
}

// NewClient creates a provider client with its own timeout-bounded transport
func NewClient(cfg config.GeoapifyConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Geocode resolves a free-text city name to its bounding box. The first
// result wins; provider relevance ranking is trusted.
func (c *Client) Geocode(ctx context.Context, city string) (model.BoundingBox, error) {
	params := url.Values{}
	params.Set("text", city)
	params.Set("type", "city")
	params.Set("format", "json")

	var resp geocodeResponse
	if err := c.get(ctx, c.cfg.GeocodeURL, params, &resp); err != nil {
		return model.BoundingBox{}, err
	}

	if len(resp.Results) == 0 || resp.Results[0].BBox == nil {
		return model.BoundingBox{}, &CityNotFoundError{City: city}
	}

	return *resp.Results[0].BBox, nil
}

// Places fetches place features inside req.Rect and normalizes them
func (c *Client) Places(ctx context.Context, req PlacesRequest) ([]model.PlaceRecord, error) {
	params := url.Values{}
	params.Set("categories", strings.Join(req.Categories, ","))
	params.Set("filter", "rect:"+req.Rect)
	params.Set("limit", strconv.Itoa(req.Limit))
	if req.Text != "" {
		params.Set("text", req.Text)
	}

	var resp featureCollection
	if err := c.get(ctx, c.cfg.PlacesURL, params, &resp); err != nil {
		return nil, err
	}

	records := make([]model.PlaceRecord, 0, len(resp.Features))
	for _, f := range resp.Features {
		rec, err := normalizeFeature(f)
		if err != nil {
			c.logger.Warn("Skipping malformed place feature", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// PlaceDetails fetches a single enriched feature by its identifier
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (model.PlaceRecord, error) {
	params := url.Values{}
	params.Set("id", placeID)

	var resp featureCollection
	if err := c.get(ctx, c.cfg.DetailsURL, params, &resp); err != nil {
		return model.PlaceRecord{}, err
	}

	if len(resp.Features) == 0 {
		return model.PlaceRecord{}, fmt.Errorf("%w: %s", ErrPlaceNotFound, placeID)
	}

	return normalizeFeature(resp.Features[0])
}

// Autocomplete returns up to limit city suggestions for a partial text
func (c *Client) Autocomplete(ctx context.Context, text string, limit int) ([]model.CitySuggestion, error) {
	params := url.Values{}
	params.Set("text", text)

	var resp featureCollection
	if err := c.get(ctx, c.cfg.AutocompleteURL, params, &resp); err != nil {
		return nil, err
	}

	features := resp.Features
	if limit > 0 && len(features) > limit {
		features = features[:limit]
	}

	suggestions := make([]model.CitySuggestion, 0, len(features))
	for _, f := range features {
		suggestions = append(suggestions, model.CitySuggestion{
			DisplayName: displayName(f),
			Feature:     f.Properties,
		})
	}
	return suggestions, nil
}

// Requests reports how many upstream requests this client has issued
func (c *Client) Requests() int64 {
	return c.requests.Load()
}

// get issues one GET request and decodes the 2xx body into out. Non-2xx
// responses become UpstreamError with the provider's message when present;
// transport failures become UpstreamError without a status code.
func (c *Client) get(ctx context.Context, baseURL string, params url.Values, out interface{}) error {
	c.requests.Add(1)
	params.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "Unknown error"
		var errBody errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Message != "" {
			msg = errBody.Message
		}
		c.logger.Warn("Upstream returned error",
			zap.String("url", baseURL),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}
