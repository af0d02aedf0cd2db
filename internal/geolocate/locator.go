package geolocate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/placehub/placehub-api/internal/config"
	"go.uber.org/zap"
)

// Locator reverse-geocodes device coordinates into a city name. It never
// fails: permission problems, transport errors and empty lookups all fall
// back to the configured default city.
type Locator struct {
	cfg    config.GeoConfig
	http   *http.Client
	logger *zap.Logger
}

// NewLocator creates a locator with a timeout-bounded transport
func NewLocator(cfg config.GeoConfig, timeout time.Duration, logger *zap.Logger) *Locator {
	return &Locator{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// DefaultCity returns the fallback city
func (l *Locator) DefaultCity() string {
	return l.cfg.DefaultCity
}

// CurrentCity resolves coordinates to a city name, or the default city
// when anything goes wrong
func (l *Locator) CurrentCity(ctx context.Context, lat, lon float64) string {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("localityLanguage", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.ReverseGeocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return l.cfg.DefaultCity
	}

	resp, err := l.http.Do(req)
	if err != nil {
		l.logger.Warn("Reverse geocode request failed", zap.Error(err))
		return l.cfg.DefaultCity
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.logger.Warn("Reverse geocode returned error", zap.Int("status", resp.StatusCode))
		return l.cfg.DefaultCity
	}

	var body struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.City == "" {
		return l.cfg.DefaultCity
	}

	return body.City
}
