package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/placehub/placehub-api/internal/geoapify"
	"github.com/placehub/placehub-api/internal/model"
	"go.uber.org/zap"
)

// PlacesClient is the provider primitive CategoryQueryService builds on
type PlacesClient interface {
	Places(ctx context.Context, req geoapify.PlacesRequest) ([]model.PlaceRecord, error)
}

// CategoryQueryService retrieves normalized place records for a bounding
// box and a category whitelist
type CategoryQueryService struct {
	client PlacesClient
	logger *zap.Logger
}

// NewCategoryQueryService creates a new category query service
func NewCategoryQueryService(client PlacesClient, logger *zap.Logger) *CategoryQueryService {
	return &CategoryQueryService{client: client, logger: logger}
}

// Query fetches places inside bbox matching the given categories
func (s *CategoryQueryService) Query(ctx context.Context, bbox model.BoundingBox, categories []string, limit int) ([]model.PlaceRecord, error) {
	return s.query(ctx, bbox, categories, limit, "")
}

// Search is Query with an additional free-text filter
func (s *CategoryQueryService) Search(ctx context.Context, text string, bbox model.BoundingBox, categories []string, limit int) ([]model.PlaceRecord, error) {
	return s.query(ctx, bbox, categories, limit, text)
}

func (s *CategoryQueryService) query(ctx context.Context, bbox model.BoundingBox, categories []string, limit int, text string) ([]model.PlaceRecord, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}

	records, err := s.client.Places(ctx, geoapify.PlacesRequest{
		Rect:       rectFilter(bbox),
		Categories: categories,
		Limit:      limit,
		Text:       text,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Fetched places",
		zap.Strings("categories", categories),
		zap.Int("count", len(records)),
	)
	return records, nil
}

// rectFilter builds the provider rectangle as (min-lon, min-lat, max-lon,
// max-lat). The bbox corners are not guaranteed min/max-ordered, so the
// raw field order must never be concatenated directly.
func rectFilter(bbox model.BoundingBox) string {
	minLon, minLat, maxLon, maxLat := bbox.Rect()
	parts := []string{
		strconv.FormatFloat(minLon, 'f', -1, 64),
		strconv.FormatFloat(minLat, 'f', -1, 64),
		strconv.FormatFloat(maxLon, 'f', -1, 64),
		strconv.FormatFloat(maxLat, 'f', -1, 64),
	}
	return strings.Join(parts, ",")
}
