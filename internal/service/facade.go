package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/placehub/placehub-api/internal/model"
	"go.uber.org/zap"
)

// DefaultLimit is the place count fetched when the caller does not specify one
const DefaultLimit = 20

// Category identifiers accepted by the discovery facade
const (
	CategoryRestaurants     = "restaurants"
	CategoryHotels          = "hotels"
	CategoryHealthcare      = "healthcare"
	CategoryEntertainment   = "entertainment"
	CategoryTouristPlaces   = "tourist_places"
	CategoryBuildings       = "buildings"
	CategoryPopulatedPlaces = "populated_places"
	CategorySports          = "sports"
)

// categoryTable maps each logical screen to its provider category whitelist
var categoryTable = map[string][]string{
	CategoryRestaurants:   {"catering.restaurant", "catering.cafe"},
	CategoryHotels:        {"accommodation.hotel"},
	CategoryHealthcare:    {"healthcare"},
	CategoryEntertainment: {"entertainment"},
	CategoryTouristPlaces: {"tourism.sights"},
	CategoryBuildings:     {"building"},
	CategoryPopulatedPlaces: {
		"populated_place",
		"populated_place.city",
		"populated_place.town",
		"populated_place.village",
		"populated_place.hamlet",
		"populated_place.suburb",
		"populated_place.neighbourhood",
	},
	CategorySports: {
		"sport.dive_centre",
		"sport.fitness",
		"sport.fitness.fitness_centre",
		"sport.fitness.fitness_station",
		"sport.horse_riding",
		"sport.ice_rink",
		"sport.pitch",
		"sport.sports_centre",
		"sport.stadium",
		"sport.swimming_pool",
		"sport.track",
	},
}

// defaultSearchCategories is applied when a free-text search has no
// category preference
var defaultSearchCategories = []string{"catering.restaurant"}

// CityResolver resolves a city name to its bounding box
type CityResolver interface {
	Resolve(ctx context.Context, city string) (model.BoundingBox, error)
}

// PlaceQuerier retrieves places for a resolved bounding box
type PlaceQuerier interface {
	Query(ctx context.Context, bbox model.BoundingBox, categories []string, limit int) ([]model.PlaceRecord, error)
	Search(ctx context.Context, text string, bbox model.BoundingBox, categories []string, limit int) ([]model.PlaceRecord, error)
}

// DetailsFetcher looks up one enriched place record by identifier
type DetailsFetcher interface {
	PlaceDetails(ctx context.Context, placeID string) (model.PlaceRecord, error)
}

// Discovery composes city resolution and category-scoped retrieval. It is
// the single entry point the presentation layer calls per screen.
type Discovery struct {
	resolver CityResolver
	places   PlaceQuerier
	details  DetailsFetcher
	logger   *zap.Logger
}

// NewDiscovery creates the place discovery facade
func NewDiscovery(resolver CityResolver, places PlaceQuerier, details DetailsFetcher, logger *zap.Logger) *Discovery {
	return &Discovery{
		resolver: resolver,
		places:   places,
		details:  details,
		logger:   logger,
	}
}

// Categories lists the known logical category identifiers, sorted
func Categories() []string {
	names := make([]string, 0, len(categoryTable))
	for name := range categoryTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchCategory resolves city and fetches places for one logical category.
// Resolver and query failures propagate unchanged.
func (d *Discovery) FetchCategory(ctx context.Context, category, city string, limit int) ([]model.PlaceRecord, error) {
	providerCategories, ok := categoryTable[category]
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, category)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	bbox, err := d.resolver.Resolve(ctx, city)
	if err != nil {
		return nil, err
	}

	return d.places.Query(ctx, bbox, providerCategories, limit)
}

// Restaurants fetches restaurants and cafes in the given city
func (d *Discovery) Restaurants(ctx context.Context, city string, limit int) ([]model.PlaceRecord, error) {
	return d.FetchCategory(ctx, CategoryRestaurants, city, limit)
}

// Hotels fetches hotels in the given city
func (d *Discovery) Hotels(ctx context.Context, city string, limit int) ([]model.PlaceRecord, error) {
	return d.FetchCategory(ctx, CategoryHotels, city, limit)
}

// Healthcare fetches healthcare places in the given city
func (d *Discovery) Healthcare(ctx context.Context, city string, limit int) ([]model.PlaceRecord, error) {
	return d.FetchCategory(ctx, CategoryHealthcare, city, limit)
}

// Entertainment fetches entertainment places in the given city
func (d *Discovery) Entertainment(ctx context.Context, city string, limit int) ([]model.PlaceRecord, error) {
	return d.FetchCategory(ctx, CategoryEntertainment, city, limit)
}

// TouristPlaces fetches tourist sights in the given city
func (d *Discovery) TouristPlaces(ctx context.Context, city string, limit int) ([]model.PlaceRecord, error) {
	return d.FetchCategory(ctx, CategoryTouristPlaces, city, limit)
}

// Buildings fetches notable buildings in the given city
func (d *Discovery) Buildings(ctx context.Context, city string, limit int) ([]model.PlaceRecord, error) {
	return d.FetchCategory(ctx, CategoryBuildings, city, limit)
}

// PopulatedPlaces fetches towns, suburbs and neighbourhoods in the given city
func (d *Discovery) PopulatedPlaces(ctx context.Context, city string, limit int) ([]model.PlaceRecord, error) {
	return d.FetchCategory(ctx, CategoryPopulatedPlaces, city, limit)
}

// Sports fetches sport facilities in the given city
func (d *Discovery) Sports(ctx context.Context, city string, limit int) ([]model.PlaceRecord, error) {
	return d.FetchCategory(ctx, CategorySports, city, limit)
}

// Search fetches places matching a free-text query within the city. An
// empty category set falls back to restaurants.
func (d *Discovery) Search(ctx context.Context, query string, categories []string, city string, limit int) ([]model.PlaceRecord, error) {
	if len(categories) == 0 {
		categories = defaultSearchCategories
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	bbox, err := d.resolver.Resolve(ctx, city)
	if err != nil {
		return nil, err
	}

	return d.places.Search(ctx, query, bbox, categories, limit)
}

// PlaceDetails fetches one enriched record by identifier
func (d *Discovery) PlaceDetails(ctx context.Context, placeID string) (model.PlaceRecord, error) {
	return d.details.PlaceDetails(ctx, placeID)
}

// PlaceDetailsOrFallback enriches a summary record already held from a
// list view. Freshly fetched fields take precedence; summary fields fill
// whatever the detail response leaves empty. An upstream failure returns
// the summary unchanged, never an error.
func (d *Discovery) PlaceDetailsOrFallback(ctx context.Context, summary model.PlaceRecord) model.PlaceRecord {
	if summary.ID == "" {
		return summary
	}

	fresh, err := d.details.PlaceDetails(ctx, summary.ID)
	if err != nil {
		d.logger.Warn("Place details fetch failed, using summary record",
			zap.String("place_id", summary.ID),
			zap.Error(err),
		)
		return summary
	}

	return mergeRecords(fresh, summary)
}

// mergeRecords overlays fresh on top of summary field by field
func mergeRecords(fresh, summary model.PlaceRecord) model.PlaceRecord {
	merged := fresh
	if merged.ID == "" {
		merged.ID = summary.ID
	}
	if merged.Name == "" {
		merged.Name = summary.Name
	}
	if merged.FormattedAddress == "" {
		merged.FormattedAddress = summary.FormattedAddress
	}
	if len(merged.Categories) == 0 {
		merged.Categories = summary.Categories
	}
	if merged.Coordinates == nil {
		merged.Coordinates = summary.Coordinates
	}
	if merged.Rating == nil {
		merged.Rating = summary.Rating
	}
	if merged.Contact.Phone == "" {
		merged.Contact.Phone = summary.Contact.Phone
	}
	if merged.Contact.Website == "" {
		merged.Contact.Website = summary.Contact.Website
	}
	if len(merged.Raw) == 0 {
		merged.Raw = summary.Raw
	}
	return merged
}
