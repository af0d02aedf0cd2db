package geoapify

import (
	"encoding/json"

	"github.com/placehub/placehub-api/internal/model"
)

// geocodeResponse is the format=json shape of /v1/geocode/search
type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Formatted string             `json:"formatted"`
	City      string             `json:"city"`
	BBox      *model.BoundingBox `json:"bbox"`
}

// featureCollection is the GeoJSON shape shared by the places,
// place-details and autocomplete endpoints
type featureCollection struct {
	Features []featureEnvelope `json:"features"`
}

// featureEnvelope keeps the raw properties document alongside the decoded
// fields so normalization can pass provider-specific data through untouched
type featureEnvelope struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
	Geometry   struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

// featureProperties covers the property fields normalization cares about
type featureProperties struct {
	Name         string   `json:"name"`
	Formatted    string   `json:"formatted"`
	AddressLine1 string   `json:"address_line1"`
	AddressLine2 string   `json:"address_line2"`
	City         string   `json:"city"`
	Categories   []string `json:"categories"`
	PlaceID      string   `json:"place_id"`
	Phone        string   `json:"phone"`
	Website      string   `json:"website"`
	Rating       *float64 `json:"rating"`
	Lon          *float64 `json:"lon"`
	Lat          *float64 `json:"lat"`
}

// errorResponse is the provider's error body
type errorResponse struct {
	Message string `json:"message"`
}

// PlacesRequest holds the parameters of one places query. Rect must already
// be ordered (min-lon, min-lat, max-lon, max-lat); the client does not
// reorder it.
type PlacesRequest struct {
	Rect       string
	Categories []string
	Limit      int
	Text       string
}
