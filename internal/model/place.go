package model

import "encoding/json"

// BoundingBox is a geographic rectangle given by two opposite corners.
// The provider does not guarantee which corner holds the smaller values,
// so consumers must derive min/max instead of reading fields positionally.
type BoundingBox struct {
	Lon1 float64 `json:"lon1"`
	Lat1 float64 `json:"lat1"`
	Lon2 float64 `json:"lon2"`
	Lat2 float64 `json:"lat2"`
}

// Rect returns the corners ordered as (minLon, minLat, maxLon, maxLat).
func (b BoundingBox) Rect() (minLon, minLat, maxLon, maxLat float64) {
	minLon, maxLon = b.Lon1, b.Lon2
	if minLon > maxLon {
		minLon, maxLon = maxLon, minLon
	}
	minLat, maxLat = b.Lat1, b.Lat2
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	return minLon, minLat, maxLon, maxLat
}

// Coordinate represents geographic coordinates
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Contact holds optional ways to reach a place
type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// PlaceRecord is the normalized place entity returned by the pipeline.
// ID is always present; when the provider omits one it is synthesized
// from the feature's name and coordinates. Raw carries the untouched
// provider properties for detail views.
type PlaceRecord struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	FormattedAddress string          `json:"formatted_address"`
	Categories       []string        `json:"categories,omitempty"`
	Coordinates      *Coordinate     `json:"coordinates,omitempty"`
	Rating           *float64        `json:"rating,omitempty"`
	Contact          Contact         `json:"contact"`
	Raw              json.RawMessage `json:"raw,omitempty"`
}

// CitySuggestion is one autocomplete candidate. DisplayName follows the
// fallback chain formatted -> city -> name -> "Unknown City". Feature is
// the raw provider feature kept for the selection step.
type CitySuggestion struct {
	DisplayName string          `json:"display_name"`
	Feature     json.RawMessage `json:"feature,omitempty"`
}
