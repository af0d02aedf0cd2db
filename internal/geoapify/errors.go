package geoapify

import (
	"errors"
	"fmt"
)

// ErrPlaceNotFound is returned when a place-details lookup matches nothing.
var ErrPlaceNotFound = errors.New("place not found")

// CityNotFoundError indicates the geocoder returned zero matches for a city
// name. Recoverable: the user should refine the input.
type CityNotFoundError struct {
	City string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city not found: %s", e.City)
}

// UpstreamError indicates a provider-side failure. StatusCode is 0 when the
// request never produced an HTTP response (transport failure).
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Message)
	}
	return fmt.Sprintf("upstream error: status %d, message: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
