package model

import "encoding/json"

// FavoriteEntry is one saved place. Identity is the ID alone; Payload
// keeps whatever display fields the caller attached when toggling.
type FavoriteEntry struct {
	ID      string          `json:"id" db:"id"`
	Name    string          `json:"name" db:"name"`
	Payload json.RawMessage `json:"payload,omitempty" db:"payload"`
}
