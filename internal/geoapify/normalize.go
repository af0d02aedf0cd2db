package geoapify

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/placehub/placehub-api/internal/model"
)

// normalizeFeature converts one provider feature into a PlaceRecord.
// Features without a provider id get a synthesized one so favorites and
// list rendering always have a deduplication key.
func normalizeFeature(f featureEnvelope) (model.PlaceRecord, error) {
	var props featureProperties
	if err := json.Unmarshal(f.Properties, &props); err != nil {
		return model.PlaceRecord{}, fmt.Errorf("failed to decode feature properties: %w", err)
	}

	rec := model.PlaceRecord{
		Name:             props.Name,
		FormattedAddress: props.Formatted,
		Categories:       props.Categories,
		Rating:           props.Rating,
		Contact: model.Contact{
			Phone:   props.Phone,
			Website: props.Website,
		},
		Raw: f.Properties,
	}

	if rec.FormattedAddress == "" && props.AddressLine1 != "" {
		rec.FormattedAddress = props.AddressLine1
		if props.AddressLine2 != "" {
			rec.FormattedAddress += ", " + props.AddressLine2
		}
	}

	if len(f.Geometry.Coordinates) >= 2 {
		rec.Coordinates = &model.Coordinate{
			Lon: f.Geometry.Coordinates[0],
			Lat: f.Geometry.Coordinates[1],
		}
	} else if props.Lon != nil && props.Lat != nil {
		rec.Coordinates = &model.Coordinate{Lon: *props.Lon, Lat: *props.Lat}
	}

	rec.ID = props.PlaceID
	if rec.ID == "" {
		rec.ID = SynthesizeID(rec.Name, rec.Coordinates)
	}

	return rec, nil
}

// SynthesizeID builds a stable identifier from a feature's name and
// coordinates. It is pure: equal input always yields the same id, so a
// record fetched twice is still recognized as the same favorite.
func SynthesizeID(name string, coord *model.Coordinate) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	if coord != nil {
		h.Write([]byte(strconv.FormatFloat(coord.Lon, 'f', 6, 64)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(coord.Lat, 'f', 6, 64)))
	}
	return "synth:" + strconv.FormatUint(h.Sum64(), 16)
}

// displayName reduces an autocomplete feature to something presentable,
// falling back formatted -> city -> name -> "Unknown City"
func displayName(f featureEnvelope) string {
	var props featureProperties
	if err := json.Unmarshal(f.Properties, &props); err != nil {
		return "Unknown City"
	}
	switch {
	case props.Formatted != "":
		return props.Formatted
	case props.City != "":
		return props.City
	case props.Name != "":
		return props.Name
	default:
		return "Unknown City"
	}
}
