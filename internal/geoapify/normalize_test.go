package geoapify

import (
	"encoding/json"
	"testing"

	"github.com/placehub/placehub-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeID(t *testing.T) {
	coord := &model.Coordinate{Lon: 72.58, Lat: 23.02}

	t.Run("idempotent on equal input", func(t *testing.T) {
		first := SynthesizeID("No ID Cafe", coord)
		second := SynthesizeID("No ID Cafe", &model.Coordinate{Lon: 72.58, Lat: 23.02})
		assert.Equal(t, first, second)
	})

	t.Run("different name, different id", func(t *testing.T) {
		assert.NotEqual(t, SynthesizeID("Cafe A", coord), SynthesizeID("Cafe B", coord))
	})

	t.Run("different coordinates, different id", func(t *testing.T) {
		other := &model.Coordinate{Lon: 72.59, Lat: 23.02}
		assert.NotEqual(t, SynthesizeID("Cafe A", coord), SynthesizeID("Cafe A", other))
	})

	t.Run("nil coordinates still produce an id", func(t *testing.T) {
		assert.NotEmpty(t, SynthesizeID("Cafe A", nil))
		assert.Equal(t, SynthesizeID("Cafe A", nil), SynthesizeID("Cafe A", nil))
	})
}

func TestNormalizeFeature(t *testing.T) {
	t.Run("address line fallback", func(t *testing.T) {
		f := featureEnvelope{
			Properties: json.RawMessage(`{"name":"Spot","address_line1":"Spot","address_line2":"Main St 1, Ahmedabad","place_id":"x1"}`),
		}
		rec, err := normalizeFeature(f)
		require.NoError(t, err)
		assert.Equal(t, "Spot, Main St 1, Ahmedabad", rec.FormattedAddress)
	})

	t.Run("property lon/lat used when geometry is missing", func(t *testing.T) {
		f := featureEnvelope{
			Properties: json.RawMessage(`{"name":"Spot","lon":72.1,"lat":23.5,"place_id":"x2"}`),
		}
		rec, err := normalizeFeature(f)
		require.NoError(t, err)
		require.NotNil(t, rec.Coordinates)
		assert.Equal(t, 72.1, rec.Coordinates.Lon)
		assert.Equal(t, 23.5, rec.Coordinates.Lat)
	})

	t.Run("malformed properties rejected", func(t *testing.T) {
		f := featureEnvelope{Properties: json.RawMessage(`"not an object"`)}
		_, err := normalizeFeature(f)
		assert.Error(t, err)
	})
}
