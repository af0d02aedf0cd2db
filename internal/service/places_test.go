package service

import (
	"context"
	"testing"

	"github.com/placehub/placehub-api/internal/geoapify"
	"github.com/placehub/placehub-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPlacesClient implements the PlacesClient interface
type MockPlacesClient struct {
	mock.Mock
}

func (m *MockPlacesClient) Places(ctx context.Context, req geoapify.PlacesRequest) ([]model.PlaceRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PlaceRecord), args.Error(1)
}

func TestCategoryQueryService_Query(t *testing.T) {
	bbox := model.BoundingBox{Lon1: 72.4, Lat1: 23.1, Lon2: 72.7, Lat2: 22.9}

	t.Run("empty category set fails before any network call", func(t *testing.T) {
		client := new(MockPlacesClient)
		svc := NewCategoryQueryService(client, zap.NewNop())

		_, err := svc.Query(context.Background(), bbox, nil, 20)

		assert.ErrorIs(t, err, ErrInvalidArgument)
		client.AssertNotCalled(t, "Places")
	})

	t.Run("non-positive limit is rejected", func(t *testing.T) {
		client := new(MockPlacesClient)
		svc := NewCategoryQueryService(client, zap.NewNop())

		_, err := svc.Query(context.Background(), bbox, []string{"healthcare"}, 0)

		assert.ErrorIs(t, err, ErrInvalidArgument)
		client.AssertNotCalled(t, "Places")
	})

	t.Run("delegates with categories and limit", func(t *testing.T) {
		client := new(MockPlacesClient)
		records := []model.PlaceRecord{{ID: "p1", Name: "Agashiye"}}
		client.On("Places", mock.Anything, mock.MatchedBy(func(req geoapify.PlacesRequest) bool {
			return len(req.Categories) == 2 && req.Limit == 20 && req.Text == ""
		})).Return(records, nil)
		svc := NewCategoryQueryService(client, zap.NewNop())

		got, err := svc.Query(context.Background(), bbox, []string{"catering.restaurant", "catering.cafe"}, 20)
		require.NoError(t, err)
		assert.Equal(t, records, got)
	})

	t.Run("search passes the free-text filter through", func(t *testing.T) {
		client := new(MockPlacesClient)
		client.On("Places", mock.Anything, mock.MatchedBy(func(req geoapify.PlacesRequest) bool {
			return req.Text == "thali"
		})).Return([]model.PlaceRecord{}, nil)
		svc := NewCategoryQueryService(client, zap.NewNop())

		_, err := svc.Search(context.Background(), "thali", bbox, []string{"catering.restaurant"}, 20)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})
}

func TestRectFilter(t *testing.T) {
	tests := []struct {
		name string
		bbox model.BoundingBox
		want string
	}{
		{
			name: "already ordered corners",
			bbox: model.BoundingBox{Lon1: 72.4, Lat1: 22.9, Lon2: 72.7, Lat2: 23.1},
			want: "72.4,22.9,72.7,23.1",
		},
		{
			name: "latitudes swapped by provider",
			bbox: model.BoundingBox{Lon1: 72.4, Lat1: 23.1, Lon2: 72.7, Lat2: 22.9},
			want: "72.4,22.9,72.7,23.1",
		},
		{
			name: "both axes swapped",
			bbox: model.BoundingBox{Lon1: 72.7, Lat1: 23.1, Lon2: 72.4, Lat2: 22.9},
			want: "72.4,22.9,72.7,23.1",
		},
		{
			name: "negative coordinates",
			bbox: model.BoundingBox{Lon1: -0.5, Lat1: 51.7, Lon2: 0.3, Lat2: 51.2},
			want: "-0.5,51.2,0.3,51.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rectFilter(tt.bbox))
		})
	}
}
