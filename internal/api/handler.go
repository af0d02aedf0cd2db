package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/placehub/placehub-api/internal/config"
	"github.com/placehub/placehub-api/internal/geoapify"
	"github.com/placehub/placehub-api/internal/model"
	"github.com/placehub/placehub-api/internal/service"
	"go.uber.org/zap"
)

// DiscoveryService is the facade surface the handlers call per screen
type DiscoveryService interface {
	FetchCategory(ctx context.Context, category, city string, limit int) ([]model.PlaceRecord, error)
	Search(ctx context.Context, query string, categories []string, city string, limit int) ([]model.PlaceRecord, error)
	PlaceDetails(ctx context.Context, placeID string) (model.PlaceRecord, error)
}

// SuggestionClient serves the synchronous suggest endpoint
type SuggestionClient interface {
	Autocomplete(ctx context.Context, text string, limit int) ([]model.CitySuggestion, error)
}

// FavoritesService is the toggle-set surface
type FavoritesService interface {
	Toggle(ctx context.Context, item model.FavoriteEntry) bool
	IsFavorite(id string) bool
	List() []model.FavoriteEntry
}

// Locator resolves device coordinates to a city name
type Locator interface {
	CurrentCity(ctx context.Context, lat, lon float64) string
	DefaultCity() string
}

// Handler handles HTTP requests
type Handler struct {
	discovery DiscoveryService
	suggest   SuggestionClient
	favorites FavoritesService
	locator   Locator
	search    config.SearchConfig
	logger    *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(discovery DiscoveryService, suggest SuggestionClient, favorites FavoritesService, locator Locator, search config.SearchConfig, logger *zap.Logger) *Handler {
	return &Handler{
		discovery: discovery,
		suggest:   suggest,
		favorites: favorites,
		locator:   locator,
		search:    search,
		logger:    logger,
	}
}

// GetPlaces handles GET /api/v1/places/{category}
func (h *Handler) GetPlaces(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]

	city := r.URL.Query().Get("city")
	if city == "" {
		city = h.locator.DefaultCity()
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	places, err := h.discovery.FetchCategory(r.Context(), category, city, limit)
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch places",
			zap.String("category", category), zap.String("city", city))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"city":     city,
		"category": category,
		"count":    len(places),
		"places":   places,
	})
}

// SearchPlaces handles GET /api/v1/places/search
func (h *Handler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	var categories []string
	for _, c := range strings.Split(r.URL.Query().Get("categories"), ",") {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}

	city := r.URL.Query().Get("city")
	if city == "" {
		city = h.locator.DefaultCity()
	}

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	places, err := h.discovery.Search(r.Context(), query, categories, city, limit)
	if err != nil {
		h.writeServiceError(w, err, "Failed to search places",
			zap.String("query", query), zap.String("city", city))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"city":   city,
		"query":  query,
		"count":  len(places),
		"places": places,
	})
}

// GetPlaceDetails handles GET /api/v1/place/{id}
func (h *Handler) GetPlaceDetails(w http.ResponseWriter, r *http.Request) {
	placeID := mux.Vars(r)["id"]

	place, err := h.discovery.PlaceDetails(r.Context(), placeID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch place details", zap.String("place_id", placeID))
		return
	}

	h.respondJSON(w, http.StatusOK, place)
}

// SuggestCities handles GET /api/v1/suggest
func (h *Handler) SuggestCities(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")

	// Sub-threshold input settles to an empty list without a provider call
	if utf8.RuneCountInString(text) < h.search.MinQueryLength {
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"suggestions": []model.CitySuggestion{},
		})
		return
	}

	limit := h.search.MaxSuggestions
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	suggestions, err := h.suggest.Autocomplete(r.Context(), text, limit)
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch suggestions", zap.String("text", text))
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// CurrentCity handles GET /api/v1/current-city
func (h *Handler) CurrentCity(w http.ResponseWriter, r *http.Request) {
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	// No coordinates supplied (e.g. permission denied on the device)
	if latStr == "" && lonStr == "" {
		h.respondJSON(w, http.StatusOK, map[string]string{"city": h.locator.DefaultCity()})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		http.Error(w, "invalid lat parameter", http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		http.Error(w, "invalid lon parameter", http.StatusBadRequest)
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		http.Error(w, "invalid coordinates range", http.StatusBadRequest)
		return
	}

	city := h.locator.CurrentCity(r.Context(), lat, lon)
	h.respondJSON(w, http.StatusOK, map[string]string{"city": city})
}

// ListFavorites handles GET /api/v1/favorites
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites := h.favorites.List()
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// ToggleFavorite handles POST /api/v1/favorites/toggle
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var entry model.FavoriteEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if entry.ID == "" {
		http.Error(w, "field 'id' is required", http.StatusBadRequest)
		return
	}

	favorite := h.favorites.Toggle(r.Context(), entry)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       entry.ID,
		"favorite": favorite,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// parseLimit reads the optional limit query parameter, writing a 400 on
// invalid input
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		http.Error(w, "invalid limit parameter", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}

// writeServiceError maps pipeline failures onto HTTP statuses: unknown
// cities are 404, caller misuse is 400, provider failures are 502 with a
// retryable payload
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	var notFound *geoapify.CityNotFoundError
	var upstream *geoapify.UpstreamError

	switch {
	case errors.As(err, &notFound):
		http.Error(w, notFound.Error(), http.StatusNotFound)
	case errors.Is(err, geoapify.ErrPlaceNotFound):
		http.Error(w, "place not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &upstream):
		h.logger.Warn(msg, append(fields, zap.Error(err))...)
		h.respondJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":           "upstream provider failure",
			"upstream_status": upstream.StatusCode,
			"message":         upstream.Message,
			"retryable":       true,
		})
	default:
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}
