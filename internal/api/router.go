package api

import (
	"github.com/gorilla/mux"
)

// NewRouter creates a new HTTP router
func NewRouter(handler *Handler, statsHandler *StatsHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	// The search route must be registered before the category wildcard
	v1.HandleFunc("/places/search", handler.SearchPlaces).Methods("GET")
	v1.HandleFunc("/places/{category}", handler.GetPlaces).Methods("GET")
	v1.HandleFunc("/place/{id}", handler.GetPlaceDetails).Methods("GET")
	v1.HandleFunc("/suggest", handler.SuggestCities).Methods("GET")
	v1.HandleFunc("/current-city", handler.CurrentCity).Methods("GET")
	v1.HandleFunc("/favorites", handler.ListFavorites).Methods("GET")
	v1.HandleFunc("/favorites/toggle", handler.ToggleFavorite).Methods("POST")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
