package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Geoapify  GeoapifyConfig
	Geo       GeoConfig
	Search    SearchConfig
	Favorites FavoritesConfig
	Server    ServerConfig
}

// GeoapifyConfig holds credentials and endpoints for the places provider
type GeoapifyConfig struct {
	APIKey          string
	PlacesURL       string
	GeocodeURL      string
	AutocompleteURL string
	DetailsURL      string
	Timeout         time.Duration
}

// GeoConfig holds city resolution settings
type GeoConfig struct {
	DefaultCity       string
	ReverseGeocodeURL string
	SingleFlight      bool
}

// SearchConfig holds suggestion search tuning
type SearchConfig struct {
	DebounceInterval time.Duration
	MaxSuggestions   int
	MinQueryLength   int
}

// StoreType represents the favorites storage backend
type StoreType string

const (
	StoreMemory     StoreType = "memory"
	StoreSQLite     StoreType = "sqlite"
	StorePostgreSQL StoreType = "postgres"
)

// FavoritesConfig holds favorites persistence configuration
type FavoritesConfig struct {
	Store    StoreType
	Path     string // SQLite database file, ":memory:" for in-memory
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the database connection string for persistent backends
func (c FavoritesConfig) DSN() string {
	if c.Store == StoreSQLite {
		if c.Path == "" || c.Path == ":memory:" {
			return "file::memory:?cache=shared"
		}
		return "file:" + c.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsPersistent returns true if favorites survive process restart
func (c FavoritesConfig) IsPersistent() bool {
	return c.Store == StoreSQLite || c.Store == StorePostgreSQL
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiKey := os.Getenv("GEOAPIFY_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEOAPIFY_API_KEY is required")
	}

	store := StoreType(getEnv("FAVORITES_STORE", "memory"))
	if store != StoreMemory && store != StoreSQLite && store != StorePostgreSQL {
		store = StoreMemory
	}

	config := &Config{
		Geoapify: GeoapifyConfig{
			APIKey:          apiKey,
			PlacesURL:       getEnv("GEOAPIFY_PLACES_URL", "https://api.geoapify.com/v2/places"),
			GeocodeURL:      getEnv("GEOAPIFY_GEOCODE_URL", "https://api.geoapify.com/v1/geocode/search"),
			AutocompleteURL: getEnv("GEOAPIFY_AUTOCOMPLETE_URL", "https://api.geoapify.com/v1/geocode/autocomplete"),
			DetailsURL:      getEnv("GEOAPIFY_DETAILS_URL", "https://api.geoapify.com/v2/place-details"),
			Timeout:         getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
		},
		Geo: GeoConfig{
			DefaultCity:       getEnv("DEFAULT_CITY", "Ahmedabad, India"),
			ReverseGeocodeURL: getEnv("REVERSE_GEOCODE_URL", "https://api.bigdatacloud.net/data/reverse-geocode-client"),
			SingleFlight:      getEnvAsBool("GEO_SINGLE_FLIGHT", false),
		},
		Search: SearchConfig{
			DebounceInterval: getEnvAsDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
			MaxSuggestions:   getEnvAsInt("MAX_SUGGESTIONS", 5),
			MinQueryLength:   getEnvAsInt("MIN_QUERY_LENGTH", 2),
		},
		Favorites: FavoritesConfig{
			Store:    store,
			Path:     getEnv("FAVORITES_DB_PATH", "favorites.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "placehub"),
			Password: getEnv("DB_PASSWORD", "placehub_password"),
			Name:     getEnv("DB_NAME", "placehub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
