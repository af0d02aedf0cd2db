package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/placehub/placehub-api/internal/api"
	"github.com/placehub/placehub-api/internal/config"
	"github.com/placehub/placehub-api/internal/database"
	"github.com/placehub/placehub-api/internal/geoapify"
	"github.com/placehub/placehub-api/internal/geolocate"
	"github.com/placehub/placehub-api/internal/repository"
	"github.com/placehub/placehub-api/internal/service"
	"github.com/placehub/placehub-api/internal/stats"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	client := geoapify.NewClient(cfg.Geoapify, logger)
	resolver := service.NewGeoResolver(client, cfg.Geo.SingleFlight, logger)
	places := service.NewCategoryQueryService(client, logger)
	discovery := service.NewDiscovery(resolver, places, client, logger)
	locator := geolocate.NewLocator(cfg.Geo, cfg.Geoapify.Timeout, logger)

	ctx := context.Background()

	// Favorites live in memory; a database backend mirrors them across restarts
	var db *sqlx.DB
	favorites := service.NewFavoritesStore(nil, logger)
	if cfg.Favorites.IsPersistent() {
		db, err = database.Connect(ctx, cfg.Favorites)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatal("Failed to ping database", zap.Error(err))
		}
		logger.Info("Connected to database", zap.String("store", string(cfg.Favorites.Store)))

		if err := runMigrations(db, cfg.Favorites); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		repo := repository.NewFavoritesRepository(db, cfg.Favorites.Store)
		favorites = service.NewFavoritesStore(repo, logger)
		if err := favorites.LoadFromRepository(ctx); err != nil {
			logger.Fatal("Failed to load favorites", zap.Error(err))
		}
		logger.Info("Loaded favorites", zap.Int("count", favorites.Len()))
	}

	statsCollector := stats.NewCollector(client, resolver, favorites, db)
	handler := api.NewHandler(discovery, client, favorites, locator, cfg.Search, logger)
	statsHandler := api.NewStatsHandler(statsCollector, logger)
	router := api.NewRouter(handler, statsHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("default_city", cfg.Geo.DefaultCity),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func runMigrations(db *sqlx.DB, cfg config.FavoritesConfig) error {
	if cfg.Store == config.StoreSQLite {
		// Use the driver instance directly to avoid DSN parsing issues with
		// in-memory SQLite
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err := migrate.NewWithDatabaseInstance(
			"file://migrations/sqlite",
			"sqlite3",
			driver,
		)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			return err
		}
		return nil
	}

	m, err := migrate.New("file://migrations/postgres", cfg.DSN())
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
