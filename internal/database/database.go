package database

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/placehub/placehub-api/internal/config"
)

// Connect opens the favorites database for a persistent backend using sqlx
func Connect(ctx context.Context, cfg config.FavoritesConfig) (*sqlx.DB, error) {
	var driverName string

	switch cfg.Store {
	case config.StoreSQLite:
		driverName = "sqlite3"
	case config.StorePostgreSQL:
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("favorites store %q is not database-backed", cfg.Store)
	}

	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}
