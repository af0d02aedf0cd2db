package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/placehub/placehub-api/internal/config"
	"github.com/placehub/placehub-api/internal/model"
	"github.com/placehub/placehub-api/internal/service"
)

// favoriteRow is the database shape of one favorite
type favoriteRow struct {
	ID      string         `db:"id"`
	Name    string         `db:"name"`
	Payload sql.NullString `db:"payload"`
}

func (r favoriteRow) toEntry() model.FavoriteEntry {
	entry := model.FavoriteEntry{ID: r.ID, Name: r.Name}
	if r.Payload.Valid && r.Payload.String != "" {
		entry.Payload = json.RawMessage(r.Payload.String)
	}
	return entry
}

// NewFavoritesRepository creates a repository implementation for the
// configured backend
func NewFavoritesRepository(db *sqlx.DB, store config.StoreType) service.FavoritesRepository {
	if store == config.StorePostgreSQL {
		return &pgFavoritesRepository{db: db}
	}

	// Default to SQLite
	return &sqliteFavoritesRepository{db: db}
}

type sqliteFavoritesRepository struct {
	db *sqlx.DB
}

func (r *sqliteFavoritesRepository) Load(ctx context.Context) ([]model.FavoriteEntry, error) {
	// rowid preserves insertion order; a re-added favorite gets a fresh one
	q := `SELECT id, name, payload FROM favorites ORDER BY rowid ASC`
	var rows []favoriteRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}

	entries := make([]model.FavoriteEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}

func (r *sqliteFavoritesRepository) Insert(ctx context.Context, entry model.FavoriteEntry) error {
	q := `
		INSERT INTO favorites (id, name, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, entry.ID, entry.Name, payloadValue(entry))
	return err
}

func (r *sqliteFavoritesRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
	return err
}

type pgFavoritesRepository struct {
	db *sqlx.DB
}

func (r *pgFavoritesRepository) Load(ctx context.Context) ([]model.FavoriteEntry, error) {
	q := `SELECT id, name, payload FROM favorites ORDER BY position ASC`
	var rows []favoriteRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}

	entries := make([]model.FavoriteEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}

func (r *pgFavoritesRepository) Insert(ctx context.Context, entry model.FavoriteEntry) error {
	q := `
		INSERT INTO favorites (id, name, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, q, entry.ID, entry.Name, payloadValue(entry))
	return err
}

func (r *pgFavoritesRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	return err
}

func payloadValue(entry model.FavoriteEntry) interface{} {
	if len(entry.Payload) == 0 {
		return nil
	}
	return string(entry.Payload)
}

// CountFavorites returns the persisted favorites row count, used by the
// stats collector
func CountFavorites(ctx context.Context, db *sqlx.DB) (int64, error) {
	var count int64
	err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM favorites`)
	return count, err
}
