package service

import (
	"context"
	"sync"

	"github.com/placehub/placehub-api/internal/model"
	"go.uber.org/zap"
)

// FavoritesRepository persists the toggle set across restarts. The
// in-memory store stays the source of truth; writes go through
// best-effort.
type FavoritesRepository interface {
	Load(ctx context.Context) ([]model.FavoriteEntry, error)
	Insert(ctx context.Context, entry model.FavoriteEntry) error
	Delete(ctx context.Context, id string) error
}

// FavoritesStore is an observable toggle set keyed by place identity.
// Insertion order is display order; no two entries ever share an id.
type FavoritesStore struct {
	repo   FavoritesRepository
	logger *zap.Logger

	mu        sync.RWMutex
	entries   []model.FavoriteEntry
	index     map[string]struct{}
	listeners []func([]model.FavoriteEntry)
}

// NewFavoritesStore creates a favorites store. repo may be nil for a
// purely in-memory set.
func NewFavoritesStore(repo FavoritesRepository, logger *zap.Logger) *FavoritesStore {
	return &FavoritesStore{
		repo:   repo,
		logger: logger,
		index:  make(map[string]struct{}),
	}
}

// LoadFromRepository replaces the in-memory set with the persisted one
func (s *FavoritesStore) LoadFromRepository(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	entries, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = s.entries[:0]
	s.index = make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		if _, ok := s.index[e.ID]; ok {
			continue
		}
		s.entries = append(s.entries, e)
		s.index[e.ID] = struct{}{}
	}
	s.notifyAndUnlock()
	return nil
}

// Toggle flips membership for item's id: present entries are removed,
// absent ones are appended. Returns whether the item is a favorite after
// the call. Items without an id are ignored.
func (s *FavoritesStore) Toggle(ctx context.Context, item model.FavoriteEntry) bool {
	if item.ID == "" {
		s.logger.Warn("Ignoring favorite toggle without an id", zap.String("name", item.Name))
		return false
	}

	s.mu.Lock()
	_, exists := s.index[item.ID]
	if exists {
		for i, e := range s.entries {
			if e.ID == item.ID {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				break
			}
		}
		delete(s.index, item.ID)
	} else {
		s.entries = append(s.entries, item)
		s.index[item.ID] = struct{}{}
	}
	s.notifyAndUnlock()

	s.persist(ctx, item, !exists)
	return !exists
}

// IsFavorite reports membership for an id
func (s *FavoritesStore) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// List returns the favorites in insertion order
func (s *FavoritesStore) List() []model.FavoriteEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.FavoriteEntry(nil), s.entries...)
}

// Len returns the number of favorites
func (s *FavoritesStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe registers a listener invoked with the full ordered list after
// every mutation. Listeners must not call back into the store
// synchronously.
func (s *FavoritesStore) Subscribe(fn func([]model.FavoriteEntry)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// persist mirrors one toggle into the repository. Failures are logged,
// not surfaced: the in-memory set already changed and stays authoritative.
func (s *FavoritesStore) persist(ctx context.Context, item model.FavoriteEntry, added bool) {
	if s.repo == nil {
		return
	}

	var err error
	if added {
		err = s.repo.Insert(ctx, item)
	} else {
		err = s.repo.Delete(ctx, item.ID)
	}
	if err != nil {
		s.logger.Warn("Failed to persist favorite toggle",
			zap.String("id", item.ID),
			zap.Bool("added", added),
			zap.Error(err),
		)
	}
}

func (s *FavoritesStore) notifyAndUnlock() {
	snapshot := append([]model.FavoriteEntry(nil), s.entries...)
	listeners := append(([]func([]model.FavoriteEntry))(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
