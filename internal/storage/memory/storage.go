package memory

import (
	"context"
	"sync"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	players map[string]model.PlayerStats
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[string]model.PlayerStats),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) GetStats(ctx context.Context, name string) (model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.players[name]
	if !ok {
		return model.PlayerStats{}, model.ErrStatsNotFound
	}
	return stats.Clone(), nil
}

func (s *Storage) ListStats(ctx context.Context) (map[string]model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.PlayerStats, len(s.players))
	for name, stats := range s.players {
		out[name] = stats.Clone()
	}
	return out, nil
}

func (s *Storage) UpdateStats(ctx context.Context, name string, fn storage.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.players[name]
	if ok {
		stats = stats.Clone()
	} else {
		stats = storage.NewStats()
	}
	if err := fn(&stats); err != nil {
		return err
	}
	s.players[name] = stats
	return nil
}

func (s *Storage) ResetStats(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = make(map[string]model.PlayerStats)
	return nil
}

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}
