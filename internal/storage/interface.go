package storage

import (
	"context"

	"github.com/mcoot/wordlegame-go/internal/model"
)

// UpdateFunc mutates a player's stats in place. A player with no stats yet
// is passed a zero value with an empty distribution.
type UpdateFunc func(stats *model.PlayerStats) error

// Storage defines the interface for records persistence
type Storage interface {
	// GetStats returns model.ErrStatsNotFound for an unknown player
	GetStats(ctx context.Context, name string) (model.PlayerStats, error)
	ListStats(ctx context.Context) (map[string]model.PlayerStats, error)
	// UpdateStats applies fn atomically with respect to other updates of the
	// same player
	UpdateStats(ctx context.Context, name string, fn UpdateFunc) error
	ResetStats(ctx context.Context) error

	Close() error
}

// NewStats returns an empty stats record ready for updating
func NewStats() model.PlayerStats {
	return model.PlayerStats{AttemptsDistribution: map[int]int{}}
}
