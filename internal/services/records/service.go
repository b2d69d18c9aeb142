// Package records aggregates finished series into per-player stats.
package records

import (
	"context"
	"log/slog"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/storage"
)

// Result is one finished series from a single player's point of view
type Result struct {
	Won          bool
	Attempts     int
	WordsGuessed int
	TotalWords   int
}

// Service records results and serves the aggregated stats
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new records Service
func New(st storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: st,
		logger:  logger.With(slog.String("component", "records")),
	}
}

// Apply folds one result into stats
func Apply(stats *model.PlayerStats, r Result) {
	if stats.AttemptsDistribution == nil {
		stats.AttemptsDistribution = map[int]int{}
	}

	if r.Won {
		stats.GamesWon++
		stats.MaxStreak = max(stats.MaxStreak, stats.CurrentStreak+1)
		stats.CurrentStreak++
	} else {
		stats.GamesLost++
		stats.CurrentStreak = 0
	}

	if n := stats.TotalGames; n == 0 {
		stats.AverageAttempts = float64(r.Attempts)
	} else {
		stats.AverageAttempts = (stats.AverageAttempts*float64(n) + float64(r.Attempts)) / float64(n+1)
	}
	stats.TotalGames++

	stats.AttemptsDistribution[r.Attempts]++
	stats.WordsGuessed += r.WordsGuessed
	stats.TotalWords += r.TotalWords
}

// RecordResult folds a finished series into the player's stats and returns
// the updated stats
func (s *Service) RecordResult(ctx context.Context, name string, r Result) (model.PlayerStats, error) {
	var updated model.PlayerStats
	err := s.storage.UpdateStats(ctx, name, func(stats *model.PlayerStats) error {
		Apply(stats, r)
		updated = stats.Clone()
		return nil
	})
	if err != nil {
		s.logger.Error("failed to record result",
			slog.String("player", name),
			slog.String("error", err.Error()))
		return model.PlayerStats{}, err
	}

	s.logger.Info("recorded result",
		slog.String("player", name),
		slog.Bool("won", r.Won),
		slog.Int("attempts", r.Attempts),
		slog.Int("total_games", updated.TotalGames))
	return updated, nil
}

// All returns every player's stats
func (s *Service) All(ctx context.Context) (model.Records, error) {
	players, err := s.storage.ListStats(ctx)
	if err != nil {
		return model.Records{}, err
	}
	return model.Records{Players: players}, nil
}

// Get returns one player's stats
func (s *Service) Get(ctx context.Context, name string) (model.PlayerStats, error) {
	return s.storage.GetStats(ctx, name)
}

// Reset deletes every player's stats
func (s *Service) Reset(ctx context.Context) error {
	if err := s.storage.ResetStats(ctx); err != nil {
		return err
	}
	s.logger.Warn("records reset")
	return nil
}
