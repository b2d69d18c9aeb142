// Package storagetest holds the behavior every records backend must share.
package storagetest

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/storage"
)

// Suite runs against the backend returned by Storage. Backends embed it and
// set Storage in their own SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Ctx = context.Background()
}

func (s *Suite) bump(stats *model.PlayerStats) error {
	stats.GamesWon++
	stats.TotalGames++
	stats.AttemptsDistribution[3]++
	return nil
}

func (s *Suite) TestGetUnknownPlayer() {
	_, err := s.Storage.GetStats(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrStatsNotFound)
}

func (s *Suite) TestUpdateCreatesPlayer() {
	s.Require().NoError(s.Storage.UpdateStats(s.Ctx, "Alice", s.bump))

	stats, err := s.Storage.GetStats(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(1, stats.GamesWon)
	s.Equal(1, stats.TotalGames)
	s.Equal(map[int]int{3: 1}, stats.AttemptsDistribution)
}

func (s *Suite) TestUpdateAccumulates() {
	s.Require().NoError(s.Storage.UpdateStats(s.Ctx, "Alice", s.bump))
	s.Require().NoError(s.Storage.UpdateStats(s.Ctx, "Alice", func(stats *model.PlayerStats) error {
		stats.GamesLost++
		stats.TotalGames++
		stats.AverageAttempts = 4.5
		return nil
	}))

	stats, err := s.Storage.GetStats(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(1, stats.GamesWon)
	s.Equal(1, stats.GamesLost)
	s.Equal(2, stats.TotalGames)
	s.InDelta(4.5, stats.AverageAttempts, 1e-9)
}

func (s *Suite) TestFailedUpdateChangesNothing() {
	s.Require().NoError(s.Storage.UpdateStats(s.Ctx, "Alice", s.bump))
	boom := errors.New("boom")

	err := s.Storage.UpdateStats(s.Ctx, "Alice", func(stats *model.PlayerStats) error {
		stats.GamesWon = 100
		return boom
	})
	s.ErrorIs(err, boom)

	stats, err := s.Storage.GetStats(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(1, stats.GamesWon)

	_, err = s.Storage.GetStats(s.Ctx, "Bob")
	s.ErrorIs(err, model.ErrStatsNotFound)
	s.Require().Error(s.Storage.UpdateStats(s.Ctx, "Bob", func(*model.PlayerStats) error { return boom }))
	_, err = s.Storage.GetStats(s.Ctx, "Bob")
	s.ErrorIs(err, model.ErrStatsNotFound)
}

func (s *Suite) TestReturnedStatsAreCopies() {
	s.Require().NoError(s.Storage.UpdateStats(s.Ctx, "Alice", s.bump))

	stats, err := s.Storage.GetStats(s.Ctx, "Alice")
	s.Require().NoError(err)
	stats.AttemptsDistribution[3] = 99

	again, err := s.Storage.GetStats(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(1, again.AttemptsDistribution[3])
}

func (s *Suite) TestListStats() {
	s.Require().NoError(s.Storage.UpdateStats(s.Ctx, "Alice", s.bump))
	s.Require().NoError(s.Storage.UpdateStats(s.Ctx, "Bob", s.bump))

	all, err := s.Storage.ListStats(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(1, all["Alice"].GamesWon)
	s.Equal(1, all["Bob"].GamesWon)
}

func (s *Suite) TestListStatsEmpty() {
	all, err := s.Storage.ListStats(s.Ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *Suite) TestResetStats() {
	s.Require().NoError(s.Storage.UpdateStats(s.Ctx, "Alice", s.bump))
	s.Require().NoError(s.Storage.ResetStats(s.Ctx))

	_, err := s.Storage.GetStats(s.Ctx, "Alice")
	s.ErrorIs(err, model.ErrStatsNotFound)
	all, err := s.Storage.ListStats(s.Ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *Suite) TestConcurrentUpdatesAreNotLost() {
	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.Storage.UpdateStats(s.Ctx, "Alice", s.bump))
		}()
	}
	wg.Wait()

	stats, err := s.Storage.GetStats(s.Ctx, "Alice")
	s.Require().NoError(err)
	s.Equal(writers, stats.GamesWon)
	s.Equal(writers, stats.AttemptsDistribution[3])
}
