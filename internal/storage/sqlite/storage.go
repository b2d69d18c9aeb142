// Package sqlite stores player records in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/wordlegame-go/internal/dependencies/clock"
	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/storage"
)

//go:embed sql/*.sql
var migrations embed.FS

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db    *sql.DB
	clock clock.Clock
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open opens (creating if needed) the database at path and applies migrations
func Open(path string, clk clock.Clock) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db, clock: clk}, nil
}

// migrate applies embedded migrations in lexical order, recording each in
// _migrations so reopening a database is a no-op
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name = ?`, f).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations (name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
	}
	return nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectStats = `SELECT games_won, games_lost, total_games, current_streak, max_streak,
	average_attempts, distribution, words_guessed, total_words FROM player_stats`

type scanner interface {
	Scan(dest ...any) error
}

func scanStats(row scanner) (model.PlayerStats, error) {
	var (
		stats        model.PlayerStats
		distribution string
	)
	err := row.Scan(&stats.GamesWon, &stats.GamesLost, &stats.TotalGames, &stats.CurrentStreak,
		&stats.MaxStreak, &stats.AverageAttempts, &distribution, &stats.WordsGuessed, &stats.TotalWords)
	if err != nil {
		return model.PlayerStats{}, err
	}

	stats.AttemptsDistribution = map[int]int{}
	if err := json.Unmarshal([]byte(distribution), &stats.AttemptsDistribution); err != nil {
		return model.PlayerStats{}, fmt.Errorf("decode distribution: %w", err)
	}
	return stats, nil
}

func getStats(ctx context.Context, q querier, name string) (model.PlayerStats, error) {
	stats, err := scanStats(q.QueryRowContext(ctx, selectStats+` WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlayerStats{}, model.ErrStatsNotFound
	}
	return stats, err
}

func (s *Storage) GetStats(ctx context.Context, name string) (model.PlayerStats, error) {
	return getStats(ctx, s.db, name)
}

func (s *Storage) ListStats(ctx context.Context) (map[string]model.PlayerStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, games_won, games_lost, total_games, current_streak,
		max_streak, average_attempts, distribution, words_guessed, total_words FROM player_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]model.PlayerStats)
	for rows.Next() {
		var name string
		stats, err := scanStats(namedRow{name: &name, rows: rows})
		if err != nil {
			return nil, err
		}
		out[name] = stats
	}
	return out, rows.Err()
}

// namedRow scans a leading name column before the stats columns
type namedRow struct {
	name *string
	rows *sql.Rows
}

func (r namedRow) Scan(dest ...any) error {
	return r.rows.Scan(append([]any{r.name}, dest...)...)
}

// UpdateStats reads, mutates and writes the player's row in one immediate
// transaction
func (s *Storage) UpdateStats(ctx context.Context, name string, fn storage.UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stats, err := getStats(ctx, tx, name)
	switch {
	case errors.Is(err, model.ErrStatsNotFound):
		stats = storage.NewStats()
	case err != nil:
		return err
	}

	if err := fn(&stats); err != nil {
		return err
	}

	distribution, err := json.Marshal(stats.AttemptsDistribution)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO player_stats (name, games_won, games_lost, total_games,
		current_streak, max_streak, average_attempts, distribution, words_guessed, total_words, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			games_won = excluded.games_won,
			games_lost = excluded.games_lost,
			total_games = excluded.total_games,
			current_streak = excluded.current_streak,
			max_streak = excluded.max_streak,
			average_attempts = excluded.average_attempts,
			distribution = excluded.distribution,
			words_guessed = excluded.words_guessed,
			total_words = excluded.total_words,
			updated_at = excluded.updated_at`,
		name, stats.GamesWon, stats.GamesLost, stats.TotalGames, stats.CurrentStreak, stats.MaxStreak,
		stats.AverageAttempts, string(distribution), stats.WordsGuessed, stats.TotalWords,
		s.clock.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert stats for %q: %w", name, err)
	}

	return tx.Commit()
}

func (s *Storage) ResetStats(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM player_stats`)
	return err
}
