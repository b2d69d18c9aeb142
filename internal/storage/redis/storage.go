package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func decodeStats(data []byte) (model.PlayerStats, error) {
	stats := storage.NewStats()
	if err := json.Unmarshal(data, &stats); err != nil {
		return model.PlayerStats{}, err
	}
	if stats.AttemptsDistribution == nil {
		stats.AttemptsDistribution = map[int]int{}
	}
	return stats, nil
}

func (s *Storage) GetStats(ctx context.Context, name string) (model.PlayerStats, error) {
	data, err := s.client.Get(ctx, statsKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.PlayerStats{}, model.ErrStatsNotFound
		}
		return model.PlayerStats{}, err
	}
	return decodeStats(data)
}

func (s *Storage) ListStats(ctx context.Context) (map[string]model.PlayerStats, error) {
	names, err := s.client.SMembers(ctx, statsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]model.PlayerStats, len(names))
	if len(names) == 0 {
		return out, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = statsKey(name)
	}

	// Fetch every player in one round trip using MGET
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, val := range values {
		if val == nil {
			continue // Stats may have expired
		}
		str, ok := val.(string)
		if !ok {
			continue
		}
		stats, err := decodeStats([]byte(str))
		if err != nil {
			continue // Skip invalid data
		}
		out[names[i]] = stats
	}
	return out, nil
}

// UpdateStats runs fn inside WATCH/MULTI so concurrent updates of the same
// player retry instead of overwriting each other
func (s *Storage) UpdateStats(ctx context.Context, name string, fn storage.UpdateFunc) error {
	key := statsKey(name)

	txf := func(tx *redis.Tx) error {
		stats := storage.NewStats()
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if stats, err = decodeStats(data); err != nil {
				return err
			}
		}

		if err := fn(&stats); err != nil {
			return err
		}

		encoded, err := json.Marshal(stats)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.cfg.RecordsTTL)
			pipe.SAdd(ctx, statsIndexKey(), name)
			return nil
		})
		return err
	}

	retries := max(s.cfg.MaxRetries, 1)
	for i := 0; i < retries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update stats for %q: gave up after %d retries", name, retries)
}

func (s *Storage) ResetStats(ctx context.Context) error {
	names, err := s.client.SMembers(ctx, statsIndexKey()).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(names)+1)
	for _, name := range names {
		keys = append(keys, statsKey(name))
	}
	keys = append(keys, statsIndexKey())

	return s.client.Del(ctx, keys...).Err()
}
