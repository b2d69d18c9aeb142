package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string `mapstructure:"url"`

	// Pool settings
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// RecordsTTL expires a player's stats after this long without an update.
	// Zero keeps them forever.
	RecordsTTL time.Duration `mapstructure:"records_ttl"`

	// MaxRetries bounds optimistic-lock retries when two updates race
	MaxRetries int `mapstructure:"max_retries"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RecordsTTL:   0,
		MaxRetries:   50,
	}
}
