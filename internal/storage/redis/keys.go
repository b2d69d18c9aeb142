package redis

import "fmt"

// Key prefix for all game-related data
const keyPrefix = "wordle"

// statsKey returns the Redis key for a player's stats
func statsKey(name string) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, name)
}

// statsIndexKey returns the Redis key for the SET of player names with stats
func statsIndexKey() string {
	return fmt.Sprintf("%s:idx:stats", keyPrefix)
}

