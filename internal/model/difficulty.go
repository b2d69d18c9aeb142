package model

import "strings"

// Difficulty selects the word pool, and the AI skill tier in PVE games
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyHard   Difficulty = "HARD"
	DifficultyMixed  Difficulty = "MIXTA"
)

// ParseDifficulty maps a client supplied tag to a Difficulty.
// Unknown or empty tags fall back to NORMAL.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToUpper(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	case DifficultyMixed, "MIXED":
		return DifficultyMixed
	default:
		return DifficultyNormal
	}
}

// ValidDifficulties returns every accepted difficulty tag
func ValidDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyMixed}
}

// GameMode selects whether a network session has an AI opponent
type GameMode string

const (
	ModePVE  GameMode = "PVE"
	ModeSolo GameMode = "SOLO"
)

// ParseGameMode maps a client supplied mode. Older clients send PVP for a
// game without an AI opponent, so it is treated as SOLO.
func ParseGameMode(s string) GameMode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SOLO", "PVP":
		return ModeSolo
	default:
		return ModePVE
	}
}
