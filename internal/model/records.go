package model

// PlayerStats is the persisted aggregate for one player name
type PlayerStats struct {
	GamesWon             int         `json:"gamesWon"`
	GamesLost            int         `json:"gamesLost"`
	TotalGames           int         `json:"totalGames"`
	CurrentStreak        int         `json:"currentStreak"`
	MaxStreak            int         `json:"maxStreak"`
	AverageAttempts      float64     `json:"averageAttempts"`
	AttemptsDistribution map[int]int `json:"attemptsDistribution"`
	WordsGuessed         int         `json:"wordsGuessed"`
	TotalWords           int         `json:"totalWords"`
}

// WinRate is games won over games played
func (s PlayerStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.TotalGames)
}

// GuessRate is words guessed over words attempted
func (s PlayerStats) GuessRate() float64 {
	if s.TotalWords == 0 {
		return 0
	}
	return float64(s.WordsGuessed) / float64(s.TotalWords)
}

// Clone returns a deep copy
func (s PlayerStats) Clone() PlayerStats {
	out := s
	out.AttemptsDistribution = make(map[int]int, len(s.AttemptsDistribution))
	for k, v := range s.AttemptsDistribution {
		out.AttemptsDistribution[k] = v
	}
	return out
}

// Records is every player's stats keyed by display name
type Records struct {
	Players map[string]PlayerStats `json:"players"`
}
