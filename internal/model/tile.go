package model

// TileState is the feedback for a single letter of a guess
type TileState string

// Tile states, serialized as they appear on the wire
const (
	TileEmpty   TileState = "EMPTY"
	TileAbsent  TileState = "ABSENT"
	TilePresent TileState = "PRESENT"
	TileCorrect TileState = "CORRECT"
)

// AllCorrect reports whether every tile is Correct. An empty slice is never solved.
func AllCorrect(tiles []TileState) bool {
	if len(tiles) == 0 {
		return false
	}
	for _, t := range tiles {
		if t != TileCorrect {
			return false
		}
	}
	return true
}
