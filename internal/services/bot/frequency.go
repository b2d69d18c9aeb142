package bot

import "unicode"

// letterFrequency is the approximate share (percent) of each letter in Spanish text
var letterFrequency = map[rune]float64{
	'e': 13.7, 'a': 12.5, 'o': 8.7, 's': 8.0, 'r': 6.9,
	'n': 6.7, 'i': 6.2, 'l': 5.0, 'd': 5.8, 'c': 4.7,
	't': 4.6, 'u': 3.9, 'm': 3.1, 'p': 2.5, 'b': 1.4,
	'g': 1.0, 'v': 0.9, 'y': 0.9, 'q': 0.9, 'h': 0.7,
	'f': 0.7, 'z': 0.5, 'j': 0.4, 'ñ': 0.3, 'x': 0.2,
	'w': 0.02, 'k': 0.01,
}

// frequencyScore sums the letter frequency of every letter in word.
// Repeated letters count each time; letters outside the table score zero.
func frequencyScore(word string) float64 {
	var score float64
	for _, r := range word {
		score += letterFrequency[unicode.ToLower(r)]
	}
	return score
}

// uniqueLetters counts distinct letters in word
func uniqueLetters(word string) int {
	seen := make(map[rune]struct{}, len(word))
	for _, r := range word {
		seen[r] = struct{}{}
	}
	return len(seen)
}
