package testutil

import (
	"sync"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/mcoot/wordlegame-go/internal/model"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
)

// StubWords is a dictionary.Source with scripted secrets.
// RandomWord hands out Secrets in order and then repeats the last one.
type StubWords struct {
	mu      sync.Mutex
	secrets []string
	next    int
	valid   []string
}

var _ dictionary.Source = (*StubWords)(nil)

// NewStubWords creates a stub that accepts valid plus every secret as a guess
func NewStubWords(secrets []string, valid ...string) *StubWords {
	all := make([]string, 0, len(secrets)+len(valid))
	for _, w := range append(append([]string{}, secrets...), valid...) {
		w = dictionary.Normalize(w)
		if !lo.Contains(all, w) {
			all = append(all, w)
		}
	}
	return &StubWords{secrets: secrets, valid: all}
}

// Words returns every known word of the given length
func (s *StubWords) Words(length int, _ model.Difficulty) []string {
	var out []string
	for _, w := range s.valid {
		if utf8.RuneCountInString(w) == length {
			out = append(out, w)
		}
	}
	return out
}

// RandomWord returns the next scripted secret
func (s *StubWords) RandomWord(length int, _ model.Difficulty) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.secrets) == 0 {
		return "", model.ErrNoWords
	}
	idx := min(s.next, len(s.secrets)-1)
	s.next++
	return s.secrets[idx], nil
}

// IsValid reports whether word is a secret or one of the extra valid words
func (s *StubWords) IsValid(word string) bool {
	return lo.Contains(s.valid, dictionary.Normalize(word))
}

// Drawn returns how many secrets have been handed out
func (s *StubWords) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

