package dictionary

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/mcoot/wordlegame-go/internal/dependencies/random"
	"github.com/mcoot/wordlegame-go/internal/model"
)

//go:embed words/*.txt
var embedded embed.FS

// Tier is the pool a word list belongs to
type Tier string

const (
	TierCommon Tier = "common"
	TierRare   Tier = "rare"
)

// normalShareCommon is the percentage of NORMAL draws taken from the common pool
const normalShareCommon = 70

// Source is the word provider games draw secrets from and validate guesses against
type Source interface {
	// Words returns every word of the given length in the difficulty's pool
	Words(length int, difficulty model.Difficulty) []string
	// RandomWord picks a secret of the given length, failing if the pool is empty
	RandomWord(length int, difficulty model.Difficulty) (string, error)
	// IsValid reports whether the word is a known word of any length or tier
	IsValid(word string) bool
}

// Service holds the common and rare word pools grouped by length
type Service struct {
	random random.Random

	mu     sync.RWMutex
	pools  map[Tier]map[int][]string
	inPool map[Tier]map[string]struct{}
	valid  map[string]struct{}
	loaded bool
}

var _ Source = (*Service)(nil)

// New creates an empty dictionary
func New(rnd random.Random) *Service {
	return &Service{
		random: rnd,
		pools: map[Tier]map[int][]string{
			TierCommon: {},
			TierRare:   {},
		},
		inPool: map[Tier]map[string]struct{}{
			TierCommon: {},
			TierRare:   {},
		},
		valid: make(map[string]struct{}),
	}
}

// LoadEmbedded loads the word lists compiled into the binary
func (s *Service) LoadEmbedded() error {
	for _, tier := range []Tier{TierCommon, TierRare} {
		f, err := embedded.Open("words/" + string(tier) + ".txt")
		if err != nil {
			return err
		}
		words, err := readWords(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("reading %s words: %w", tier, err)
		}
		if err := s.LoadWords(tier, words); err != nil {
			return err
		}
	}
	return nil
}

// LoadFromFile adds words from a file (one word per line, # comments) to a tier
func (s *Service) LoadFromFile(_ context.Context, path string, tier Tier) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	words, err := readWords(file)
	if err != nil {
		return err
	}
	return s.LoadWords(tier, words)
}

// LoadWords adds words to a tier. Words are trimmed and uppercased.
func (s *Service) LoadWords(tier Tier, words []string) error {
	if tier != TierCommon && tier != TierRare {
		return fmt.Errorf("unknown word tier %q", tier)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pool, seen := s.pools[tier], s.inPool[tier]
	for _, w := range words {
		word := Normalize(w)
		if word == "" {
			continue
		}
		if _, dup := seen[word]; !dup {
			seen[word] = struct{}{}
			n := utf8.RuneCountInString(word)
			pool[n] = append(pool[n], word)
		}
		s.valid[word] = struct{}{}
	}
	s.loaded = true
	return nil
}

// Words returns the pool for a difficulty: EASY is common words, HARD is rare
// words and every other tier is the union of both.
func (s *Service) Words(length int, difficulty model.Difficulty) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch difficulty {
	case model.DifficultyEasy:
		return s.copyPool(TierCommon, length)
	case model.DifficultyHard:
		return s.copyPool(TierRare, length)
	default:
		return append(s.copyPool(TierCommon, length), s.copyPool(TierRare, length)...)
	}
}

// RandomWord draws a secret. NORMAL draws from the common pool 70% of the time
// and from the rare pool otherwise; MIXTA draws from both pools at once.
func (s *Service) RandomWord(length int, difficulty model.Difficulty) (string, error) {
	var words []string
	switch difficulty {
	case model.DifficultyNormal:
		tier := TierRare
		if s.random.Intn(100) < normalShareCommon {
			tier = TierCommon
		}
		s.mu.RLock()
		words = s.copyPool(tier, length)
		s.mu.RUnlock()
		if len(words) == 0 {
			words = s.Words(length, model.DifficultyMixed)
		}
	default:
		words = s.Words(length, difficulty)
	}

	if len(words) == 0 {
		return "", fmt.Errorf("%w: length %d, difficulty %s", model.ErrNoWords, length, difficulty)
	}
	return words[s.random.Intn(len(words))], nil
}

// IsValid reports whether a word is known, ignoring case and surrounding space
func (s *Service) IsValid(word string) bool {
	w := Normalize(word)
	if w == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.valid[w]
	return ok
}

// IsLoaded returns whether any words have been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of distinct words across both tiers
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.valid)
}

// Lengths returns the word lengths that have at least one word in any tier
func (s *Service) Lengths() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lengths []int
	for _, pool := range s.pools {
		for n, words := range pool {
			if len(words) > 0 {
				lengths = append(lengths, n)
			}
		}
	}
	return lo.Uniq(lengths)
}

func (s *Service) copyPool(tier Tier, length int) []string {
	src := s.pools[tier][length]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Normalize trims and uppercases a word the way the dictionary stores it
func Normalize(word string) string {
	return strings.ToUpper(strings.TrimSpace(word))
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
