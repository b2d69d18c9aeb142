package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/wordlegame-go/internal/config"
	"github.com/mcoot/wordlegame-go/internal/dependencies/mocks"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
	"github.com/mcoot/wordlegame-go/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// TestConfig is the default configuration with the cleanup loop disabled
func TestConfig() config.Config {
	cfg := config.Default()
	cfg.Game.CleanupInterval = 0
	return cfg
}

// NewTestApp creates an App with mocked clock and random, in-memory storage
// and the given word source. Pacing delays are virtual, so games run at once.
func NewTestApp(words dictionary.Source) *TestApp {
	return NewTestAppWithConfig(TestConfig(), words)
}

// NewTestAppWithConfig is NewTestApp with caller-provided settings. The
// storage section is ignored.
func NewTestAppWithConfig(cfg config.Config, words dictionary.Source) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(cfg, memory.New(), words, mockClock, mockRandom, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
