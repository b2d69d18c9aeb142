package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/mcoot/wordlegame-go/internal/api"
	"github.com/mcoot/wordlegame-go/internal/config"
	"github.com/mcoot/wordlegame-go/internal/dependencies/clock"
	"github.com/mcoot/wordlegame-go/internal/dependencies/random"
	"github.com/mcoot/wordlegame-go/internal/server"
	"github.com/mcoot/wordlegame-go/internal/services/auth"
	"github.com/mcoot/wordlegame-go/internal/services/dictionary"
	"github.com/mcoot/wordlegame-go/internal/services/records"
	"github.com/mcoot/wordlegame-go/internal/services/room"
	"github.com/mcoot/wordlegame-go/internal/storage"
	"github.com/mcoot/wordlegame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/wordlegame-go/internal/storage/redis"
	"github.com/mcoot/wordlegame-go/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	Config config.Config

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Words          dictionary.Source
	Registry       *room.Registry
	RecordsService *records.Service
	AuthService    *auth.Service

	// Transports
	GameServer *server.Server
	Router     http.Handler
}

// New creates a new application with all dependencies wired
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()

	dict := dictionary.New(rnd)
	if err := loadDictionary(dict, cfg.Game.WordsDir, logger); err != nil {
		return nil, err
	}

	store, err := newStorage(cfg.Storage, clk)
	if err != nil {
		return nil, err
	}

	logger.Info("application wired",
		slog.String("storage", cfg.Storage.Type),
		slog.Int("words", dict.WordCount()))

	return newWithDependencies(cfg, store, dict, clk, rnd, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg config.Config, store storage.Storage, words dictionary.Source, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	registry := room.NewRegistry(words, clk, rnd, logger)
	recordsService := records.New(store, logger)
	authService := auth.New(auth.Config{
		Secret:       cfg.Auth.JWTSecret,
		PasswordHash: cfg.Auth.AdminPasswordHash,
		TokenTTL:     cfg.Auth.TokenTTL,
	}, clk)

	gameServer := server.New(server.Config{
		MaxClients:       cfg.Server.MaxClients,
		IdleTimeout:      cfg.Server.ConnectionTimeout,
		AIDelay:          cfg.Game.AIDelay,
		RoundResultDelay: cfg.Game.RoundResultDelay,
		NextRoundDelay:   cfg.Game.NextRoundDelay,
		CleanupInterval:  cfg.Game.CleanupInterval,
	}, server.Dependencies{
		Words:    words,
		Registry: registry,
		Records:  recordsService,
		Clock:    clk,
		Random:   rnd,
		Logger:   logger,
	})

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    authService,
		RecordsService: recordsService,
		Registry:       registry,
		Counter:        gameServer,
		Websocket:      gameServer.ServeWebsocket,
	})

	return &App{
		Config:         cfg,
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Words:          words,
		Registry:       registry,
		RecordsService: recordsService,
		AuthService:    authService,
		GameServer:     gameServer,
		Router:         router,
	}
}

// Shutdown stops the game server and closes storage
func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(a.GameServer.Shutdown(ctx), a.Storage.Close())
}

func newStorage(cfg config.StorageConfig, clk clock.Clock) (storage.Storage, error) {
	switch cfg.Type {
	case "", config.StorageMemory:
		return memory.New(), nil
	case config.StorageSQLite:
		st, err := sqlite.Open(cfg.SQLitePath, clk)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return st, nil
	case config.StorageRedis:
		st, err := redisstorage.New(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis storage: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("invalid storage type %q: must be memory, sqlite or redis", cfg.Type)
	}
}

// loadDictionary loads the built-in lists plus any common.txt and rare.txt in dir
func loadDictionary(dict *dictionary.Service, dir string, logger *slog.Logger) error {
	if err := dict.LoadEmbedded(); err != nil {
		return fmt.Errorf("load embedded words: %w", err)
	}
	if dir == "" {
		return nil
	}

	for _, tier := range []dictionary.Tier{dictionary.TierCommon, dictionary.TierRare} {
		path := filepath.Join(dir, string(tier)+".txt")
		err := dict.LoadFromFile(context.Background(), path, tier)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("no extra word list", slog.String("path", path))
		case err != nil:
			return fmt.Errorf("load %s: %w", path, err)
		default:
			logger.Info("loaded word list", slog.String("path", path))
		}
	}
	return nil
}
