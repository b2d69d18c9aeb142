// Package config loads server settings from defaults, an optional .env file,
// an optional YAML file and WORDLE_* environment variables, in that order.
// The .env file only sets variables not already in the environment, and those
// are applied with the rest of the environment, after the YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"

	redisstorage "github.com/mcoot/wordlegame-go/internal/storage/redis"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Default file locations
const (
	DefaultPath    = "server.yaml"
	DefaultEnvFile = ".env"
)

// Config is the full server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Game    GameConfig    `mapstructure:"game"`
}

// ServerConfig covers the game protocol listener
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	MaxClients        int           `mapstructure:"max_clients"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
	Debug             bool          `mapstructure:"debug"`
}

// HTTPConfig covers the admin API and websocket listener
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// StorageConfig selects and configures the records store
type StorageConfig struct {
	Type       string              `mapstructure:"type"`
	SQLitePath string              `mapstructure:"sqlite_path"`
	Redis      redisstorage.Config `mapstructure:"redis"`
}

// AuthConfig holds the admin credentials
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
}

// GameConfig holds pacing and word list settings
type GameConfig struct {
	AIDelay          time.Duration `mapstructure:"ai_delay"`
	RoundResultDelay time.Duration `mapstructure:"round_result_delay"`
	NextRoundDelay   time.Duration `mapstructure:"next_round_delay"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
	// WordsDir may hold common.txt and rare.txt lists that extend the
	// built-in ones
	WordsDir string `mapstructure:"words_dir"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:              "localhost",
			Port:              5678,
			MaxClients:        10,
			ConnectionTimeout: 300 * time.Second,
			Debug:             true,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Storage: StorageConfig{
			Type:       StorageMemory,
			SQLitePath: "data/records.db",
			Redis:      redisstorage.DefaultConfig(),
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
		},
		Game: GameConfig{
			AIDelay:          500 * time.Millisecond,
			RoundResultDelay: time.Second,
			NextRoundDelay:   2 * time.Second,
			CleanupInterval:  time.Minute,
		},
	}
}

// Options says where to look for configuration files
type Options struct {
	Path    string
	EnvFile string
}

// Load builds the configuration. Problems with the files or environment are
// logged and the affected values keep their defaults; Load never fails.
func Load(opts Options, logger *slog.Logger) Config {
	cfg := Default()

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("could not load env file",
				slog.String("path", opts.EnvFile),
				slog.String("error", err.Error()))
		}
	}

	if opts.Path != "" {
		fileCfg, err := loadFile(opts.Path, cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("config file not found, using defaults", slog.String("path", opts.Path))
		case err != nil:
			logger.Warn("invalid config file, using defaults",
				slog.String("path", opts.Path),
				slog.String("error", err.Error()))
		default:
			cfg = fileCfg
		}
	}

	applyEnv(&cfg, logger)
	sanitize(&cfg, logger)
	return cfg
}

// Address is the host:port the game server listens on
func (c Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LogLevel is Debug when server.debug is set
func (c Config) LogLevel() slog.Level {
	if c.Server.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func loadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("parse yaml: %w", err)
	}

	cfg := base
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return base, err
	}
	if err := decoder.Decode(normalize(raw)); err != nil {
		return base, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// secondsToDurationHook reads bare numbers as seconds, so
// connection_timeout: 300 means five minutes
func secondsToDurationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
	}
	return data, nil
}

// normalize turns the map[interface{}]interface{} values yaml.v2 produces
// into string-keyed maps
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func applyEnv(cfg *Config, logger *slog.Logger) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Warn("ignoring invalid environment value",
				slog.String("key", key),
				slog.String("value", v))
			return
		}
		*dst = n
	}

	setString("WORDLE_HOST", &cfg.Server.Host)
	setInt("WORDLE_PORT", &cfg.Server.Port)
	setInt("WORDLE_MAX_CLIENTS", &cfg.Server.MaxClients)
	setString("WORDLE_STORAGE", &cfg.Storage.Type)
	setString("WORDLE_REDIS_URL", &cfg.Storage.Redis.URL)
	setString("WORDLE_SQLITE_PATH", &cfg.Storage.SQLitePath)
	setString("WORDLE_JWT_SECRET", &cfg.Auth.JWTSecret)
	setString("WORDLE_ADMIN_PASSWORD_HASH", &cfg.Auth.AdminPasswordHash)
}

func sanitize(cfg *Config, logger *slog.Logger) {
	def := Default()

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		logger.Warn("invalid port, using default", slog.Int("port", cfg.Server.Port))
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.MaxClients <= 0 {
		logger.Warn("invalid max_clients, using default", slog.Int("max_clients", cfg.Server.MaxClients))
		cfg.Server.MaxClients = def.Server.MaxClients
	}
	if cfg.Server.ConnectionTimeout < 0 {
		cfg.Server.ConnectionTimeout = def.Server.ConnectionTimeout
	}

	switch cfg.Storage.Type {
	case StorageMemory, StorageSQLite, StorageRedis:
	default:
		logger.Warn("unknown storage type, using memory", slog.String("type", cfg.Storage.Type))
		cfg.Storage.Type = StorageMemory
	}

	for _, d := range []*time.Duration{
		&cfg.Game.AIDelay, &cfg.Game.RoundResultDelay, &cfg.Game.NextRoundDelay, &cfg.Game.CleanupInterval,
	} {
		if *d < 0 {
			*d = 0
		}
	}
}
