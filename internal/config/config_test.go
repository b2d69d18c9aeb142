package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wordlegame-go/internal/config"
	"github.com/mcoot/wordlegame-go/internal/testutil"
)

type ConfigSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
	for _, key := range []string{
		"WORDLE_HOST", "WORDLE_PORT", "WORDLE_MAX_CLIENTS", "WORDLE_STORAGE", "WORDLE_REDIS_URL",
		"WORDLE_SQLITE_PATH", "WORDLE_JWT_SECRET", "WORDLE_ADMIN_PASSWORD_HASH",
	} {
		s.T().Setenv(key, "")
	}
}

func (s *ConfigSuite) write(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigSuite) load(path string) config.Config {
	return config.Load(config.Options{Path: path}, testutil.NopLogger())
}

func (s *ConfigSuite) TestDefaults() {
	cfg := config.Default()

	s.Equal("localhost", cfg.Server.Host)
	s.Equal(5678, cfg.Server.Port)
	s.Equal(10, cfg.Server.MaxClients)
	s.Equal(300*time.Second, cfg.Server.ConnectionTimeout)
	s.True(cfg.Server.Debug)
	s.Equal(config.StorageMemory, cfg.Storage.Type)
	s.Equal(500*time.Millisecond, cfg.Game.AIDelay)
	s.Equal(time.Second, cfg.Game.RoundResultDelay)
	s.Equal(2*time.Second, cfg.Game.NextRoundDelay)
	s.Equal("localhost:5678", cfg.Address())
	s.Equal(slog.LevelDebug, cfg.LogLevel())
}

func (s *ConfigSuite) TestMissingFileFallsBackToDefaults() {
	cfg := s.load(filepath.Join(s.dir, "nope.yaml"))
	s.Equal(config.Default(), cfg)
}

func (s *ConfigSuite) TestInvalidFileFallsBackToDefaults() {
	path := s.write("server.yaml", "server: [this is: not valid")
	cfg := s.load(path)
	s.Equal(config.Default(), cfg)
}

func (s *ConfigSuite) TestUnknownKeyFallsBackToDefaults() {
	path := s.write("server.yaml", "server:\n  prot: 9000\n")
	cfg := s.load(path)
	s.Equal(5678, cfg.Server.Port)
}

func (s *ConfigSuite) TestFileOverridesDefaults() {
	path := s.write("server.yaml", `
server:
  host: 0.0.0.0
  port: "7000"
  max_clients: 4
  connection_timeout: 60
  debug: false
storage:
  type: redis
  redis:
    url: redis://cache:6379/1
    pool_size: 3
game:
  ai_delay: 0s
  next_round_delay: 250ms
`)
	cfg := s.load(path)

	s.Equal("0.0.0.0", cfg.Server.Host)
	s.Equal(7000, cfg.Server.Port)
	s.Equal(4, cfg.Server.MaxClients)
	s.Equal(60*time.Second, cfg.Server.ConnectionTimeout)
	s.False(cfg.Server.Debug)
	s.Equal(slog.LevelInfo, cfg.LogLevel())
	s.Equal(config.StorageRedis, cfg.Storage.Type)
	s.Equal("redis://cache:6379/1", cfg.Storage.Redis.URL)
	s.Equal(3, cfg.Storage.Redis.PoolSize)
	s.Equal(config.Default().Storage.Redis.MaxRetries, cfg.Storage.Redis.MaxRetries)
	s.Equal(time.Duration(0), cfg.Game.AIDelay)
	s.Equal(250*time.Millisecond, cfg.Game.NextRoundDelay)
	s.Equal(time.Second, cfg.Game.RoundResultDelay)
}

func (s *ConfigSuite) TestEnvironmentOverridesFile() {
	path := s.write("server.yaml", "server:\n  port: 7000\n")
	s.T().Setenv("WORDLE_PORT", "7100")
	s.T().Setenv("WORDLE_STORAGE", "sqlite")
	s.T().Setenv("WORDLE_SQLITE_PATH", "/tmp/records.db")
	s.T().Setenv("WORDLE_JWT_SECRET", "shh")

	cfg := s.load(path)

	s.Equal(7100, cfg.Server.Port)
	s.Equal(config.StorageSQLite, cfg.Storage.Type)
	s.Equal("/tmp/records.db", cfg.Storage.SQLitePath)
	s.Equal("shh", cfg.Auth.JWTSecret)
}

func (s *ConfigSuite) TestInvalidEnvironmentValueIsIgnored() {
	s.T().Setenv("WORDLE_MAX_CLIENTS", "lots")
	cfg := s.load("")
	s.Equal(10, cfg.Server.MaxClients)
}

func (s *ConfigSuite) TestOutOfRangeValuesUseDefaults() {
	path := s.write("server.yaml", "server:\n  port: -1\n  max_clients: 0\nstorage:\n  type: floppy\n")
	cfg := s.load(path)

	s.Equal(5678, cfg.Server.Port)
	s.Equal(10, cfg.Server.MaxClients)
	s.Equal(config.StorageMemory, cfg.Storage.Type)
}

func (s *ConfigSuite) TestEnvFileIsLoaded() {
	envPath := s.write(".env", "WORDLE_ADMIN_PASSWORD_HASH=from-dotenv\n")
	s.Require().NoError(os.Unsetenv("WORDLE_ADMIN_PASSWORD_HASH"))

	cfg := config.Load(config.Options{EnvFile: envPath}, testutil.NopLogger())
	s.Equal("from-dotenv", cfg.Auth.AdminPasswordHash)
}

func (s *ConfigSuite) TestMissingEnvFileIsIgnored() {
	cfg := config.Load(config.Options{EnvFile: filepath.Join(s.dir, ".env")}, testutil.NopLogger())
	s.Equal(config.Default(), cfg)
}

func (s *ConfigSuite) TestLoadOrder() {
	envPath := s.write(".env", "WORDLE_PORT=7200\nWORDLE_MAX_CLIENTS=40\n")
	path := s.write("server.yaml", "server:\n  port: 7000\n  max_clients: 20\n  host: 127.0.0.1\n")
	s.Require().NoError(os.Unsetenv("WORDLE_PORT"))
	s.Require().NoError(os.Unsetenv("WORDLE_MAX_CLIENTS"))
	s.T().Cleanup(func() {
		_ = os.Unsetenv("WORDLE_PORT")
		_ = os.Unsetenv("WORDLE_MAX_CLIENTS")
	})
	s.T().Setenv("WORDLE_HOST", "0.0.0.0")

	cfg := config.Load(config.Options{Path: path, EnvFile: envPath}, testutil.NopLogger())

	s.Equal(7200, cfg.Server.Port)
	s.Equal(40, cfg.Server.MaxClients)
	s.Equal("0.0.0.0", cfg.Server.Host)

	// variables already set win over the .env file
	s.T().Setenv("WORDLE_PORT", "7300")
	cfg = config.Load(config.Options{Path: path, EnvFile: envPath}, testutil.NopLogger())
	s.Equal(7300, cfg.Server.Port)
}
