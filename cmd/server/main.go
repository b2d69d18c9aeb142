package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/wordlegame-go/internal/api"
	"github.com/mcoot/wordlegame-go/internal/config"
	"github.com/mcoot/wordlegame-go/internal/factory"
)

const shutdownTimeout = 10 * time.Second

type flags struct {
	configPath string
	envFile    string
	port       int
	storage    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "wordle-server",
		Short: "Multiplayer word guessing game server",
		Long: `wordle-server runs the game protocol over TCP and, when enabled, the
admin HTTP API with a websocket transport on a second address.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", config.DefaultPath, "YAML config file")
	cmd.Flags().StringVar(&f.envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded before the environment")
	cmd.Flags().IntVar(&f.port, "port", 0, "game server port (overrides config)")
	cmd.Flags().StringVar(&f.storage, "storage", "", "records storage: memory, sqlite or redis (overrides config)")

	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	// Config loading logs before the configured level is known
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load(config.Options{Path: f.configPath, EnvFile: f.envFile}, bootLogger)
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = f.port
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage.Type = f.storage
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	app, err := factory.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		errCh <- app.GameServer.ListenAndServe(cfg.Address())
	}()

	var httpServer *api.Server
	if cfg.HTTP.Enabled {
		httpCfg := api.DefaultServerConfig()
		httpCfg.Addr = cfg.HTTP.Addr
		httpServer = api.NewServer(app.Router, httpCfg, logger)
		go func() {
			errCh <- httpServer.Start()
		}()
	}

	logger.Info("server started",
		slog.String("addr", cfg.Address()),
		slog.Bool("http_enabled", cfg.HTTP.Enabled),
		slog.String("storage", cfg.Storage.Type),
		slog.Int("max_clients", cfg.Server.MaxClients))

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error("server error", slog.String("error", runErr.Error()))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if httpServer != nil {
		errs = append(errs, httpServer.Shutdown(shutdownCtx))
	}
	errs = append(errs, app.Shutdown(shutdownCtx))
	if err := errors.Join(errs...); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		return errors.Join(runErr, err)
	}

	logger.Info("server stopped")
	return runErr
}
