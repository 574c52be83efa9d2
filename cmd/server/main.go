package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fulcrumproject/taskdb/confbuilder"
	"github.com/fulcrumproject/taskdb/datasource"
	"github.com/fulcrumproject/taskdb/env"
	"github.com/fulcrumproject/taskdb/gormpg"
	"github.com/fulcrumproject/taskdb/logging"
)

// Conf is the server configuration. Datasource settings are resolved separately.
type Conf struct {
	Addr            string          `json:"addr" env:"HTTP_ADDR" validate:"required"`
	ShutdownTimeout time.Duration   `json:"shutdownTimeout" env:"HTTP_SHUTDOWN_TIMEOUT" validate:"required"`
	Log             logging.LogConf `json:"log"`
	DB              gormpg.Conf     `json:"db"`
}

func defaultConf() *Conf {
	return &Conf{
		Addr:            ":3000",
		ShutdownTimeout: 10 * time.Second,
		Log: logging.LogConf{
			Format: "text",
			Level:  slog.LevelInfo,
		},
		DB: gormpg.Conf{
			LogFormat: "text",
			LogLevel:  slog.LevelInfo,
		},
	}
}

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Run the task management API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := confbuilder.New(defaultConf()).EnvFiles(".env").File(&configPath).Build()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, datasource.NewProvider(datasource.NewConfig(env.NewConfig(env.OS()))))
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a JSON configuration file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Conf, provider *datasource.Provider) error {
	logger := logging.NewLogger(&cfg.Log)
	slog.SetDefault(logger)

	opts := provider.Options()
	logger.Info("Resolved datasource", "dsn", opts.Redacted().DSN(), "synchronize", opts.Synchronize, "logging", opts.Logging)

	db, err := gormpg.NewConnection(opts, &cfg.DB)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	defer sqlDB.Close()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: newRouter(logger, sqlDB),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
