package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/datasweeper/internal/config"
	"github.com/JonMunkholm/datasweeper/internal/core"
	"github.com/JonMunkholm/datasweeper/internal/logging"
	"github.com/JonMunkholm/datasweeper/internal/metrics"
	"github.com/JonMunkholm/datasweeper/internal/web"
)

func main() {
	// Overload lets .env win over the inherited environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	history, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		slog.Error("failed to open conversion history", "error", err)
		os.Exit(1)
	}
	defer closeHistory()

	var m *metrics.Metrics
	opts := []core.Option{core.WithHistory(history)}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts = append(opts, core.WithRecorder(m))
	}

	service := core.NewService(core.Config{
		SessionTTL:    cfg.Upload.SessionTTL,
		PreviewRows:   cfg.Upload.PreviewRows,
		MaxFiles:      cfg.Upload.MaxFiles,
		MaxConcurrent: cfg.Convert.MaxConcurrent,
		MaxWait:       cfg.Convert.MaxWaitTime,
	}, opts...)

	server := web.NewServer(cfg, service, m)

	jobCtx, cancelJobs := context.WithCancel(ctx)
	go service.StartJanitor(jobCtx, core.DefaultSweepInterval)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for conversions to finish", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("conversions did not finish in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		closeHistory()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openHistory connects to Postgres when a database is configured and keeps
// history in memory otherwise.
func openHistory(ctx context.Context, cfg *config.Config) (core.HistoryStore, func(), error) {
	if !cfg.Database.Enabled() {
		slog.Info("no database configured, keeping conversion history in memory",
			"size", cfg.History.MemorySize)
		return core.NewMemoryHistory(cfg.History.MemorySize), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	history := core.NewPostgresHistory(pool)
	if err := history.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return history, pool.Close, nil
}
