// Command tracknest-server starts the task tracking HTTP API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tracknest/tracknest/internal/config"
	"github.com/tracknest/tracknest/internal/limiter"
	"github.com/tracknest/tracknest/internal/migrate"
	"github.com/tracknest/tracknest/internal/repository/postgres"
	httpserver "github.com/tracknest/tracknest/internal/server/http"
	"github.com/tracknest/tracknest/internal/service"
	"github.com/tracknest/tracknest/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger := newLogger(cfg.Logging.Level)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Server.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.Database.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	db := &postgres.DB{Pool: pool}
	personRepo := postgres.NewPersonRepo(db)
	taskRepo := postgres.NewTaskRepo(db)

	lim := limiter.NewPG(pool, cfg.Limiter.Window, cfg.Limiter.MaxFailures, cfg.Limiter.BlockFor)

	// Services
	personSvc := service.NewPersonService(personRepo, lim)
	taskSvc := service.NewTaskService(taskRepo, personSvc, cfg.Auth.AdminOverride)
	tokens := token.NewService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	srv := httpserver.New(logger, tokens, personSvc, taskSvc, cfg.Pagination.PageSize)

	logger.Info("listening", zap.String("addr", cfg.Server.Addr))
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil && level != "" {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		logger = zap.NewExample()
	}
	return logger
}
