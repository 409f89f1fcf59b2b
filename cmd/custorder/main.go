package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/flicky/custorder-api/internal/config"
	"github.com/flicky/custorder-api/internal/custorder"
	"github.com/flicky/custorder-api/internal/handler"
	"github.com/flicky/custorder-api/internal/logger"
	"github.com/flicky/custorder-api/internal/repository"
	"github.com/flicky/custorder-api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv, cfg.Log.Level)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.L().Error("custorder exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.DB.AutoMigrate {
		if err := repository.Migrate(cfg.DB.DSN()); err != nil {
			return err
		}
	}

	db, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(int(cfg.DB.MaxConns))

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.L().Info("connected to PostgreSQL")

	health := handler.NewHealthHandler(handler.Dependency{Name: "postgres", Ping: db.PingContext})
	router := custorder.NewRouter(custorder.NewService(custorder.NewRepository(db)), health)

	return server.Run(ctx, cfg.Server, router)
}
