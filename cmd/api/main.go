package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flicky/custorder-api/internal/config"
	"github.com/flicky/custorder-api/internal/events"
	"github.com/flicky/custorder-api/internal/handler"
	"github.com/flicky/custorder-api/internal/logger"
	"github.com/flicky/custorder-api/internal/ratelimit"
	"github.com/flicky/custorder-api/internal/repository"
	"github.com/flicky/custorder-api/internal/repository/memstore"
	"github.com/flicky/custorder-api/internal/server"
	"github.com/flicky/custorder-api/internal/service"
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
		logger.L().Error("api exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

type repos struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	products  repository.ProductRepository
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.L()
	var deps []handler.Dependency

	// Storage
	var r repos
	switch cfg.StoreDriver {
	case config.StoreMemory:
		store := memstore.New()
		r = repos{store.Customers(), store.Orders(), store.Products()}
		log.Info("using in-memory store")
	default:
		if cfg.DB.AutoMigrate {
			if err := repository.Migrate(cfg.DB.DSN()); err != nil {
				return err
			}
		}
		pool, err := openPool(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		r = repos{
			repository.NewCustomerRepository(pool),
			repository.NewOrderRepository(pool),
			repository.NewProductRepository(pool),
		}
		deps = append(deps, handler.PostgresDependency(pool))
		log.Info("connected to PostgreSQL")
	}

	// Redis backs the rate limiter when configured.
	var limiter ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		deps = append(deps, handler.RedisDependency(client))
		if cfg.RateLimit.Enabled {
			limiter = ratelimit.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
		log.Info("connected to Redis")
	} else if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	// RabbitMQ
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("open RabbitMQ channel: %w", err)
		}
		defer ch.Close()

		if err := events.SetupRabbitMQ(ch); err != nil {
			return err
		}
		publisher = events.NewAMQPPublisher(ch)
		deps = append(deps, handler.RabbitMQDependency(conn))
		log.Info("connected to RabbitMQ")
	}

	customerSvc := service.NewCustomerService(r.customers)
	svc := handler.Services{
		Customers: customerSvc,
		Orders:    service.NewOrderService(r.orders, customerSvc, publisher),
		Products:  service.NewProductService(r.products),
	}
	router := handler.NewRouter(svc, handler.NewHealthHandler(deps...), limiter)

	return server.Run(ctx, cfg.Server, router)
}

func openPool(ctx context.Context, db config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = db.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
