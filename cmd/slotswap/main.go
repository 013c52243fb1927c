package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/slotswap/internal/app"
	"github.com/Freeeeeet/slotswap/internal/config"
	"github.com/Freeeeeet/slotswap/internal/controller/httpapi"
	"github.com/Freeeeeet/slotswap/internal/controller/telegram"
	"github.com/Freeeeeet/slotswap/internal/ratelimit"
	"github.com/Freeeeeet/slotswap/internal/repository"
	"github.com/Freeeeeet/slotswap/internal/repository/memory"
	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
	logger.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting slotswap",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("telegram", cfg.TelegramToken != ""),
	)

	store, cleanup, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	users := service.NewUserService(store, logger)
	slots := service.NewSlotService(store, logger)
	swaps := service.NewSwapService(store, logger)

	limiter, closeLimiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	auditor := app.NewAuditor(swaps, cfg.AuditInterval, logger)
	auditor.Start(ctx)
	defer auditor.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Slots:   slots,
		Swaps:   swaps,
		Users:   users,
		Auth:    httpapi.NewAuthenticator(cfg.JWTSecret, cfg.StaticTokens, users, logger),
		Limiter: limiter,
		Logger:  logger,
	})

	g, ctx := errgroup.WithContext(ctx)

	server := httpapi.NewServer(cfg.HTTPAddr, router, logger)
	g.Go(func() error { return server.Run(ctx) })

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}

		controller := telegram.NewBotController(b, users, slots, swaps, logger)
		if err := controller.RegisterHandlers(ctx); err != nil {
			// Меню команд не критично для работы бота
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		g.Go(func() error {
			controller.Start(ctx)
			return nil
		})
	}

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Connected to database")

	if cfg.MigrationsDir != "" {
		migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		err = migrator.Up(ctx)
		_ = migrator.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	return repository.NewPostgresStore(pool), pool.Close, nil
}

func newLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RateLimitRPS <= 0 {
		logger.Info("Rate limiting disabled")
		return ratelimit.Unlimited{}, func() {}, nil
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}

		logger.Info("Using shared Redis rate limiter",
			zap.Float64("rps", cfg.RateLimitRPS),
			zap.Int("burst", cfg.RateLimitBurst),
		)
		return ratelimit.NewRedisLimiter(rdb, cfg.RateLimitRPS, cfg.RateLimitBurst), func() { _ = rdb.Close() }, nil
	}

	local := ratelimit.NewLocalStore(cfg.RateLimitRPS, cfg.RateLimitBurst)
	local.StartJanitor(ctx)
	logger.Info("Using local rate limiter",
		zap.Float64("rps", cfg.RateLimitRPS),
		zap.Int("burst", cfg.RateLimitBurst),
	)
	return local, func() {}, nil
}
