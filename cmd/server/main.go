package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/productvote/catalog-service/internal/api"
	"github.com/productvote/catalog-service/internal/core/service"
	"github.com/productvote/catalog-service/internal/infrastructure/db/mongo"
	"github.com/productvote/catalog-service/internal/infrastructure/db/redis"
	"github.com/productvote/catalog-service/internal/pkg/config"
	"github.com/productvote/catalog-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-service",
	})

	// --- MongoDB ---
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.ConnectionURI(),
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	productRepo := mongo.NewProductRepository(db, cfg.Mongo.Timeout)
	userRepo := mongo.NewUserRepository(db, cfg.Mongo.Timeout)
	if err := productRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("could not create product indexes")
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	// --- Redis (optional vote cache) ---
	redisCfg := redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	rdb, err := connectRedis(ctx, redisCfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	votes := redis.NewVoteCache(rdb, cfg.Redis.VoteCacheTTL)

	// --- Services & HTTP ---
	e := api.NewRouter(api.Dependencies{
		Products:    service.NewProductService(productRepo, votes, log),
		Users:       service.NewUserService(userRepo, log),
		Mongo:       db,
		Redis:       rdb,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// connectRedis returns a nil client when no address is configured.
func connectRedis(ctx context.Context, cfg redis.Config) (*goredis.Client, error) {
	log := logger.Get()
	if !cfg.Enabled() {
		log.Info().Msg("REDIS_ADDR not set, vote cache disabled")
		return nil, nil
	}
	rdb, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", cfg.Addr).Msg("connected to Redis")
	return rdb, nil
}
