package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"noteful-api/internal/config"
	"noteful-api/internal/db"
	apihttp "noteful-api/internal/http"
	"noteful-api/internal/repository"
	"noteful-api/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	userRepo, closeStore, err := openUserRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	userSvc := service.NewUserService(logger, userRepo, hasher)

	credentialStrategy := service.NewCredentialStrategy(logger, userRepo, hasher)
	tokenStrategy := service.NewTokenStrategy(logger, jwtSvc)

	authHandler := apihttp.NewAuthHandler(logger, jwtSvc)
	userHandler := apihttp.NewUserHandler(logger, userSvc)
	healthHandler := apihttp.NewHealthHandler(logger, userRepo)
	router := apihttp.NewRouter(logger, authHandler, userHandler, healthHandler, credentialStrategy, tokenStrategy)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("store", cfg.StoreDriver),
		zap.Duration("token_ttl", cfg.JWTExpiry),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openUserRepository construye el credential store segun STORE_DRIVER.
func openUserRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := db.Ping(ctxPing, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := db.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPgUserRepository(pool), pool.Close, nil

	case config.StoreDriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteUserRepository(sqlDB), func() { _ = sqlDB.Close() }, nil

	case config.StoreDriverRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			_ = redisClient.Close()
			return nil, nil, err
		}
		return repository.NewRedisUserRepository(redisClient), func() { _ = redisClient.Close() }, nil

	default:
		logger.Warn("using in-memory user store; data is lost on restart")
		return repository.NewMemoryUserRepository(), func() {}, nil
	}
}
