package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mindweave/engine/pkg/config"
	"github.com/mindweave/engine/pkg/database"
	"github.com/mindweave/engine/pkg/logger"

	"github.com/mindweave/engine/internal/ai"
	"github.com/mindweave/engine/internal/queue/tasks"
	"github.com/mindweave/engine/internal/repository"
	"github.com/mindweave/engine/internal/services"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		},
		asynq.Config{
			Concurrency: cfg.AsynqConcurrency,
		},
	)

	// Initialize DB and dependencies for task handlers
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.Error(err))
	}

	projectRepo := repository.NewProjectRepository(db)
	chatRepo := repository.NewChatRepository(db)
	nodeRepo := repository.NewNodeRepository(db)
	userRepo := repository.NewUserRepository(db)

	aiClient, err := ai.NewClient(cfg)
	if err != nil {
		logger.L().Fatal("failed to create generation client", zap.Error(err))
	}

	syncSvc := services.NewSynchronizer(projectRepo, chatRepo, nodeRepo, userRepo, aiClient, cfg.GenerateTimeout)

	mux := asynq.NewServeMux()
	handler := tasks.NewGenerateTaskHandler(syncSvc)
	mux.HandleFunc(tasks.TypeGenerateMindMap, handler.HandleGenerate)

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.L().Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.L().Error("worker stopped with error", zap.Error(err))
	}

	// Allow in-flight generation cycles to finish gracefully
	srv.Shutdown()
}
