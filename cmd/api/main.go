package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/mindweave/engine/internal/ai"
	"github.com/mindweave/engine/internal/api"
	"github.com/mindweave/engine/internal/api/handlers"
	"github.com/mindweave/engine/internal/realtime"
	"github.com/mindweave/engine/internal/repository"
	"github.com/mindweave/engine/internal/services"
	"github.com/mindweave/engine/internal/storage"
	"github.com/mindweave/engine/pkg/config"
	"github.com/mindweave/engine/pkg/database"
	"github.com/mindweave/engine/pkg/logger"

	// Import generated docs (created by swag init)
	_ "github.com/mindweave/engine/docs"
)

// @title           MindWeave API
// @version         1.0
// @description     Collaborative mind-mapping backend that folds team chat into a shared mind map.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting MindWeave Engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	memoRepo := repository.NewMemoRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	chatRepo := repository.NewChatRepository(db)
	nodeRepo := repository.NewNodeRepository(db)

	// Generation client
	aiClient, err := ai.NewClient(cfg)
	if err != nil {
		log.Fatal("Failed to create generation client", zap.Error(err))
	}

	// Upload storage
	images, err := storage.NewDiskImageStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatal("Failed to prepare upload storage", zap.Error(err))
	}

	// Services
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)
	userSvc := services.NewUserService(userRepo, images)
	friendSvc := services.NewFriendService(userRepo, friendshipRepo)
	memoSvc := services.NewMemoService(memoRepo)
	projectSvc := services.NewProjectService(projectRepo, memberRepo, chatRepo, nodeRepo, userRepo, aiClient, cfg.RecommendTimeout)
	syncSvc := services.NewSynchronizer(projectRepo, chatRepo, nodeRepo, userRepo, aiClient, cfg.GenerateTimeout)

	// Queue client for async generation
	queue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer queue.Close()

	// Presence hub
	hubCtx, hubCancel := context.WithCancel(ctx)
	defer hubCancel()
	hub := realtime.NewHub(userSvc)
	go hub.Run(hubCtx)

	// Create router with dependencies
	router := api.NewRouter(api.Dependencies{
		HMACSecret:      []byte(cfg.JWTSecret),
		AuthHandler:     handlers.NewAuthHandler(authSvc),
		UsersHandler:    handlers.NewUsersHandler(userSvc, friendSvc),
		MemosHandler:    handlers.NewMemosHandler(memoSvc),
		ProjectsHandler: handlers.NewProjectsHandler(projectSvc, syncSvc, queue),
		StatusWS:        realtime.ServeWS(hub, authSvc),
		AssetsDir:       cfg.UploadDir,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	hubCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
