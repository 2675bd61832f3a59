// Package main runs the customer-service chat API server with WebSocket
// scoring pipeline and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pulsedesk/backend/config"
	"github.com/pulsedesk/backend/internal/auth"
	"github.com/pulsedesk/backend/internal/chat"
	"github.com/pulsedesk/backend/internal/manager"
	"github.com/pulsedesk/backend/internal/middleware"
	"github.com/pulsedesk/backend/internal/predict"
	"github.com/pulsedesk/backend/internal/scoring"
	"github.com/pulsedesk/backend/internal/worker"
	"github.com/pulsedesk/backend/pkg/database"
	"github.com/pulsedesk/backend/pkg/queue"
	"github.com/pulsedesk/backend/pkg/redis"
	"github.com/pulsedesk/backend/pkg/response"
	"github.com/pulsedesk/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.ModelBucket != "" {
		s3Cfg := storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			ModelBucket:     cfg.AWS.ModelBucket,
			ModelKey:        cfg.AWS.ModelKey,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}
	var artifacts scoring.ArtifactStore
	if s3Client != nil {
		artifacts = s3Client
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := chat.NewRedisPubSub(rdb.Client, logger)
	hub := chat.NewHub(logger, redisPubSub)

	// Scoring model: load or train up front so the first chat message never
	// races model initialization.
	scorer := scoring.NewService(cfg.Model.ArtifactPath, cfg.Model.DatasetPath, artifacts, logger)
	if err := scorer.EnsureReady(ctx); err != nil {
		logger.Fatal("scoring model", zap.Error(err))
	}

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Chat pipeline
	chatRepo := chat.NewRepository(pool)
	pipeline := chat.NewPipeline(chatRepo, scorer, hub, logger)

	// Manager reporting and retraining
	jobQueue := queue.NewQueue(rdb.Client, logger)
	managerRepo := manager.NewRepository(pool)
	managerHandler := manager.NewHandler(managerRepo, chatRepo, jobQueue, logger)
	retrainProcessor := worker.NewRetrainProcessor(managerRepo, cfg.Model.ArtifactPath, artifacts, jobQueue, logger)

	// Stateless prediction
	predictHandler := predict.NewHandler(scorer, logger)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Stateless transcript scoring
		api.POST("/predict", predictHandler.Predict)

		// Manager dashboard
		api.GET("/manager/summary", middleware.RequireRole("admin", "manager"), managerHandler.Summary)
		api.GET("/manager/sessions/:id/messages", middleware.RequireRole("admin", "manager"), managerHandler.SessionMessages)
		api.POST("/manager/nps", middleware.RequireRole("admin", "manager"), managerHandler.ImportRecord)
		api.POST("/manager/retrain", middleware.RequireRole("admin", "manager"), managerHandler.Retrain)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws/chat", chat.ServeWs(hub, pipeline, chatRepo, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (model retraining)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go retrainProcessor.Run(workerCtx)
	logger.Info("retrain worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
