// Package main runs the NGO management HTTP server with graceful shutdown.
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

	"github.com/gestaodobem/backend/config"
	"github.com/gestaodobem/backend/internal/auth"
	"github.com/gestaodobem/backend/internal/dashboard"
	"github.com/gestaodobem/backend/internal/events"
	"github.com/gestaodobem/backend/internal/exports"
	"github.com/gestaodobem/backend/internal/middleware"
	"github.com/gestaodobem/backend/internal/models"
	"github.com/gestaodobem/backend/internal/organizations"
	"github.com/gestaodobem/backend/internal/tasks"
	"github.com/gestaodobem/backend/internal/users"
	"github.com/gestaodobem/backend/internal/worker"
	"github.com/gestaodobem/backend/pkg/database"
	"github.com/gestaodobem/backend/pkg/queue"
	"github.com/gestaodobem/backend/pkg/redis"
	"github.com/gestaodobem/backend/pkg/response"
	"github.com/gestaodobem/backend/pkg/storage"
	"github.com/gestaodobem/backend/pkg/utils"
	"github.com/gestaodobem/backend/pkg/validation"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := validation.Register(); err != nil {
		logger.Fatal("validators", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.ExportsEnabled() {
		s3Client, err = storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	hasher := utils.NewPasswordHasher(0)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	userRepo := users.NewRepository(pool)
	authHandler := auth.NewHandler(auth.NewService(userRepo, hasher, jwtService, logger), logger)
	userHandler := users.NewHandler(users.NewService(userRepo, hasher, logger))

	orgHandler := organizations.NewHandler(organizations.NewService(organizations.NewRepository(pool), hasher, logger))

	taskHandler := tasks.NewHandler(tasks.NewService(tasks.NewRepository(pool), logger))

	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(events.NewService(eventRepo, logger))

	dashboardHandler := dashboard.NewHandler(dashboard.NewService(dashboard.NewRepository(pool), logger))

	// Roster exports need S3; the worker runs in-process next to the API.
	var exportHandler *exports.Handler
	var rosterWorker *worker.RosterExportProcessor
	if s3Client != nil {
		exportRepo := exports.NewRepository(pool)
		jobQueue := queue.NewQueue(rdb.Client, logger)
		exportHandler = exports.NewHandler(exports.NewService(exportRepo, eventRepo, jobQueue, s3Client, logger))
		rosterWorker = worker.NewRosterExportProcessor(eventRepo, exportRepo, s3Client, jobQueue, logger)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public
	router.POST("/organizations/register",
		middleware.RateLimit(rdb, "register", cfg.RateLimit.RegisterPerMinute, time.Minute, logger),
		orgHandler.Register)
	router.POST("/auth/login",
		middleware.RateLimit(rdb, "login", cfg.RateLimit.LoginPerMinute, time.Minute, logger),
		authHandler.Login)

	manageEvents := middleware.RequireCapability(models.CapManageEvents)

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/profile", authHandler.Profile)
		api.PATCH("/auth/profile", authHandler.UpdateProfile)

		api.GET("/dashboard/summary", dashboardHandler.Summary)

		api.GET("/tasks", taskHandler.List)
		api.POST("/tasks", taskHandler.Create)
		api.GET("/tasks/:id", taskHandler.Get)
		api.PATCH("/tasks/:id", taskHandler.Update)
		api.DELETE("/tasks/:id", taskHandler.Remove)

		api.GET("/events", eventHandler.List)
		api.POST("/events", manageEvents, eventHandler.Create)
		api.GET("/events/:id", eventHandler.Get)
		api.PATCH("/events/:id", manageEvents, eventHandler.Update)
		api.DELETE("/events/:id", manageEvents, eventHandler.Remove)
		api.POST("/events/:id/register", eventHandler.Register)
		api.DELETE("/events/:id/unregister", eventHandler.Unregister)

		if exportHandler != nil {
			api.POST("/events/:id/roster-exports", manageEvents, exportHandler.Request)
			api.GET("/roster-exports/:id", exportHandler.Get)
		}

		api.GET("/users", userHandler.List)
		api.POST("/users", userHandler.Create)
		api.GET("/users/:id", userHandler.Get)
		api.PATCH("/users/:id", userHandler.Update)
		api.DELETE("/users/:id", userHandler.Remove)
		api.PATCH("/users/:id/status", userHandler.ToggleStatus)
		api.GET("/skills", userHandler.Skills)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if rosterWorker != nil {
		go rosterWorker.Run(workerCtx)
		logger.Info("roster export worker started")
	}

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
