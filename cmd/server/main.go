// Package main runs the screen recording HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scrollcast/backend/config"
	"github.com/scrollcast/backend/internal/auth"
	"github.com/scrollcast/backend/internal/license"
	"github.com/scrollcast/backend/internal/media"
	"github.com/scrollcast/backend/internal/middleware"
	"github.com/scrollcast/backend/internal/mockups"
	"github.com/scrollcast/backend/internal/recordings"
	"github.com/scrollcast/backend/internal/render"
	"github.com/scrollcast/backend/internal/settings"
	"github.com/scrollcast/backend/internal/shortcode"
	"github.com/scrollcast/backend/internal/worker"
	"github.com/scrollcast/backend/pkg/database"
	"github.com/scrollcast/backend/pkg/queue"
	"github.com/scrollcast/backend/pkg/redis"
	"github.com/scrollcast/backend/pkg/response"
	"github.com/scrollcast/backend/pkg/storage"
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
	if cfg.AWS.RecordingsBucket != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			RecordingsBucket:     cfg.AWS.RecordingsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Settings
	settingsRepo := settings.NewRepository(pool)
	settingsHandler := settings.NewHandler(settingsRepo, logger)

	// Recordings: repository, plan limits, render client, media ingest
	recordingRepo := recordings.NewRepository(pool)
	licenseSvc := license.NewService(cfg.Plans, recordingRepo, rdb.Client, logger)
	renderClient := render.NewClient(cfg.Render, licenseSvc, logger)
	attachmentRepo := media.NewRepository(pool)
	ingestor := media.NewIngestor(cfg.Uploads.BaseDir, cfg.Server.PublicBaseURL, attachmentRepo, jobQueue, cfg.Uploads.MirrorS3 && s3Client != nil, logger)
	recordingHandler := recordings.NewHandler(recordingRepo, renderClient, ingestor, attachmentRepo, licenseSvc, settingsRepo, s3Client, jobQueue, logger)

	// Embeds: device frame composition and shortcode rendering
	frameRenderer := mockups.NewFrameRenderer(filepath.Join(cfg.Uploads.AssetsDir, "frames"), cfg.Server.PublicBaseURL+"/assets", logger)
	embedRenderer := shortcode.NewRenderer(recordingRepo, attachmentRepo, frameRenderer, logger)
	embedHandler := shortcode.NewHandler(embedRenderer, logger)

	// Maintenance worker (retention sweeps, S3 mirroring) shares the process
	// in small deployments; cmd/worker runs the same loop standalone.
	processor := worker.NewProcessor(recordingRepo, attachmentRepo, s3Client, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Static: ingested videos and frame overlay assets
	router.Static("/uploads", cfg.Uploads.BaseDir)
	router.Static("/assets", cfg.Uploads.AssetsDir)

	// Public embeds
	router.GET("/embed/:id", embedHandler.Embed)

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
		// Users (admin only)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)

		// Recordings
		api.POST("/recordings", recordingHandler.Create)
		api.GET("/recordings", recordingHandler.List)
		api.GET("/recordings/usage", recordingHandler.Usage)
		api.POST("/recordings/cleanup", middleware.RequireRole("admin"), recordingHandler.Cleanup)
		api.GET("/recordings/:id", recordingHandler.Get)
		api.GET("/recordings/:id/status", recordingHandler.Status)
		api.GET("/recordings/:id/download-url", recordingHandler.DownloadURL)
		api.DELETE("/recordings/:id", recordingHandler.Delete)
		api.GET("/posts/:id/recording", recordingHandler.GetByPost)

		// Devices and embed preview
		api.GET("/devices", recordingHandler.Devices)
		api.POST("/shortcode/preview", embedHandler.Preview)

		// Settings (admin only)
		api.GET("/settings", settingsHandler.Get)
		api.PUT("/settings", middleware.RequireRole("admin"), settingsHandler.Update)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go processor.Run(workerCtx)
	logger.Info("maintenance worker started")

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
