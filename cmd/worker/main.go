// Package main runs the background maintenance worker (retention sweeps and
// S3 mirroring) standalone.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scrollcast/backend/config"
	"github.com/scrollcast/backend/internal/media"
	"github.com/scrollcast/backend/internal/recordings"
	"github.com/scrollcast/backend/internal/settings"
	"github.com/scrollcast/backend/internal/worker"
	"github.com/scrollcast/backend/pkg/database"
	"github.com/scrollcast/backend/pkg/queue"
	"github.com/scrollcast/backend/pkg/redis"
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

	recRepo := recordings.NewRepository(pool)
	attRepo := media.NewRepository(pool)
	settingsRepo := settings.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewProcessor(recRepo, attRepo, s3Client, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	go scheduleRetention(workerCtx, cfg, settingsRepo, jobQueue, logger)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

// scheduleRetention enqueues a retention sweep on a fixed interval. The
// configured retention window comes from settings, with the env value as a
// fallback; 0 disables sweeps.
func scheduleRetention(ctx context.Context, cfg *config.Config, settingsRepo *settings.Repository, jobQueue *queue.Queue, logger *zap.Logger) {
	every := time.Duration(cfg.Retention.CleanupEveryHours) * time.Hour
	if every <= 0 {
		every = 24 * time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		days := settingsRepo.RetentionDays(ctx)
		if days <= 0 {
			days = cfg.Retention.Days
		}
		if days <= 0 {
			continue
		}
		if err := jobQueue.EnqueueRetentionCleanup(ctx, queue.RetentionCleanupPayload{Days: days}); err != nil {
			logger.Warn("enqueue retention cleanup failed", zap.Error(err))
			continue
		}
		logger.Info("retention cleanup scheduled", zap.Int("days", days))
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
