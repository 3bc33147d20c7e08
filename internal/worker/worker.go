// Package worker runs the background maintenance loop: retention sweeps and
// S3 mirroring of ingested attachments.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/scrollcast/backend/internal/media"
	"github.com/scrollcast/backend/internal/recordings"
	"github.com/scrollcast/backend/pkg/queue"
	"github.com/scrollcast/backend/pkg/storage"
)

const dequeueBackoff = 5 * time.Second

// Processor consumes maintenance jobs from the Redis queue.
type Processor struct {
	recRepo *recordings.Repository
	attRepo *media.Repository
	s3      *storage.S3 // optional; mirror jobs fail without it
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewProcessor creates a maintenance job processor.
func NewProcessor(recRepo *recordings.Repository, attRepo *media.Repository, s3 *storage.S3, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{recRepo: recRepo, attRepo: attRepo, s3: s3, queue: q, logger: logger}
}

// Process executes one maintenance job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeRetentionCleanup:
		var payload queue.RetentionCleanupPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return p.retentionCleanup(ctx, payload)
	case queue.JobTypeS3Mirror:
		var payload queue.S3MirrorPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return p.mirrorAttachment(ctx, payload)
	}
	return fmt.Errorf("unknown job type: %s", job.Type)
}

// retentionCleanup deletes recording rows older than the configured window.
// Media files and attachments are kept; only the recording metadata expires.
func (p *Processor) retentionCleanup(ctx context.Context, payload queue.RetentionCleanupPayload) error {
	if payload.Days <= 0 {
		return nil
	}
	deleted, err := p.recRepo.DeleteOlderThan(ctx, payload.Days)
	if err != nil {
		return fmt.Errorf("retention cleanup: %w", err)
	}
	p.logger.Info("retention cleanup done", zap.Int("days", payload.Days), zap.Int64("deleted", deleted))
	return nil
}

// mirrorAttachment streams a local attachment file to S3 and records the
// object location. Already-mirrored attachments are skipped.
func (p *Processor) mirrorAttachment(ctx context.Context, payload queue.S3MirrorPayload) error {
	if p.s3 == nil {
		return fmt.Errorf("s3 mirror not configured")
	}
	att, err := p.attRepo.Get(ctx, payload.AttachmentID)
	if err != nil {
		return fmt.Errorf("load attachment %d: %w", payload.AttachmentID, err)
	}
	if att == nil {
		p.logger.Warn("attachment gone, skipping mirror", zap.Int64("attachment_id", payload.AttachmentID))
		return nil
	}
	if att.S3Key != "" {
		p.logger.Info("attachment already mirrored", zap.Int64("attachment_id", att.ID))
		return nil
	}

	f, err := os.Open(att.FilePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", att.FilePath, err)
	}
	defer f.Close()

	key := storage.RecordingKey(att.CreatedAt.UTC().Format("2006-01"), att.FilePath)
	s3URL, err := p.s3.Upload(ctx, key, att.MimeType, f, att.FileSize)
	if err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}
	if err := p.attRepo.UpdateS3Result(ctx, att.ID, key, s3URL); err != nil {
		return fmt.Errorf("record s3 result: %w", err)
	}
	p.logger.Info("attachment mirrored", zap.Int64("attachment_id", att.ID), zap.String("s3_key", key))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("maintenance worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(dequeueBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(dequeueBackoff)
			continue
		}
	}
}
