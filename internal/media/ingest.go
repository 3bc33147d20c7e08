// Package media writes rendered video bytes into the managed uploads
// directory and registers them as media-library attachments.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scrollcast/backend/internal/models"
	"github.com/scrollcast/backend/pkg/queue"
)

// Subdirectory under the uploads base dir for recording files.
const recordingsFolder = "screen-recordings"

// Typed ingestion failures. None are retried.
var (
	ErrUploadDir = errors.New("upload directory unavailable")
	ErrWriteFile = errors.New("failed to save video file")
	ErrRegister  = errors.New("failed to register media attachment")
)

// IngestOptions describe the recording the bytes belong to.
type IngestOptions struct {
	PostID    int64
	Title     string // source content title; falls back to "page"
	DeviceKey string
	Duration  int
}

// StoredMedia is the result of a successful ingest.
type StoredMedia struct {
	AttachmentID int64  `json:"attachment_id"`
	FilePath     string `json:"file_path"`
	FileURL      string `json:"file_url"`
	FileSize     int64  `json:"file_size"`
}

// AttachmentCreator registers one attachment row.
type AttachmentCreator interface {
	Create(ctx context.Context, a *models.Attachment) (int64, error)
}

// Ingestor stores video bytes and registers attachments. When an S3 mirror
// is enabled it enqueues a background mirror job rather than blocking the
// create request on the upload.
type Ingestor struct {
	baseDir       string
	publicBaseURL string
	repo          AttachmentCreator
	jobs          *queue.Queue // optional; nil disables mirroring
	mirror        bool
	logger        *zap.Logger
}

// NewIngestor creates a media ingestor.
func NewIngestor(baseDir, publicBaseURL string, repo AttachmentCreator, jobs *queue.Queue, mirror bool, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		repo:          repo,
		jobs:          jobs,
		mirror:        mirror,
		logger:        logger,
	}
}

// Store writes the video bytes under the uploads directory and registers an
// attachment row with generated metadata.
func (in *Ingestor) Store(ctx context.Context, data []byte, sourceURL string, opts IngestOptions) (*StoredMedia, error) {
	filename := in.filename(opts)
	dir := filepath.Join(in.baseDir, recordingsFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUploadDir, dir)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWriteFile, path)
	}
	in.logger.Info("video saved", zap.String("path", path), zap.Int("size", len(data)))

	fileURL := in.publicBaseURL + "/uploads/" + recordingsFolder + "/" + filename
	meta, _ := json.Marshal(models.AttachmentMetadata{
		SourceURL: sourceURL,
		FileSize:  int64(len(data)),
		MimeType:  "video/mp4",
		DeviceKey: opts.DeviceKey,
		Duration:  opts.Duration,
	})
	att := &models.Attachment{
		PostID:   opts.PostID,
		Title:    strings.TrimSuffix(filename, ".mp4"),
		MimeType: "video/mp4",
		FilePath: path,
		FileURL:  fileURL,
		FileSize: int64(len(data)),
		Metadata: meta,
	}
	if _, err := in.repo.Create(ctx, att); err != nil {
		// The file stays on disk; the row is the unit that failed.
		return nil, fmt.Errorf("%w: %v", ErrRegister, err)
	}
	in.logger.Info("attachment registered", zap.Int64("attachment_id", att.ID), zap.Int64("post_id", opts.PostID))

	if in.mirror && in.jobs != nil {
		if err := in.jobs.EnqueueS3Mirror(ctx, queue.S3MirrorPayload{AttachmentID: att.ID}); err != nil {
			in.logger.Warn("enqueue s3 mirror failed", zap.Error(err), zap.Int64("attachment_id", att.ID))
		}
	}

	return &StoredMedia{
		AttachmentID: att.ID,
		FilePath:     path,
		FileURL:      fileURL,
		FileSize:     int64(len(data)),
	}, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// filename derives a collision-safe name: slugged title (or "page"), a
// device discriminator (or "scroll"), and a timestamp.
func (in *Ingestor) filename(opts IngestOptions) string {
	title := slugify(opts.Title)
	if title == "" {
		title = "page"
	}
	device := opts.DeviceKey
	if device == "" {
		device = "scroll"
	}
	stamp := time.Now().Format("2006-01-02_15-04-05")
	return fmt.Sprintf("%s_%s_%s.mp4", title, device, stamp)
}

func slugify(s string) string {
	s = slugStrip.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
