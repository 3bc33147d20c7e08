package recordings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scrollcast/backend/internal/license"
	"github.com/scrollcast/backend/internal/media"
	"github.com/scrollcast/backend/internal/mockups"
	"github.com/scrollcast/backend/internal/models"
	"github.com/scrollcast/backend/internal/render"
	"github.com/scrollcast/backend/internal/settings"
	"github.com/scrollcast/backend/pkg/queue"
	"github.com/scrollcast/backend/pkg/response"
	"github.com/scrollcast/backend/pkg/storage"
)

// Store is the recording persistence contract the handler depends on.
type Store interface {
	Create(ctx context.Context, f CreateFields) (int64, error)
	Get(ctx context.Context, id int64) (*models.Recording, error)
	GetByPostID(ctx context.Context, postID int64) (*models.Recording, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]models.Recording, error)
}

// Renderer fetches video bytes from the remote rendering provider.
type Renderer interface {
	RenderVideo(ctx context.Context, targetURL string, p render.Params) ([]byte, *render.Result, error)
}

// Ingestor stores video bytes and registers an attachment.
type Ingestor interface {
	Store(ctx context.Context, data []byte, sourceURL string, opts media.IngestOptions) (*media.StoredMedia, error)
}

// AttachmentResolver resolves an attachment id to its playable URL.
type AttachmentResolver interface {
	ResolveURL(ctx context.Context, id int64) (string, error)
	Get(ctx context.Context, id int64) (*models.Attachment, error)
}

// UsageReporter supplies plan usage for the dashboard and invalidates the
// cached count after writes.
type UsageReporter interface {
	CurrentStatus(ctx context.Context) (*license.Status, error)
	InvalidateUsage(ctx context.Context)
}

// Handler handles recording HTTP endpoints. The create flow is synchronous:
// limit check, render, ingest, then a single completed row. A failure at any
// step leaves no row behind.
type Handler struct {
	store       Store
	renderer    Renderer
	ingestor    Ingestor
	attachments AttachmentResolver
	usage       UsageReporter
	settings    *settings.Repository
	s3          *storage.S3  // optional: presigned downloads for mirrored files
	jobs        *queue.Queue // optional: maintenance job enqueueing
	logger      *zap.Logger
}

// NewHandler creates a recordings handler.
func NewHandler(store Store, renderer Renderer, ingestor Ingestor, attachments AttachmentResolver, usage UsageReporter, settingsRepo *settings.Repository, s3 *storage.S3, jobs *queue.Queue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:       store,
		renderer:    renderer,
		ingestor:    ingestor,
		attachments: attachments,
		usage:       usage,
		settings:    settingsRepo,
		s3:          s3,
		jobs:        jobs,
		logger:      logger,
	}
}

type createRequest struct {
	URL             string `json:"url"`
	PostID          int64  `json:"post_id"`
	Title           string `json:"title"`
	DeviceKey       string `json:"device"`
	Duration        int    `json:"duration"`
	Format          string `json:"format"`
	ShowDeviceFrame *bool  `json:"show_device_frame"`
}

// Create handles POST /recordings.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.URL == "" {
		response.BadRequest(c, "No URL provided")
		return
	}
	if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
		response.BadRequest(c, "Invalid URL")
		return
	}
	ctx := c.Request.Context()

	deviceKey := req.DeviceKey
	if deviceKey == "" && h.settings != nil {
		deviceKey = h.settings.DefaultDeviceKey(ctx)
	}
	duration := req.Duration
	if duration <= 0 {
		duration = settings.DefaultDuration
		if h.settings != nil {
			duration = h.settings.DefaultDurationSeconds(ctx)
		}
	}
	showFrame := true
	if h.settings != nil {
		showFrame = h.settings.ShowDeviceFrameDefault(ctx)
	}
	if req.ShowDeviceFrame != nil {
		showFrame = *req.ShowDeviceFrame
	}

	spec := mockups.FromLegacyKey(deviceKey).Spec()
	params := render.Params{
		Format:         req.Format,
		Duration:       duration,
		Scenario:       "scroll",
		ViewportWidth:  spec.ViewportWidth,
		ViewportHeight: spec.ViewportHeight,
	}

	video, result, err := h.renderer.RenderVideo(ctx, req.URL, params)
	if err != nil {
		h.respondRenderError(c, err)
		return
	}

	stored, err := h.ingestor.Store(ctx, video, req.URL, media.IngestOptions{
		PostID:    req.PostID,
		Title:     req.Title,
		DeviceKey: deviceKey,
		Duration:  result.Duration,
	})
	if err != nil {
		h.logger.Error("media ingest failed", zap.Error(err), zap.String("url", req.URL))
		response.Internal(c, err.Error())
		return
	}

	opts := &models.RecordingOptions{
		DeviceKey:       deviceKey,
		ViewportWidth:   spec.ViewportWidth,
		ViewportHeight:  spec.ViewportHeight,
		Duration:        result.Duration,
		Format:          defaultFormat(req.Format),
		Scenario:        "scroll",
		ShowDeviceFrame: models.FlexBool(showFrame),
		PostID:          req.PostID,
	}
	id, err := h.store.Create(ctx, CreateFields{
		PostID:       req.PostID,
		URL:          req.URL,
		Status:       models.RecordingStatusCompleted,
		Options:      opts,
		AttachmentID: stored.AttachmentID,
		VideoURL:     stored.FileURL,
		APIResponse:  fmt.Sprintf(`{"file_size":%d,"duration":%d}`, stored.FileSize, result.Duration),
	})
	if err != nil {
		h.logger.Error("save recording failed", zap.Error(err), zap.String("url", req.URL))
		response.Internal(c, "Failed to save recording")
		return
	}
	if h.usage != nil {
		h.usage.InvalidateUsage(ctx)
	}

	h.logger.Info("recording created", zap.Int64("recording_id", id), zap.String("url", req.URL), zap.String("device", deviceKey))
	response.Created(c, gin.H{
		"recording_id":  id,
		"attachment_id": stored.AttachmentID,
		"video_url":     stored.FileURL,
		"shortcode":     fmt.Sprintf(`[screen_recording id="%d"]`, id),
		"message":       "Recording created successfully",
	})
}

// respondRenderError maps classified render failures onto HTTP responses.
func (h *Handler) respondRenderError(c *gin.Context, err error) {
	var rerr *render.Error
	if !errors.As(err, &rerr) {
		h.logger.Error("render failed", zap.Error(err))
		response.Internal(c, "Failed to create recording")
		return
	}
	h.logger.Warn("render failed", zap.String("kind", string(rerr.Kind)), zap.String("message", rerr.Message))
	switch rerr.Kind {
	case render.KindValidation:
		response.BadRequest(c, rerr.Message)
	case render.KindUsageLimit:
		response.PaymentRequired(c, rerr.Message)
	case render.KindLicense:
		response.Forbidden(c, rerr.Message)
	case render.KindConnectivity:
		response.BadGateway(c, rerr.Message)
	case render.KindServer, render.KindDecode, render.KindUnknown:
		response.BadGateway(c, rerr.Message)
	default:
		response.Internal(c, rerr.Message)
	}
}

// Get handles GET /recordings/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get recording failed", zap.Error(err), zap.Int64("recording_id", id))
		response.Internal(c, "failed to load recording")
		return
	}
	if rec == nil {
		response.NotFound(c, "Recording not found")
		return
	}
	response.OK(c, rec)
}

// GetByPost handles GET /posts/:id/recording: the newest recording captured
// for a content item.
func (h *Handler) GetByPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || postID <= 0 {
		response.BadRequest(c, "invalid post id")
		return
	}
	rec, err := h.store.GetByPostID(c.Request.Context(), postID)
	if err != nil {
		h.logger.Error("get recording by post failed", zap.Error(err), zap.Int64("post_id", postID))
		response.Internal(c, "failed to load recording")
		return
	}
	if rec == nil {
		response.NotFound(c, "Recording not found")
		return
	}
	response.OK(c, rec)
}

// List handles GET /recordings.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, err := h.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list recordings failed", zap.Error(err))
		response.Internal(c, "failed to list recordings")
		return
	}
	response.OK(c, list)
}

// Status handles GET /recordings/:id/status.
func (h *Handler) Status(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rec, err := h.store.Get(ctx, id)
	if err != nil {
		h.logger.Error("get recording failed", zap.Error(err), zap.Int64("recording_id", id))
		response.Internal(c, "failed to load recording")
		return
	}
	if rec == nil {
		response.NotFound(c, "Recording not found")
		return
	}
	videoURL := ""
	if rec.AttachmentID > 0 && h.attachments != nil {
		videoURL, _ = h.attachments.ResolveURL(ctx, rec.AttachmentID)
	}
	if videoURL == "" {
		videoURL = rec.VideoURL
	}
	response.OK(c, gin.H{
		"status":        rec.Status,
		"attachment_id": rec.AttachmentID,
		"video_url":     videoURL,
	})
}

// Delete handles DELETE /recordings/:id. Removes the row only; the media
// asset is kept.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete recording failed", zap.Error(err), zap.Int64("recording_id", id))
		response.Internal(c, "Failed to delete recording")
		return
	}
	if !deleted {
		response.NotFound(c, "Recording not found")
		return
	}
	if h.usage != nil {
		h.usage.InvalidateUsage(c.Request.Context())
	}
	response.OK(c, gin.H{"message": "Recording deleted"})
}

// Usage handles GET /recordings/usage.
func (h *Handler) Usage(c *gin.Context) {
	st, err := h.usage.CurrentStatus(c.Request.Context())
	if err != nil {
		h.logger.Error("usage status failed", zap.Error(err))
		response.Internal(c, "failed to compute usage")
		return
	}
	response.OK(c, st)
}

// DownloadURL handles GET /recordings/:id/download-url. Only recordings
// mirrored to S3 can be presigned.
func (h *Handler) DownloadURL(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	rec, err := h.store.Get(ctx, id)
	if err != nil || rec == nil {
		response.NotFound(c, "Recording not found")
		return
	}
	if rec.Status != models.RecordingStatusCompleted || rec.AttachmentID == 0 {
		response.BadRequest(c, "recording not ready for download")
		return
	}
	if h.s3 == nil || h.attachments == nil {
		response.ServiceUnavailable(c, "downloads not configured")
		return
	}
	att, err := h.attachments.Get(ctx, rec.AttachmentID)
	if err != nil || att == nil || att.S3Key == "" {
		response.BadRequest(c, "recording is not mirrored to object storage")
		return
	}
	expire := h.s3.PresignExpire()
	u, err := h.s3.GeneratePresignedDownloadURL(ctx, att.S3Key, expire)
	if err != nil {
		h.logger.Error("presign download failed", zap.Error(err), zap.Int64("recording_id", id))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{"download_url": u, "expires_in": int(expire.Seconds())})
}

// Devices handles GET /devices, the option list for the dashboard.
func (h *Handler) Devices(c *gin.Context) {
	type deviceOption struct {
		Key      string `json:"key"`
		Name     string `json:"name"`
		Class    string `json:"class"`
		Viewport string `json:"viewport"`
	}
	opts := []deviceOption{{Key: "none", Name: "No Device Frame", Class: "none"}}
	for _, d := range mockups.Devices() {
		s := d.Spec()
		opts = append(opts, deviceOption{
			Key:      s.Key,
			Name:     s.Name,
			Class:    s.Class,
			Viewport: fmt.Sprintf("%dx%d", s.ViewportWidth, s.ViewportHeight),
		})
	}
	response.OK(c, opts)
}

// Cleanup handles POST /recordings/cleanup: enqueues a retention sweep for
// recordings older than the configured window. No-op when retention is
// disabled.
func (h *Handler) Cleanup(c *gin.Context) {
	ctx := c.Request.Context()
	days := 0
	if h.settings != nil {
		days = h.settings.RetentionDays(ctx)
	}
	if days <= 0 {
		response.OK(c, gin.H{"message": "Retention cleanup is disabled", "scheduled": false})
		return
	}
	if h.jobs == nil {
		response.ServiceUnavailable(c, "maintenance queue not configured")
		return
	}
	if err := h.jobs.EnqueueRetentionCleanup(ctx, queue.RetentionCleanupPayload{Days: days}); err != nil {
		h.logger.Error("enqueue retention cleanup failed", zap.Error(err))
		response.Internal(c, "failed to schedule cleanup")
		return
	}
	h.logger.Info("retention cleanup scheduled", zap.Int("days", days))
	response.OK(c, gin.H{"message": "Cleanup scheduled", "scheduled": true, "retention_days": days})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid recording id")
		return 0, false
	}
	return id, true
}

func defaultFormat(f string) string {
	if f == "" {
		return "mp4"
	}
	return f
}
