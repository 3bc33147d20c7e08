package shortcode

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/scrollcast/backend/internal/mockups"
	"github.com/scrollcast/backend/internal/models"
)

// RecordingSource loads the recording an embed refers to.
type RecordingSource interface {
	Get(ctx context.Context, id int64) (*models.Recording, error)
}

// URLResolver resolves an attachment id to its playable URL.
type URLResolver interface {
	ResolveURL(ctx context.Context, id int64) (string, error)
}

// Renderer turns parsed shortcode attributes into embed markup. Every
// degenerate case renders an inline placeholder rather than failing the
// surrounding page.
type Renderer struct {
	recordings RecordingSource
	urls       URLResolver
	frames     *mockups.FrameRenderer
	logger     *zap.Logger
}

// NewRenderer creates a shortcode renderer.
func NewRenderer(recordings RecordingSource, urls URLResolver, frames *mockups.FrameRenderer, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{recordings: recordings, urls: urls, frames: frames, logger: logger}
}

// Render produces the embed markup for one shortcode occurrence. The pass
// deduplicates shared styles across multiple embeds on the same page.
func (r *Renderer) Render(ctx context.Context, attrs Attributes, pass *mockups.RenderPass) string {
	if attrs.ID <= 0 {
		return placeholder("Invalid recording ID")
	}
	rec, err := r.recordings.Get(ctx, attrs.ID)
	if err != nil {
		r.logger.Error("load recording for embed failed", zap.Error(err), zap.Int64("recording_id", attrs.ID))
		return placeholder("Recording not found")
	}
	if rec == nil {
		return placeholder("Recording not found")
	}
	if rec.Status != models.RecordingStatusCompleted {
		return placeholder("Recording is still processing")
	}

	videoURL := r.videoURL(ctx, rec)
	if videoURL == "" {
		return placeholder("Video file not found")
	}

	device := r.resolveDevice(attrs, rec)
	opts := mockups.RenderOptions{
		Controls: attrs.Controls,
		Autoplay: attrs.Autoplay,
		Loop:     attrs.Loop,
		Muted:    attrs.Muted,
		Width:    attrs.Width,
		Height:   attrs.Height,
		Class:    attrs.Class,
		Style:    attrs.Style,
	}
	return r.frames.Render(videoURL, device, opts, pass)
}

// resolveDevice applies the precedence rules: an explicit device_type
// attribute wins, then the device_frame attribute, then the stored options.
func (r *Renderer) resolveDevice(attrs Attributes, rec *models.Recording) mockups.Device {
	if attrs.DeviceType != "" {
		return mockups.FromLegacyKey(attrs.DeviceType)
	}
	switch attrs.Frame {
	case FrameOff:
		return mockups.DeviceNone
	case FrameOn:
		// the frame type comes from the stored device key alone; a row
		// without one renders plain video
		if rec.Options != nil && rec.Options.DeviceKey != "" {
			return mockups.FromLegacyKey(rec.Options.DeviceKey)
		}
		return mockups.DeviceNone
	}
	// FrameAuto: the stored options decide
	if rec.Options == nil || !bool(rec.Options.ShowDeviceFrame) {
		return mockups.DeviceNone
	}
	return mockups.FromLegacyKey(rec.Options.DeviceKey)
}

// videoURL prefers the attachment's current URL; rows whose attachment is
// gone fall back to the URL captured at create time.
func (r *Renderer) videoURL(ctx context.Context, rec *models.Recording) string {
	if rec.AttachmentID > 0 && r.urls != nil {
		if u, err := r.urls.ResolveURL(ctx, rec.AttachmentID); err == nil && u != "" {
			return u
		}
	}
	return rec.VideoURL
}

func placeholder(msg string) string {
	return fmt.Sprintf("<p><em>%s</em></p>", html.EscapeString(msg))
}
