package shortcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrollcast/backend/internal/mockups"
	"github.com/scrollcast/backend/internal/models"
)

type fakeSource struct {
	rec *models.Recording
	err error
}

func (f *fakeSource) Get(ctx context.Context, id int64) (*models.Recording, error) {
	return f.rec, f.err
}

type fakeResolver struct {
	url string
}

func (f *fakeResolver) ResolveURL(ctx context.Context, id int64) (string, error) {
	return f.url, nil
}

func newEmbedRenderer(t *testing.T, rec *models.Recording, videoURL string) *Renderer {
	t.Helper()
	dir := t.TempDir()
	for _, d := range mockups.Devices() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, d.Spec().OverlayFile), []byte("png"), 0o644))
	}
	frames := mockups.NewFrameRenderer(dir, "https://cdn.example.com/assets", nil)
	return NewRenderer(&fakeSource{rec: rec}, &fakeResolver{url: videoURL}, frames, nil)
}

func completedRecording(opts *models.RecordingOptions) *models.Recording {
	return &models.Recording{
		ID:           1,
		URL:          "https://example.com",
		Status:       models.RecordingStatusCompleted,
		Options:      opts,
		AttachmentID: 10,
		VideoURL:     "https://example.com/uploads/v.mp4",
	}
}

func TestRenderInvalidID(t *testing.T) {
	r := newEmbedRenderer(t, nil, "")
	out := r.Render(context.Background(), Attributes{ID: 0}, nil)
	assert.Equal(t, "<p><em>Invalid recording ID</em></p>", out)
}

func TestRenderNotFound(t *testing.T) {
	r := newEmbedRenderer(t, nil, "")
	out := r.Render(context.Background(), defaultsWithID(5), nil)
	assert.Equal(t, "<p><em>Recording not found</em></p>", out)
}

func TestRenderStillProcessing(t *testing.T) {
	rec := completedRecording(nil)
	rec.Status = models.RecordingStatusProcessing
	r := newEmbedRenderer(t, rec, "")
	out := r.Render(context.Background(), defaultsWithID(1), nil)
	assert.Equal(t, "<p><em>Recording is still processing</em></p>", out)
}

func TestRenderVideoMissing(t *testing.T) {
	rec := completedRecording(nil)
	rec.AttachmentID = 0
	rec.VideoURL = ""
	r := newEmbedRenderer(t, rec, "")
	out := r.Render(context.Background(), defaultsWithID(1), nil)
	assert.Equal(t, "<p><em>Video file not found</em></p>", out)
}

func TestRenderStoredOptionsDecideFrame(t *testing.T) {
	rec := completedRecording(&models.RecordingOptions{DeviceKey: "mobile_iphone_xr", ShowDeviceFrame: true})
	r := newEmbedRenderer(t, rec, "https://cdn.example.com/v.mp4")

	out := r.Render(context.Background(), defaultsWithID(1), mockups.NewRenderPass())
	assert.Contains(t, out, "srp-device-mobile-iphone-xr")
	assert.Contains(t, out, "https://cdn.example.com/v.mp4")
}

func TestRenderStoredFrameDisabled(t *testing.T) {
	rec := completedRecording(&models.RecordingOptions{DeviceKey: "mobile_iphone_xr", ShowDeviceFrame: false})
	r := newEmbedRenderer(t, rec, "https://cdn.example.com/v.mp4")

	out := r.Render(context.Background(), defaultsWithID(1), mockups.NewRenderPass())
	assert.NotContains(t, out, "srp-device-mockup")
	assert.Contains(t, out, "screen-recording-video")
}

func TestRenderFrameAttributeOverridesStored(t *testing.T) {
	rec := completedRecording(&models.RecordingOptions{DeviceKey: "mobile_iphone_xr", ShowDeviceFrame: true})
	r := newEmbedRenderer(t, rec, "https://cdn.example.com/v.mp4")

	attrs := defaultsWithID(1)
	attrs.Frame = FrameOff
	out := r.Render(context.Background(), attrs, mockups.NewRenderPass())
	assert.NotContains(t, out, "srp-device-mockup")
}

func TestRenderFrameOnWithoutStoredDeviceIsPlain(t *testing.T) {
	// forcing the frame on cannot invent a device; without a stored key the
	// video renders plain
	rec := completedRecording(nil)
	r := newEmbedRenderer(t, rec, "https://cdn.example.com/v.mp4")

	attrs := defaultsWithID(1)
	attrs.Frame = FrameOn
	out := r.Render(context.Background(), attrs, mockups.NewRenderPass())
	assert.NotContains(t, out, "srp-device-mockup")
	assert.Contains(t, out, "screen-recording-video")
}

func TestRenderDeviceTypeOverridesEverything(t *testing.T) {
	rec := completedRecording(&models.RecordingOptions{DeviceKey: "mobile_iphone_xr", ShowDeviceFrame: false})
	r := newEmbedRenderer(t, rec, "https://cdn.example.com/v.mp4")

	attrs := defaultsWithID(1)
	attrs.DeviceType = "desktop_1920"
	out := r.Render(context.Background(), attrs, mockups.NewRenderPass())
	assert.Contains(t, out, "srp-device-desktop-imac-pro")
}

func TestRenderLegacyDeviceKeyFromStoredOptions(t *testing.T) {
	rec := completedRecording(&models.RecordingOptions{DeviceKey: "phone_iphone_15_pro", ShowDeviceFrame: true})
	r := newEmbedRenderer(t, rec, "https://cdn.example.com/v.mp4")

	out := r.Render(context.Background(), defaultsWithID(1), mockups.NewRenderPass())
	assert.Contains(t, out, "srp-device-mobile-iphone-xr")
}

func TestRenderFallsBackToStoredVideoURL(t *testing.T) {
	rec := completedRecording(nil)
	r := newEmbedRenderer(t, rec, "")

	out := r.Render(context.Background(), defaultsWithID(1), mockups.NewRenderPass())
	assert.Contains(t, out, "https://example.com/uploads/v.mp4")
}

func defaultsWithID(id int64) Attributes {
	attrs := defaults()
	attrs.ID = id
	return attrs
}
