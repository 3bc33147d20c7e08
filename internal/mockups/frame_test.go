package mockups

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, devices ...Device) *FrameRenderer {
	t.Helper()
	dir := t.TempDir()
	for _, d := range devices {
		path := filepath.Join(dir, d.Spec().OverlayFile)
		require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	}
	return NewFrameRenderer(dir, "https://cdn.example.com/assets", nil)
}

func TestRenderFramedVideo(t *testing.T) {
	r := newTestRenderer(t, DeviceMobileIPhoneXR)
	out := r.Render("https://example.com/v.mp4", DeviceMobileIPhoneXR, DefaultRenderOptions(), NewRenderPass())

	assert.Contains(t, out, "srp-device-mockup")
	assert.Contains(t, out, "srp-device-mobile")
	assert.Contains(t, out, "srp-device-mobile-iphone-xr")
	assert.Contains(t, out, "max-width:320px")
	assert.Contains(t, out, "left:5.0000%")
	assert.Contains(t, out, "width:90.0000%")
	assert.Contains(t, out, `src="https://example.com/v.mp4"`)
	assert.Contains(t, out, "https://cdn.example.com/assets/frames/mobile_iphone_xr.png")
	assert.Contains(t, out, "autoplay muted loop playsinline")
	assert.Contains(t, out, "<style>")
}

func TestRenderDeviceNoneIsPlainVideo(t *testing.T) {
	r := newTestRenderer(t)
	out := r.Render("https://example.com/v.mp4", DeviceNone, DefaultRenderOptions(), NewRenderPass())

	assert.Contains(t, out, "screen-recording-video")
	assert.NotContains(t, out, "srp-device-mockup")
	assert.NotContains(t, out, "srp-frame-overlay")
}

func TestRenderMissingOverlayFallsBack(t *testing.T) {
	// renderer with an empty assets dir: every overlay stat fails
	r := newTestRenderer(t)
	out := r.Render("https://example.com/v.mp4", DeviceLaptopMacBookPro, DefaultRenderOptions(), NewRenderPass())

	assert.Contains(t, out, "screen-recording-video")
	assert.NotContains(t, out, "srp-device-mockup")
}

func TestRenderStylesEmittedOncePerPass(t *testing.T) {
	r := newTestRenderer(t, DeviceMobileIPhoneXR)
	pass := NewRenderPass()

	first := r.Render("https://example.com/a.mp4", DeviceMobileIPhoneXR, DefaultRenderOptions(), pass)
	second := r.Render("https://example.com/b.mp4", DeviceMobileIPhoneXR, DefaultRenderOptions(), pass)
	assert.Contains(t, first, "<style>")
	assert.NotContains(t, second, "<style>")

	// a fresh pass starts over
	third := r.Render("https://example.com/c.mp4", DeviceMobileIPhoneXR, DefaultRenderOptions(), NewRenderPass())
	assert.Contains(t, third, "<style>")
}

func TestRenderPlainVideoAttrs(t *testing.T) {
	r := newTestRenderer(t)
	opts := RenderOptions{Controls: true, Muted: true, Width: "640px"}
	out := r.Render("https://example.com/v.mp4", DeviceNone, opts, nil)

	assert.Contains(t, out, "controls")
	assert.Contains(t, out, "muted")
	assert.NotContains(t, out, "autoplay")
	assert.Contains(t, out, "max-width:640px")
	assert.Equal(t, 1, strings.Count(out, "playsinline"))
}
