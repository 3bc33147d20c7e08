package mockups

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// RenderOptions are the per-embed presentation overrides.
type RenderOptions struct {
	Controls bool
	Autoplay bool
	Loop     bool
	Muted    bool
	Width    string // CSS length; "auto" or empty means unset
	Height   string
	Class    string
	Style    string
}

// DefaultRenderOptions mirrors the shortcode defaults: autoplay looping
// muted playback without controls.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Autoplay: true, Loop: true, Muted: true}
}

// RenderPass tracks which device styles were already emitted during one
// page/render pass, so styles appear once no matter how many frames render.
type RenderPass struct {
	emitted map[string]bool
}

// NewRenderPass creates an empty render pass.
func NewRenderPass() *RenderPass {
	return &RenderPass{emitted: make(map[string]bool)}
}

func (p *RenderPass) markEmitted(key string) bool {
	if p.emitted[key] {
		return false
	}
	p.emitted[key] = true
	return true
}

// FrameRenderer composes videos into device-frame mockups. The overlay PNG
// assets live under assetsDir and are served from assetBaseURL.
type FrameRenderer struct {
	assetsDir    string
	assetBaseURL string
	logger       *zap.Logger
}

// NewFrameRenderer creates a frame renderer.
func NewFrameRenderer(assetsDir, assetBaseURL string, logger *zap.Logger) *FrameRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrameRenderer{assetsDir: assetsDir, assetBaseURL: strings.TrimRight(assetBaseURL, "/"), logger: logger}
}

// Render emits markup for the video, composited into the device frame when
// one applies. DeviceNone, unknown devices, and missing overlay assets all
// fall back to the plain video path.
func (f *FrameRenderer) Render(videoURL string, device Device, opts RenderOptions, pass *RenderPass) string {
	if device == DeviceNone {
		return f.renderPlainVideo(videoURL, opts)
	}
	spec := device.Spec()
	if !f.overlayExists(spec) {
		f.logger.Debug("overlay asset missing, falling back to plain video",
			zap.String("device", spec.Key), zap.String("file", spec.OverlayFile))
		return f.renderPlainVideo(videoURL, opts)
	}

	classes := []string{"srp-device-mockup", "srp-device-" + spec.Class, "srp-device-" + strings.ReplaceAll(spec.Key, "_", "-")}
	if opts.Class != "" {
		classes = append(classes, opts.Class)
	}

	left, top, width, height := spec.ScreenPercentages()

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="%s" style="%s">`,
		html.EscapeString(strings.Join(classes, " ")), html.EscapeString(opts.Style))
	fmt.Fprintf(&b, `<div class="srp-frame-box" style="max-width:%dpx;">`, spec.MaxDisplayWidth)
	fmt.Fprintf(&b, `<div class="srp-frame-aspect" style="padding-bottom:%.4f%%;">`, spec.AspectPercent())
	fmt.Fprintf(&b, `<video class="srp-device-video" style="left:%.4f%%;top:%.4f%%;width:%.4f%%;height:%.4f%%;"%s>`,
		left, top, width, height, videoAttrs(opts))
	fmt.Fprintf(&b, `<source src="%s" type="video/mp4">`, html.EscapeString(videoURL))
	b.WriteString(`<p>Your browser does not support the video tag.</p></video>`)
	fmt.Fprintf(&b, `<img class="srp-frame-overlay" src="%s" alt="" aria-hidden="true">`,
		html.EscapeString(f.overlayURL(spec)))
	b.WriteString(`</div></div></div>`)

	if pass != nil && pass.markEmitted(spec.Key) {
		b.WriteString(frameStyles())
	}
	return b.String()
}

// renderPlainVideo emits a bare video element with the presentation
// overrides applied.
func (f *FrameRenderer) renderPlainVideo(videoURL string, opts RenderOptions) string {
	classes := []string{"screen-recording-video"}
	if opts.Class != "" {
		classes = append(classes, opts.Class)
	}
	style := opts.Style
	if opts.Width != "" && opts.Width != "auto" {
		style += "max-width:" + opts.Width + ";"
	}
	if opts.Height != "" && opts.Height != "auto" {
		style += "height:" + opts.Height + ";"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<video class="%s" style="%s"%s>`,
		html.EscapeString(strings.Join(classes, " ")), html.EscapeString(style), videoAttrs(opts))
	fmt.Fprintf(&b, `<source src="%s" type="video/mp4">`, html.EscapeString(videoURL))
	b.WriteString(`<p>Your browser does not support the video tag.</p></video>`)
	return b.String()
}

func videoAttrs(opts RenderOptions) string {
	var attrs []string
	if opts.Controls {
		attrs = append(attrs, "controls")
	}
	if opts.Autoplay {
		// autoplay requires muted in modern browsers
		attrs = append(attrs, "autoplay", "muted")
	}
	if opts.Loop {
		attrs = append(attrs, "loop")
	}
	if opts.Muted && !opts.Autoplay {
		attrs = append(attrs, "muted")
	}
	attrs = append(attrs, "playsinline")
	return " " + strings.Join(attrs, " ")
}

func (f *FrameRenderer) overlayExists(spec FrameSpec) bool {
	if spec.OverlayFile == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(f.assetsDir, spec.OverlayFile))
	return err == nil
}

func (f *FrameRenderer) overlayURL(spec FrameSpec) string {
	return f.assetBaseURL + "/frames/" + spec.OverlayFile
}

// frameStyles returns the shared mockup stylesheet. The overlay image sits
// above the video with pointer-events disabled so clicks pass through to the
// video where the PNG is transparent.
func frameStyles() string {
	return `<style>
.srp-device-mockup{display:inline-block;position:relative;margin:20px auto;}
.srp-frame-box{position:relative;width:100%;}
.srp-frame-aspect{position:relative;height:0;overflow:hidden;}
.srp-device-video{position:absolute;display:block;object-fit:cover;background:#000;}
.srp-frame-overlay{position:absolute;left:0;top:0;width:100%;height:100%;pointer-events:none;}
@media (max-width:768px){.srp-device-mockup{transform:scale(0.8);}}
@media (max-width:480px){.srp-device-mockup{transform:scale(0.6);}}
</style>`
}
