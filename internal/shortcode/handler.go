package shortcode

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scrollcast/backend/internal/mockups"
	"github.com/scrollcast/backend/pkg/response"
)

// Handler serves embed markup over HTTP.
type Handler struct {
	renderer *Renderer
	logger   *zap.Logger
}

// NewHandler creates a shortcode HTTP handler.
func NewHandler(renderer *Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{renderer: renderer, logger: logger}
}

// Embed handles GET /embed/:id. Query parameters map onto shortcode
// attributes, so the same precedence rules apply.
func (h *Handler) Embed(c *gin.Context) {
	attrs := defaults()
	if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil {
		attrs.ID = id
	}
	if v := c.Query("device_type"); v != "" {
		attrs.DeviceType = v
	}
	if v := c.Query("device_frame"); v != "" {
		attrs.Frame = parseFrameMode(v)
	}
	if v := c.Query("controls"); v != "" {
		attrs.Controls = parseBool(v, attrs.Controls)
	}
	if v := c.Query("autoplay"); v != "" {
		attrs.Autoplay = parseBool(v, attrs.Autoplay)
	}
	if v := c.Query("loop"); v != "" {
		attrs.Loop = parseBool(v, attrs.Loop)
	}
	if v := c.Query("muted"); v != "" {
		attrs.Muted = parseBool(v, attrs.Muted)
	}
	if v := c.Query("width"); v != "" {
		attrs.Width = v
	}
	if v := c.Query("height"); v != "" {
		attrs.Height = v
	}
	if v := c.Query("class"); v != "" {
		attrs.Class = v
	}
	if v := c.Query("style"); v != "" {
		attrs.Style = v
	}

	markup := h.renderer.Render(c.Request.Context(), attrs, mockups.NewRenderPass())
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(200, markup)
}

type previewRequest struct {
	Shortcode string `json:"shortcode" binding:"required"`
}

// Preview handles POST /shortcode/preview: parses a full shortcode tag and
// returns the markup it would render.
func (h *Handler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "shortcode is required")
		return
	}
	attrs, err := ParseTag(req.Shortcode)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	markup := h.renderer.Render(c.Request.Context(), attrs, mockups.NewRenderPass())
	response.OK(c, gin.H{"html": markup})
}
