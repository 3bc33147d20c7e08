package settings

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scrollcast/backend/internal/mockups"
	"github.com/scrollcast/backend/internal/models"
	"github.com/scrollcast/backend/pkg/response"
)

// Handler serves the settings endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a settings handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /settings: the effective values with defaults applied.
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	apiKey, err := h.repo.Get(ctx, models.SettingAPIKey)
	if err != nil {
		h.logger.Error("load settings failed", zap.Error(err))
		response.Internal(c, "failed to load settings")
		return
	}
	response.OK(c, gin.H{
		"default_duration":    h.repo.DefaultDurationSeconds(ctx),
		"default_device":      h.repo.DefaultDeviceKey(ctx),
		"show_device_frame":   h.repo.ShowDeviceFrameDefault(ctx),
		"auto_add_to_library": h.repo.AutoAddToLibrary(ctx),
		"retention_days":      h.repo.RetentionDays(ctx),
		"api_key_set":         apiKey != "",
	})
}

type updateRequest struct {
	DefaultDuration  *int    `json:"default_duration"`
	DefaultDevice    *string `json:"default_device"`
	ShowDeviceFrame  *bool   `json:"show_device_frame"`
	AutoAddToLibrary *bool   `json:"auto_add_to_library"`
	RetentionDays    *int    `json:"retention_days"`
	APIKey           *string `json:"api_key"`
}

// Update handles PUT /settings. Only the provided fields are written.
func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	ctx := c.Request.Context()

	if req.DefaultDuration != nil {
		if *req.DefaultDuration < 1 || *req.DefaultDuration > 30 {
			response.BadRequest(c, "default_duration must be between 1 and 30 seconds")
			return
		}
		if err := h.repo.Set(ctx, models.SettingDefaultDuration, strconv.Itoa(*req.DefaultDuration)); err != nil {
			response.Internal(c, "failed to save settings")
			return
		}
	}
	if req.DefaultDevice != nil {
		if *req.DefaultDevice != "none" && mockups.FromLegacyKey(*req.DefaultDevice) == mockups.DeviceNone {
			response.BadRequest(c, "unknown device key")
			return
		}
		if err := h.repo.Set(ctx, models.SettingDefaultDevice, *req.DefaultDevice); err != nil {
			response.Internal(c, "failed to save settings")
			return
		}
	}
	if req.ShowDeviceFrame != nil {
		if err := h.repo.Set(ctx, models.SettingShowDeviceFrame, strconv.FormatBool(*req.ShowDeviceFrame)); err != nil {
			response.Internal(c, "failed to save settings")
			return
		}
	}
	if req.AutoAddToLibrary != nil {
		if err := h.repo.Set(ctx, models.SettingAutoAddToLibrary, strconv.FormatBool(*req.AutoAddToLibrary)); err != nil {
			response.Internal(c, "failed to save settings")
			return
		}
	}
	if req.RetentionDays != nil {
		if *req.RetentionDays < 0 {
			response.BadRequest(c, "retention_days must not be negative")
			return
		}
		if err := h.repo.Set(ctx, models.SettingRetentionDays, strconv.Itoa(*req.RetentionDays)); err != nil {
			response.Internal(c, "failed to save settings")
			return
		}
	}
	if req.APIKey != nil {
		if err := h.repo.Set(ctx, models.SettingAPIKey, *req.APIKey); err != nil {
			response.Internal(c, "failed to save settings")
			return
		}
	}

	h.logger.Info("settings updated")
	response.OK(c, gin.H{"message": "Settings saved"})
}
