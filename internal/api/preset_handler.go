package api

import (
	"classtrack/attendance-app/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PresetHandler exposes template listing, application and the ledger
// archive download.
type PresetHandler struct {
	presetService service.PresetService
}

func NewPresetHandler(presetService service.PresetService) *PresetHandler {
	return &PresetHandler{presetService: presetService}
}

type ApplyPresetRequest struct {
	PresetID string `json:"presetId" binding:"required"`
	Force    bool   `json:"force"`
}

// ListPresets handles GET /presets.
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets, err := h.presetService.ListPresets(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list presets.")
		return
	}
	c.JSON(http.StatusOK, presets)
}

// ApplyPreset handles POST /timetable/apply. Replacing an existing
// timetable is destructive and requires force=true.
func (h *PresetHandler) ApplyPreset(c *gin.Context) {
	var req ApplyPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	presetID, err := primitive.ObjectIDFromHex(req.PresetID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid preset ID format.")
		return
	}

	timetable, err := h.presetService.ApplyPreset(c.Request.Context(), userID, presetID, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPresetNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrConfirmationRequired):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to apply preset.")
		}
		return
	}
	c.JSON(http.StatusOK, timetable)
}

// ArchiveDownloadURL handles GET /attendance/archive/url.
func (h *PresetHandler) ArchiveDownloadURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	url, err := h.presetService.ArchiveDownloadURL(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrArchiveNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
