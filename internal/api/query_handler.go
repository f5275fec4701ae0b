package api

import (
	"classtrack/attendance-app/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// QueryHandler exposes the read-side operations.
type QueryHandler struct {
	queryService service.QueryService
}

func NewQueryHandler(queryService service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// GetTimetable handles GET /timetable.
func (h *QueryHandler) GetTimetable(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	timetable, err := h.queryService.GetTimetable(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrTimetableNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load timetable.")
		return
	}
	c.JSON(http.StatusOK, timetable)
}

// GetTodaySchedule handles GET /schedule/today.
func (h *QueryHandler) GetTodaySchedule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	entries, err := h.queryService.GetTodaySchedule(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrTimetableNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load today's schedule.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}

// GetAttendanceSummary handles GET /attendance/summary?fromDate&tillDate.
func (h *QueryHandler) GetAttendanceSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var from, till *time.Time
	if raw := c.Query("fromDate"); raw != "" {
		parsed, ok := parseDate(c, raw)
		if !ok {
			return
		}
		from = &parsed
	}
	if raw := c.Query("tillDate"); raw != "" {
		parsed, ok := parseDate(c, raw)
		if !ok {
			return
		}
		till = &parsed
	}

	summaries, err := h.queryService.GetAttendanceSummary(c.Request.Context(), userID, from, till)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load attendance summary.")
		return
	}
	c.JSON(http.StatusOK, summaries)
}
