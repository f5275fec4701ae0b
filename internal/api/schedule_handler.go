package api

import (
	"classtrack/attendance-app/internal/domain"
	"classtrack/attendance-app/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ScheduleHandler exposes the mutation engine over HTTP.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
}

func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// DayAction is the tagged variant for the day-start endpoint. Decoding
// rejects anything outside the two known actions so new actions cannot
// slip through as silent no-ops.
type DayAction string

const (
	ActionStartDay    DayAction = "startDay"
	ActionMarkHoliday DayAction = "markHoliday"
)

type StartDayRequest struct {
	Action DayAction `json:"action" binding:"required"`
}

type ToggleAttendedRequest struct {
	SubjectName string `json:"subjectName" binding:"required"`
	Attended    *bool  `json:"attended" binding:"required"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"startTime" binding:"required"`
}

// StartTime may be empty: holiday entries carry a blanked slot time and
// are addressed by (date, "").
type ToggleHappenedRequest struct {
	Subject   string `json:"subject" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime"`
	Happened  *bool  `json:"happened" binding:"required"`
}

type UpdateTopicsRequest struct {
	SubjectName string `json:"subjectName" binding:"required"`
	Topics      string `json:"topics"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"startTime" binding:"required"`
}

// StartTime may be empty so holiday entries, whose slot time is blanked,
// stay addressable for the confirm-gated re-enable flow.
type DisableClassRequest struct {
	SubjectName    string `json:"subjectName" binding:"required"`
	Date           string `json:"date" binding:"required"`
	StartTime      string `json:"startTime"`
	IsDisabled     *bool  `json:"isDisabled" binding:"required"`
	ConfirmHoliday bool   `json:"confirmHoliday"`
}

type AddClassRequest struct {
	Subject   string `json:"subject" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	ValidTill string `json:"validTill" binding:"required"`
}

type PeriodRef struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

type ExchangePeriodsRequest struct {
	FirstPeriod  PeriodRef `json:"firstPeriod" binding:"required"`
	SecondPeriod PeriodRef `json:"secondPeriod" binding:"required"`
	EndDate      string    `json:"endDate"`
}

// StartDay handles POST /day/start, dispatching on the action variant.
func (h *ScheduleHandler) StartDay(c *gin.Context) {
	var req StartDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var (
		warnings []domain.Warning
		err      error
	)
	switch req.Action {
	case ActionStartDay:
		warnings, err = h.scheduleService.StartDay(c.Request.Context(), userID)
	case ActionMarkHoliday:
		warnings, err = h.scheduleService.MarkHoliday(c.Request.Context(), userID)
	default:
		abortWithError(c, http.StatusBadRequest, "Unknown action: "+string(req.Action))
		return
	}
	if err != nil {
		mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "warnings": warningStrings(warnings)})
}

// ToggleAttended handles POST /attendance/update.
func (h *ScheduleHandler) ToggleAttended(c *gin.Context) {
	var req ToggleAttendedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	if !validTime(c, req.StartTime) {
		return
	}

	summary, warnings, err := h.scheduleService.ToggleAttended(c.Request.Context(), userID, req.SubjectName, date, req.StartTime, *req.Attended)
	if err != nil {
		mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"allAttended": summary.AllAttended,
		"allHappened": summary.AllHappened,
		"warnings":    warningStrings(warnings),
	})
}

// ToggleHappened handles PATCH /calendar/happened.
func (h *ScheduleHandler) ToggleHappened(c *gin.Context) {
	var req ToggleHappenedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	if req.StartTime != "" && !validTime(c, req.StartTime) {
		return
	}

	result, warnings, err := h.scheduleService.ToggleHappened(c.Request.Context(), userID, req.Subject, date, req.StartTime, *req.Happened)
	if err != nil {
		mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     result,
		"warnings": warningStrings(warnings),
	})
}

// UpdateTopics handles POST /attendance/topics.
func (h *ScheduleHandler) UpdateTopics(c *gin.Context) {
	var req UpdateTopicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	if !validTime(c, req.StartTime) {
		return
	}

	topics, warnings, err := h.scheduleService.UpdateTopics(c.Request.Context(), userID, req.SubjectName, date, req.StartTime, req.Topics)
	if err != nil {
		mapScheduleError(c, err)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"topics":   topics,
		"warnings": warningStrings(warnings),
	})
}

// DisableClass handles POST /attendance/disable.
func (h *ScheduleHandler) DisableClass(c *gin.Context) {
	var req DisableClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	if req.StartTime != "" && !validTime(c, req.StartTime) {
		return
	}

	warnings, err := h.scheduleService.SetClassDisabled(c.Request.Context(), userID, req.SubjectName, date, req.StartTime, *req.IsDisabled, req.ConfirmHoliday)
	if err != nil {
		mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "warnings": warningStrings(warnings)})
}

// AddClass handles POST /schedule/add-class.
func (h *ScheduleHandler) AddClass(c *gin.Context) {
	var req AddClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	validTill, ok := parseDate(c, req.ValidTill)
	if !ok {
		return
	}
	if !validTime(c, req.StartTime) || !validTime(c, req.EndTime) {
		return
	}

	err := h.scheduleService.AddAdHocClass(c.Request.Context(), userID, req.Subject, req.StartTime, req.EndTime, validTill)
	if err != nil {
		mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExchangePeriods handles POST /schedule/exchange-periods.
func (h *ScheduleHandler) ExchangePeriods(c *gin.Context) {
	var req ExchangePeriodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	first := service.SlotRef{Day: domain.Weekday(req.FirstPeriod.Day), StartTime: req.FirstPeriod.StartTime, EndTime: req.FirstPeriod.EndTime}
	second := service.SlotRef{Day: domain.Weekday(req.SecondPeriod.Day), StartTime: req.SecondPeriod.StartTime, EndTime: req.SecondPeriod.EndTime}
	if !first.Day.Valid() || !second.Day.Valid() {
		abortWithError(c, http.StatusBadRequest, "Unknown weekday name.")
		return
	}

	var endDate *time.Time
	if req.EndDate != "" {
		parsed, ok := parseDate(c, req.EndDate)
		if !ok {
			return
		}
		endDate = &parsed
	}

	err := h.scheduleService.ExchangePeriods(c.Request.Context(), userID, first, second, endDate)
	if err != nil {
		mapScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Periods exchanged successfully."})
}

// mapScheduleError translates mutation-engine errors to HTTP statuses.
func mapScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableNotFound),
		errors.Is(err, service.ErrPeriodNotFound),
		errors.Is(err, service.ErrOccurrenceNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSameSlotExchange),
		errors.Is(err, service.ErrExchangeDatePast),
		errors.Is(err, service.ErrSlotOccupied):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrHolidayConfirmRequired):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Operation failed.")
	}
}

func parseDate(c *gin.Context, raw string) (time.Time, bool) {
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date; expected YYYY-MM-DD.")
		return time.Time{}, false
	}
	return parsed, true
}

func validTime(c *gin.Context, raw string) bool {
	if _, err := time.Parse(timeLayout, raw); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid time; expected HH:MM.")
		return false
	}
	return true
}

func warningStrings(warnings []domain.Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, string(w))
	}
	return out
}
