package api

import (
	"classtrack/attendance-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	scheduleService service.ScheduleService,
	queryService service.QueryService,
	presetService service.PresetService,
) {
	scheduleHandler := NewScheduleHandler(scheduleService)
	queryHandler := NewQueryHandler(queryService)
	presetHandler := NewPresetHandler(presetService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr})
		})

		// --- Day & attendance mutations ---
		protected.POST("/day/start", scheduleHandler.StartDay)
		protected.POST("/attendance/update", scheduleHandler.ToggleAttended)
		protected.PATCH("/calendar/happened", scheduleHandler.ToggleHappened)
		protected.POST("/attendance/topics", scheduleHandler.UpdateTopics)
		protected.POST("/attendance/disable", scheduleHandler.DisableClass)

		// --- Schedule mutations ---
		protected.POST("/schedule/add-class", scheduleHandler.AddClass)
		protected.POST("/schedule/exchange-periods", scheduleHandler.ExchangePeriods)

		// --- Presets & timetable ---
		protected.GET("/presets", presetHandler.ListPresets)
		protected.POST("/timetable/apply", presetHandler.ApplyPreset)
		protected.GET("/timetable", queryHandler.GetTimetable)

		// --- Read side ---
		protected.GET("/schedule/today", queryHandler.GetTodaySchedule)
		protected.GET("/attendance/summary", queryHandler.GetAttendanceSummary)
		protected.GET("/attendance/archive/url", presetHandler.ArchiveDownloadURL)
	}
}
