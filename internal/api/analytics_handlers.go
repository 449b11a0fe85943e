package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/service"
	"github.com/Khaldybek/habit-tracker/internal/stats"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

func GetHabitStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		period := stats.Period(c.DefaultQuery("period", "week"))
		result, err := service.GetHabitStats(c.Request.Context(), app.HabitRepo(), app.CheckInRepo(),
			user, c.Param("id"), c.Query("startDate"), c.Query("endDate"), period)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Habit not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch habit statistics")
			return
		}
		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func GetUserStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		period := stats.Period(c.DefaultQuery("period", "month"))
		result, err := service.GetUserStats(c.Request.Context(), app.HabitRepo(), app.CheckInRepo(),
			user, c.Query("startDate"), c.Query("endDate"), period)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch user statistics")
			return
		}
		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func ExportData(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		data, err := service.ExportUserData(c.Request.Context(), app.HabitRepo(), app.CheckInRepo(),
			user, c.Query("startDate"), c.Query("endDate"))
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to export data")
			return
		}

		if c.DefaultQuery("format", "json") == "csv" {
			c.Header("Content-Disposition", "attachment; filename=habit-tracker-export.csv")
			c.Data(http.StatusOK, "text/csv", []byte(data.CSV()))
			return
		}
		c.Header("Content-Disposition", "attachment; filename=habit-tracker-export.json")
		c.JSON(http.StatusOK, data)
	}
}
