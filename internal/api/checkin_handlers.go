package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/service"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

func PostCheckIn(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.CheckInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateCheckInRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		ctx := c.Request.Context()
		checkIn, err := service.CreateCheckIn(ctx, app.HabitRepo(), app.CheckInRepo(), app.Logger(), user, &req)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Habit not found")
			return
		}
		if errors.Is(err, storage.ErrDuplicateCheckIn) {
			HandleError(c, app.Logger(), err, 400, "Check-in already exists for this date")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save check-in")
			return
		}

		if habit, err := app.HabitRepo().GetHabit(ctx, checkIn.HabitID); err == nil {
			service.NotifyCheckInCreated(ctx, app.NotificationRepo(), app.Logger(), habit, checkIn)
		}
		HandleSuccess(c, app.Logger(), checkIn, nil)
	}
}

func GetCheckIns(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		checkIns, err := app.CheckInRepo().ListCheckInsByUser(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch check-ins")
			return
		}

		habitID := c.Query("habitId")
		startDate := c.Query("startDate")
		endDate := c.Query("endDate")
		status := c.Query("status")

		filtered := make([]internal.CheckIn, 0, len(checkIns))
		for _, ci := range checkIns {
			if habitID != "" && ci.HabitID != habitID {
				continue
			}
			if startDate != "" && ci.Date < startDate {
				continue
			}
			if endDate != "" && ci.Date > endDate {
				continue
			}
			if status != "" && ci.Status.Completed() != (status == "true" || status == "completed") {
				continue
			}
			filtered = append(filtered, ci)
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 10
		}
		total := len(filtered)
		offset := (page - 1) * limit
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}

		HandleSuccess(c, app.Logger(), filtered[offset:end], map[string]any{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + limit - 1) / limit,
		})
	}
}

func GetCheckIn(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		checkIn, err := app.CheckInRepo().GetCheckIn(c.Request.Context(), c.Param("id"))
		if err != nil || checkIn.UserID != user.ID {
			HandleError(c, app.Logger(), storage.ErrNotFound, 404, "Check-in not found")
			return
		}
		HandleSuccess(c, app.Logger(), checkIn, nil)
	}
}

func PutCheckIn(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.CheckInUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateCheckInUpdateRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		checkIn, err := service.UpdateCheckIn(c.Request.Context(), app.HabitRepo(), app.CheckInRepo(), app.Logger(), user, c.Param("id"), &req)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Check-in not found")
			return
		}
		if errors.Is(err, storage.ErrDuplicateCheckIn) {
			HandleError(c, app.Logger(), err, 400, "Check-in already exists for this date")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update check-in")
			return
		}
		HandleSuccess(c, app.Logger(), checkIn, nil)
	}
}

func DeleteCheckIn(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		ctx := c.Request.Context()
		checkIn, err := service.DeleteCheckIn(ctx, app.HabitRepo(), app.CheckInRepo(), app.Logger(), user, c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Check-in not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete check-in")
			return
		}

		habitTitle := "habit"
		if habit, err := app.HabitRepo().GetHabit(ctx, checkIn.HabitID); err == nil {
			habitTitle = habit.Title
		}
		service.NotifyCheckInDeleted(ctx, app.NotificationRepo(), app.Logger(), habitTitle, checkIn)
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": checkIn.ID})
	}
}
