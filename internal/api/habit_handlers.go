package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/service"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

func PostHabit(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.HabitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateHabitRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		habit, err := service.CreateHabit(c.Request.Context(), app.HabitRepo(), user, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save habit")
			return
		}
		if err := app.Reminders().UpdateHabitReminder(habit); err != nil {
			app.Logger().Errorf("failed to schedule reminder for habit %s: %v", habit.ID, err)
		}
		HandleSuccess(c, app.Logger(), habit, nil)
	}
}

func GetHabits(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		habits, err := app.HabitRepo().ListHabits(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch habits")
			return
		}

		category := c.Query("category")
		search := strings.ToLower(c.Query("search"))
		tag := c.Query("tag")
		archived := c.Query("archived")

		filtered := make([]internal.Habit, 0, len(habits))
		for _, h := range habits {
			if category != "" && string(h.Category) != category {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(h.Title), search) {
				continue
			}
			if tag != "" && !containsTag(h.Tags, tag) {
				continue
			}
			if archived != "" && h.Archived != (archived == "true") {
				continue
			}
			filtered = append(filtered, h)
		}

		HandleSuccess(c, app.Logger(), filtered, map[string]any{"total": len(filtered)})
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func GetHabit(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		habit, err := app.HabitRepo().GetHabit(c.Request.Context(), c.Param("id"))
		if err != nil || habit.UserID != user.ID {
			HandleError(c, app.Logger(), storage.ErrNotFound, 404, "Habit not found")
			return
		}
		HandleSuccess(c, app.Logger(), habit, nil)
	}
}

func PutHabit(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.HabitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateHabitRequest(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		habit, err := service.UpdateHabit(c.Request.Context(), app.HabitRepo(), user, c.Param("id"), &req)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Habit not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update habit")
			return
		}
		if err := app.Reminders().UpdateHabitReminder(habit); err != nil {
			app.Logger().Errorf("failed to reschedule reminder for habit %s: %v", habit.ID, err)
		}
		HandleSuccess(c, app.Logger(), habit, nil)
	}
}

func ArchiveHabit(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		habit, err := service.ArchiveHabit(c.Request.Context(), app.HabitRepo(), user, c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Habit not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to archive habit")
			return
		}
		app.Reminders().RemoveHabitReminder(habit.ID)
		HandleSuccess(c, app.Logger(), habit, nil)
	}
}

func DeleteHabit(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		id := c.Param("id")
		err := service.DeleteHabit(c.Request.Context(), app.HabitRepo(), app.CheckInRepo(), user, id)
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Habit not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete habit")
			return
		}
		app.Reminders().RemoveHabitReminder(id)
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": id})
	}
}
