package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Khaldybek/habit-tracker/internal"
	"github.com/Khaldybek/habit-tracker/internal/storage"
)

func GetNotifications(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 10
		}

		var read *bool
		if v := c.Query("read"); v != "" {
			b := v == "true"
			read = &b
		}

		notifications, total, err := app.NotificationRepo().ListNotifications(c.Request.Context(), user.ID, read, (page-1)*limit, limit)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch notifications")
			return
		}
		HandleSuccess(c, app.Logger(), notifications, map[string]any{
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

func GetUnreadCount(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		count, err := app.NotificationRepo().UnreadCount(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to count notifications")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"unread": count})
	}
}

func MarkNotificationRead(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := app.NotificationRepo().MarkNotificationRead(c.Request.Context(), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Notification not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to mark notification read")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}

func MarkAllNotificationsRead(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		if err := app.NotificationRepo().MarkAllNotificationsRead(c.Request.Context(), user.ID); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to mark notifications read")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}

func DeleteNotification(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := app.NotificationRepo().DeleteNotification(c.Request.Context(), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			HandleError(c, app.Logger(), err, 404, "Notification not found")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to delete notification")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}
