package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API surface. authMiddleware runs before every
// route; all handlers assume an authenticated user in the context.
func RegisterRoutes(r *gin.Engine, app App, authMiddleware gin.HandlerFunc) {
	r.Use(RequestIDMiddleware())

	grp := r.Group("/api", authMiddleware)

	grp.POST("/habits", PostHabit(app))
	grp.GET("/habits", GetHabits(app))
	grp.GET("/habits/:id", GetHabit(app))
	grp.PUT("/habits/:id", PutHabit(app))
	grp.POST("/habits/:id/archive", ArchiveHabit(app))
	grp.DELETE("/habits/:id", DeleteHabit(app))

	grp.POST("/checkins", PostCheckIn(app))
	grp.GET("/checkins", GetCheckIns(app))
	grp.GET("/checkins/:id", GetCheckIn(app))
	grp.PUT("/checkins/:id", PutCheckIn(app))
	grp.DELETE("/checkins/:id", DeleteCheckIn(app))

	grp.GET("/analytics/habits/:id", GetHabitStats(app))
	grp.GET("/analytics/user", GetUserStats(app))
	grp.GET("/analytics/export", ExportData(app))

	grp.GET("/notifications", GetNotifications(app))
	grp.GET("/notifications/unread-count", GetUnreadCount(app))
	grp.PUT("/notifications/read-all", MarkAllNotificationsRead(app))
	grp.PUT("/notifications/:id/read", MarkNotificationRead(app))
	grp.DELETE("/notifications/:id", DeleteNotification(app))
}
