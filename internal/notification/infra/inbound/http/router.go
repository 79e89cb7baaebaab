package http

import "github.com/gin-gonic/gin"

func RegisterNotificationRoutes(r gin.IRouter, handler *NotificationHandler) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("/:id", handler.GetNotification)
		notifications.DELETE("/:id", handler.DeleteNotification)
	}
	r.GET("/users/:id/notifications", handler.ListUserNotifications)
}
