package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/tasksense/internal/notification/application"
	"github.com/davicafu/tasksense/internal/notification/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/pkg/utils"
)

// NotificationHandler expone las notificaciones generadas por el barrido.
type NotificationHandler struct {
	service *application.NotificationService
}

func NewNotificationHandler(service *application.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) GetNotification(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	n, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			utils.SendNotFound(c, "notification not found")
			return
		}
		utils.SendInternalServerError(c, "notification lookup failed")
		return
	}
	utils.SendSuccess(c, http.StatusOK, n)
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			utils.SendNotFound(c, "notification not found")
			return
		}
		utils.SendInternalServerError(c, "could not delete notification")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserNotifications endpoint GET /users/:id/notifications
func (h *NotificationHandler) ListUserNotifications(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}
	limit, offset := utils.PageParams(c)

	list, err := h.service.ListByOwner(c.Request.Context(), id, sharedQuery.OffsetPagination{Limit: limit, Offset: offset})
	if err != nil {
		utils.SendInternalServerError(c, "could not list notifications")
		return
	}
	utils.SendSuccess(c, http.StatusOK, list)
}
