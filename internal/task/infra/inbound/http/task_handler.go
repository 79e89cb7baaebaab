package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedEvents "github.com/davicafu/tasksense/internal/shared/events"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/task/application"
	taskDomain "github.com/davicafu/tasksense/internal/task/domain"
	"github.com/davicafu/tasksense/pkg/utils"
)

// TaskHandler encapsula los endpoints HTTP relacionados con Task.
type TaskHandler struct {
	service *application.TaskService
}

// NewTaskHandler crea un nuevo TaskHandler.
func NewTaskHandler(service *application.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// createTaskRequest usa el mismo formato de fecha local que el evento publicado.
type createTaskRequest struct {
	Name        string                      `json:"name" binding:"required"`
	Description *string                     `json:"description"`
	Start       *sharedEvents.LocalDateTime `json:"start"`
	End         *sharedEvents.LocalDateTime `json:"end"`
	Type        string                      `json:"type"`
	UserID      *int64                      `json:"userId"`
}

// CreateTask endpoint POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), application.NewTask{
		Name:        req.Name,
		Description: req.Description,
		Start:       req.Start.Ptr(),
		End:         req.End.Ptr(),
		Type:        req.Type,
		UserID:      req.UserID,
	})
	if err != nil {
		if errors.Is(err, taskDomain.ErrInvalidTask) {
			utils.SendUnprocessable(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, "could not create task")
		return
	}

	utils.SendSuccess(c, http.StatusCreated, task)
}

// GetTask endpoint GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.service.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			utils.SendNotFound(c, "task not found")
			return
		}
		utils.SendInternalServerError(c, "could not fetch task")
		return
	}

	utils.SendSuccess(c, http.StatusOK, task)
}

// ListUserTasks endpoint GET /users/:id/tasks
func (h *TaskHandler) ListUserTasks(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}
	limit, offset := utils.PageParams(c)

	tasks, err := h.service.ListTasksForUser(c.Request.Context(), id, sharedQuery.OffsetPagination{Limit: limit, Offset: offset})
	if err != nil {
		utils.SendInternalServerError(c, "could not list tasks")
		return
	}

	utils.SendSuccess(c, http.StatusOK, tasks)
}
