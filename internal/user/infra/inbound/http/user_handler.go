package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/user/application"
	"github.com/davicafu/tasksense/internal/user/domain"
	"github.com/davicafu/tasksense/pkg/utils"
)

// UserHandler encapsula los endpoints HTTP relacionados con User
type UserHandler struct {
	service *application.UserService
}

// NewUserHandler crea un nuevo UserHandler
func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateUser endpoint POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			utils.SendConflict(c, "email already registered")
		case errors.Is(err, domain.ErrInvalidUser):
			utils.SendUnprocessable(c, err.Error())
		default:
			utils.SendInternalServerError(c, "could not create user")
		}
		return
	}

	utils.SendSuccess(c, http.StatusCreated, user)
}

// GetUser endpoint GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			utils.SendNotFound(c, "user not found")
			return
		}
		utils.SendInternalServerError(c, "could not fetch user")
		return
	}

	utils.SendSuccess(c, http.StatusOK, user)
}

// ListUsers endpoint GET /users?limit=&offset=
func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, offset := utils.PageParams(c)

	users, err := h.service.ListUsers(c.Request.Context(), sharedQuery.OffsetPagination{Limit: limit, Offset: offset})
	if err != nil {
		utils.SendInternalServerError(c, "could not list users")
		return
	}

	utils.SendSuccess(c, http.StatusOK, users)
}
