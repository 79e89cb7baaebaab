package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
	"github.com/davicafu/tasksense/internal/suggestion/application"
	"github.com/davicafu/tasksense/internal/suggestion/domain"
	"github.com/davicafu/tasksense/pkg/utils"
)

type SuggestionHandler struct {
	service *application.SuggestionService
}

func NewSuggestionHandler(service *application.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

// GetSuggestion endpoint GET /suggestions/:id
func (h *SuggestionHandler) GetSuggestion(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	suggestion, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.sendLookupError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, suggestion)
}

// DeleteSuggestion endpoint DELETE /suggestions/:id
func (h *SuggestionHandler) DeleteSuggestion(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.sendLookupError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserSuggestions endpoint GET /users/:id/suggestions, más recientes primero.
func (h *SuggestionHandler) ListUserSuggestions(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}
	limit, offset := utils.PageParams(c)

	suggestions, err := h.service.ListByOwner(c.Request.Context(), id, sharedQuery.OffsetPagination{Limit: limit, Offset: offset})
	if err != nil {
		utils.SendInternalServerError(c, "could not list suggestions")
		return
	}
	utils.SendSuccess(c, http.StatusOK, suggestions)
}

func (h *SuggestionHandler) sendLookupError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrSuggestionNotFound) {
		utils.SendNotFound(c, "suggestion not found")
		return
	}
	utils.SendInternalServerError(c, "suggestion lookup failed")
}
