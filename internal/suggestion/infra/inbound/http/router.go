package http

import "github.com/gin-gonic/gin"

// RegisterSuggestionRoutes registra las rutas de consulta y borrado de sugerencias.
func RegisterSuggestionRoutes(r gin.IRouter, handler *SuggestionHandler) {
	suggestions := r.Group("/suggestions")
	{
		suggestions.GET("/:id", handler.GetSuggestion)
		suggestions.DELETE("/:id", handler.DeleteSuggestion)
	}
	r.GET("/users/:id/suggestions", handler.ListUserSuggestions)
}
