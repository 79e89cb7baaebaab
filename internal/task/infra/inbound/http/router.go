package http

import "github.com/gin-gonic/gin"

// RegisterTaskRoutes registra las rutas HTTP para el dominio de Tareas.
func RegisterTaskRoutes(r gin.IRouter, handler *TaskHandler) {
	tasks := r.Group("/tasks")
	{
		tasks.POST("", handler.CreateTask) // Crear una nueva tarea
		tasks.GET("/:id", handler.GetTask) // Obtener una tarea por su ID
	}
	r.GET("/users/:id/tasks", handler.ListUserTasks)
}
