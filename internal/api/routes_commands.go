package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/cmdstash/internal/handlers"
)

func registerCommandRoutes(r *gin.RouterGroup, handler *handlers.CommandHandler) {
	if r == nil || handler == nil {
		return
	}

	commands := r.Group("/commands")
	{
		commands.GET("", handler.List)
		commands.GET("/search", handler.Search)
		commands.POST("", handler.Create)
		commands.POST("/batch", handler.BatchImport)
		commands.POST("/import", handler.ImportCSV)
		commands.GET("/:id", handler.Get)
		commands.PUT("/:id", handler.Update)
		commands.DELETE("/:id", handler.Delete)
	}
}
