package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/cmdstash/internal/handlers"
)

func registerFolderRoutes(r *gin.RouterGroup, handler *handlers.FolderHandler) {
	if r == nil || handler == nil {
		return
	}

	folders := r.Group("/folders")
	{
		folders.POST("/main", handler.CreateMain)
		folders.GET("/main", handler.ListMain)
		folders.GET("/main/:id", handler.GetMain)
		folders.PUT("/main/:id", handler.UpdateMain)
		folders.DELETE("/main/:id", handler.DeleteMain)

		folders.POST("/sub", handler.CreateSub)
		folders.GET("/sub/:mainFolderId", handler.ListSub)
		folders.GET("/sub/single/:id", handler.GetSub)
		folders.PUT("/sub/:id", handler.UpdateSub)
		folders.DELETE("/sub/:id", handler.DeleteSub)
	}
}
