package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/cmdstash/internal/handlers"
)

func registerActivityRoutes(r *gin.RouterGroup, handler *handlers.ActivityHandler) {
	if r == nil || handler == nil {
		return
	}

	r.GET("/activity", handler.List)
}
