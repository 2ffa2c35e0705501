package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/cmdstash/internal/handlers"
)

func registerAuthRoutes(r *gin.RouterGroup, handler *handlers.AuthHandler) {
	if r == nil || handler == nil {
		return
	}

	r.POST("/register", handler.Register)
	r.POST("/login", handler.Login)
}
