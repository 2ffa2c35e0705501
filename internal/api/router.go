package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/cmdstash/internal/app"
	iauth "github.com/charlesng35/cmdstash/internal/auth"
	"github.com/charlesng35/cmdstash/internal/handlers"
	"github.com/charlesng35/cmdstash/internal/middleware"
	"github.com/charlesng35/cmdstash/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Public endpoints
	r.GET("/health", handlers.Health())
	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	auditSvc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	userSvc, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	folderSvc, err := services.NewFolderService(db, auditSvc)
	if err != nil {
		return nil, err
	}
	commandSvc, err := services.NewCommandService(db, auditSvc)
	if err != nil {
		return nil, err
	}
	importSvc, err := services.NewImportService(db, auditSvc)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(userSvc, jwt)

	// Public auth routes
	registerAuthRoutes(r.Group("/api/auth"), authHandler)

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/profile", authHandler.Profile)

	registerFolderRoutes(api, handlers.NewFolderHandler(folderSvc))
	registerCommandRoutes(api, handlers.NewCommandHandler(commandSvc, importSvc))
	registerActivityRoutes(api, handlers.NewActivityHandler(auditSvc))

	return r, nil
}
