package database

import (
	"gorm.io/gorm"

	"github.com/charlesng35/cmdstash/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.MainFolder{},
		&models.SubFolder{},
		&models.Command{},
		&models.AuditLog{},
	)
}
