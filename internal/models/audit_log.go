package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records a mutating operation for the activity feed. Entries are pruned
// by the maintenance cleaner after the configured retention window.
type AuditLog struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerUserID string    `gorm:"type:uuid;index" json:"owner_user_id"`
	Action      string    `gorm:"not null;index" json:"action"`
	Resource    string    `gorm:"index" json:"resource"`
	Result      string    `gorm:"not null" json:"result"`
	Metadata    string    `gorm:"type:json" json:"metadata"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
