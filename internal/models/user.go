package models

import "time"

// User owns every folder and command in the system. Entities are never shared
// between users; the user id is the sole access-control dimension.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
