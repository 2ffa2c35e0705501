package models

// DefaultFolderIcon is assigned when a folder is created without an icon.
const DefaultFolderIcon = "📁"

// MainFolder is a top-level grouping of commands owned by a single user.
type MainFolder struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `json:"icon"`
	OwnerUserID string `gorm:"type:uuid;index;not null" json:"owner_user_id"`
}
