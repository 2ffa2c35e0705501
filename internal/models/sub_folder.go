package models

// SubFolder is a second-level grouping nested under exactly one MainFolder.
// The parent must exist and belong to the same owner at creation time.
type SubFolder struct {
	BaseModel

	Name         string `gorm:"not null" json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	MainFolderID string `gorm:"type:uuid;index;not null" json:"main_folder_id"`
	OwnerUserID  string `gorm:"type:uuid;index;not null" json:"owner_user_id"`
}
