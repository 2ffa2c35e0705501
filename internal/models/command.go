package models

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// Supported command platforms.
const (
	PlatformLinux     = "linux"
	PlatformMacOS     = "macos"
	PlatformWindows   = "windows"
	PlatformUniversal = "universal"
)

// Command is a stored shell snippet with metadata. The command text is an opaque
// string; it is never executed by the server.
type Command struct {
	BaseModel

	Title       string `gorm:"not null" json:"title"`
	Command     string `gorm:"type:text;not null" json:"command"`
	Description string `gorm:"type:text;not null" json:"description"`
	Platform    string `gorm:"type:varchar(20);not null" json:"platform"`

	Tags datatypes.JSON `json:"tags"`

	MainFolderID string  `gorm:"type:uuid;index;not null" json:"main_folder_id"`
	SubFolderID  *string `gorm:"type:uuid;index" json:"sub_folder_id,omitempty"`
	OwnerUserID  string  `gorm:"type:uuid;index;not null" json:"owner_user_id"`
}

// ValidPlatform reports whether the value is one of the supported platforms.
func ValidPlatform(platform string) bool {
	switch platform {
	case PlatformLinux, PlatformMacOS, PlatformWindows, PlatformUniversal:
		return true
	}
	return false
}

// Normalise trims the text fields and lower-cases the platform value.
func (c *Command) Normalise() {
	c.Title = strings.TrimSpace(c.Title)
	c.Command = strings.TrimSpace(c.Command)
	c.Description = strings.TrimSpace(c.Description)
	c.Platform = strings.ToLower(strings.TrimSpace(c.Platform))
}

// TagList decodes the stored tag column into an ordered slice. A missing or
// malformed column yields an empty slice rather than an error.
func (c *Command) TagList() []string {
	if len(c.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(c.Tags, &tags); err != nil {
		return nil
	}
	return tags
}

// SetTags trims each entry and stores the ordered list as JSON. Duplicates are
// allowed; empty entries are removed.
func (c *Command) SetTags(tags []string) error {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		cleaned = append(cleaned, tag)
	}

	encoded, err := json.Marshal(cleaned)
	if err != nil {
		return err
	}
	c.Tags = datatypes.JSON(encoded)
	return nil
}
