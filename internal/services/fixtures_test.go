package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/cmdstash/internal/database/testutil"
	"github.com/charlesng35/cmdstash/internal/models"
)

func openServicesTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedMainFolder(t *testing.T, db *gorm.DB, ownerID, name string) *models.MainFolder {
	t.Helper()

	folder := models.MainFolder{
		Name:        name,
		Icon:        models.DefaultFolderIcon,
		OwnerUserID: ownerID,
	}
	require.NoError(t, db.Create(&folder).Error)
	return &folder
}

func seedSubFolder(t *testing.T, db *gorm.DB, ownerID, mainFolderID, name string) *models.SubFolder {
	t.Helper()

	folder := models.SubFolder{
		Name:         name,
		MainFolderID: mainFolderID,
		OwnerUserID:  ownerID,
	}
	require.NoError(t, db.Create(&folder).Error)
	return &folder
}

func seedCommand(t *testing.T, db *gorm.DB, ownerID, mainFolderID string, subFolderID *string, title string) *models.Command {
	t.Helper()

	command := models.Command{
		Title:        title,
		Command:      "echo " + title,
		Description:  "description for " + title,
		Platform:     models.PlatformUniversal,
		MainFolderID: mainFolderID,
		SubFolderID:  subFolderID,
		OwnerUserID:  ownerID,
	}
	require.NoError(t, command.SetTags(nil))
	require.NoError(t, db.Create(&command).Error)
	return &command
}

func testContext() context.Context {
	return context.Background()
}
