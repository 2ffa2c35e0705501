package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/cmdstash/internal/models"
	apperrors "github.com/charlesng35/cmdstash/pkg/errors"
)

func TestCommandServiceCreateDefaultsPlatform(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	owner := seedUser(t, db, "alice")
	folder := seedMainFolder(t, db, owner.ID, "Shell")

	command, err := svc.Create(testContext(), owner.ID, CreateCommandInput{
		Title:        "  List files  ",
		Command:      "ls -la",
		Description:  "long listing",
		Tags:         []string{" files ", "", "basics"},
		MainFolderID: folder.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "List files", command.Title)
	require.Equal(t, models.PlatformUniversal, command.Platform)
	require.Equal(t, []string{"files", "basics"}, command.TagList())
	require.Nil(t, command.SubFolderID)
}

func TestCommandServiceCreateCollectsValidationFailures(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	owner := seedUser(t, db, "alice")
	folder := seedMainFolder(t, db, owner.ID, "Shell")

	_, err = svc.Create(testContext(), owner.ID, CreateCommandInput{
		Title:        "  ",
		Command:      "",
		Description:  "present",
		Platform:     "amiga",
		MainFolderID: folder.ID,
	})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
	require.Len(t, appErr.Fields, 3)
}

func TestCommandServiceCreateRejectsCrossFolderSubFolder(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	owner := seedUser(t, db, "alice")
	first := seedMainFolder(t, db, owner.ID, "First")
	second := seedMainFolder(t, db, owner.ID, "Second")
	sub := seedSubFolder(t, db, owner.ID, second.ID, "Second Child")

	_, err = svc.Create(testContext(), owner.ID, CreateCommandInput{
		Title:        "Mismatched",
		Command:      "true",
		Description:  "wrong parent",
		MainFolderID: first.ID,
		SubFolderID:  &sub.ID,
	})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestCommandServiceCreateRequiresOwnedFolders(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	folder := seedMainFolder(t, db, alice.ID, "Alice Shell")

	_, err = svc.Create(testContext(), bob.ID, CreateCommandInput{
		Title:        "Stolen",
		Command:      "whoami",
		Description:  "foreign folder",
		MainFolderID: folder.ID,
	})
	require.True(t, apperrors.IsNotFound(err))
}

func TestCommandServiceListFilters(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	owner := seedUser(t, db, "alice")
	first := seedMainFolder(t, db, owner.ID, "First")
	second := seedMainFolder(t, db, owner.ID, "Second")
	sub := seedSubFolder(t, db, owner.ID, first.ID, "Nested")

	seedCommand(t, db, owner.ID, first.ID, nil, "first-root")
	seedCommand(t, db, owner.ID, first.ID, &sub.ID, "first-nested")
	seedCommand(t, db, owner.ID, second.ID, nil, "second-root")

	all, err := svc.List(testContext(), owner.ID, ListCommandsOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	byMain, err := svc.List(testContext(), owner.ID, ListCommandsOptions{MainFolderID: first.ID})
	require.NoError(t, err)
	require.Len(t, byMain, 2)

	bySub, err := svc.List(testContext(), owner.ID, ListCommandsOptions{SubFolderID: sub.ID})
	require.NoError(t, err)
	require.Len(t, bySub, 1)
	require.Equal(t, "first-nested", bySub[0].Title)
}

func TestCommandServiceGetScopedToOwner(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	folder := seedMainFolder(t, db, alice.ID, "Shell")
	command := seedCommand(t, db, alice.ID, folder.ID, nil, "private")

	_, err = svc.Get(testContext(), bob.ID, command.ID)
	require.True(t, apperrors.IsNotFound(err))

	loaded, err := svc.Get(testContext(), alice.ID, command.ID)
	require.NoError(t, err)
	require.Equal(t, command.ID, loaded.ID)
}

func TestCommandServiceUpdateMoveDetachesSubFolder(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	owner := seedUser(t, db, "alice")
	first := seedMainFolder(t, db, owner.ID, "First")
	second := seedMainFolder(t, db, owner.ID, "Second")
	sub := seedSubFolder(t, db, owner.ID, first.ID, "Nested")
	command := seedCommand(t, db, owner.ID, first.ID, &sub.ID, "movable")

	updated, err := svc.Update(testContext(), owner.ID, command.ID, UpdateCommandInput{
		MainFolderID: &second.ID,
	})
	require.NoError(t, err)
	require.Equal(t, second.ID, updated.MainFolderID)
	require.Nil(t, updated.SubFolderID)
}

func TestCommandServiceUpdateFields(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	owner := seedUser(t, db, "alice")
	folder := seedMainFolder(t, db, owner.ID, "Shell")
	command := seedCommand(t, db, owner.ID, folder.ID, nil, "original")

	title := "renamed"
	platform := "LINUX"
	updated, err := svc.Update(testContext(), owner.ID, command.ID, UpdateCommandInput{
		Title:    &title,
		Platform: &platform,
		Tags:     []string{"updated"},
	})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, models.PlatformLinux, updated.Platform)
	require.Equal(t, []string{"updated"}, updated.TagList())
}

func TestCommandServiceDelete(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewCommandService(db, nil)
	require.NoError(t, err)

	owner := seedUser(t, db, "alice")
	folder := seedMainFolder(t, db, owner.ID, "Shell")
	command := seedCommand(t, db, owner.ID, folder.ID, nil, "disposable")

	require.NoError(t, svc.Delete(testContext(), owner.ID, command.ID))

	_, err = svc.Get(testContext(), owner.ID, command.ID)
	require.True(t, apperrors.IsNotFound(err))

	// Deleting again reports not found.
	err = svc.Delete(testContext(), owner.ID, command.ID)
	require.True(t, apperrors.IsNotFound(err))
}
