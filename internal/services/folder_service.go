package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/cmdstash/internal/models"
	apperrors "github.com/charlesng35/cmdstash/pkg/errors"
)

// FolderService maintains the MainFolder/SubFolder hierarchy and its referential
// integrity: subfolders are created only under an existing, owned parent, and
// folder deletion cascades to every dependent record.
type FolderService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewFolderService constructs a folder service once a database handle is supplied.
// The audit service is optional; a nil value disables activity recording.
func NewFolderService(db *gorm.DB, audit *AuditService) (*FolderService, error) {
	if db == nil {
		return nil, errors.New("folder service: db is required")
	}
	return &FolderService{db: db, audit: audit}, nil
}

// MainFolderInput describes main folder create/update payloads.
type MainFolderInput struct {
	Name        string
	Description string
	Icon        string
}

// SubFolderInput describes subfolder create/update payloads.
type SubFolderInput struct {
	Name         string
	Description  string
	MainFolderID string
}

// CreateMainFolder registers a new top-level folder for the owner.
func (s *FolderService) CreateMainFolder(ctx context.Context, ownerID string, input MainFolderInput) (*models.MainFolder, error) {
	ctx = ensureContext(ctx)

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("folder service: owner id is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("name is required")
	}

	icon := strings.TrimSpace(input.Icon)
	if icon == "" {
		icon = models.DefaultFolderIcon
	}

	folder := models.MainFolder{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Icon:        icon,
		OwnerUserID: ownerID,
	}

	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, duplicateKeyError(err, "name")
		}
		return nil, fmt.Errorf("folder service: create main folder: %w", err)
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "folder.main.create",
		Resource:    folder.ID,
		Result:      "success",
		Metadata:    map[string]any{"name": folder.Name},
	})

	return &folder, nil
}

// ListMainFolders returns every main folder owned by the caller.
func (s *FolderService) ListMainFolders(ctx context.Context, ownerID string) ([]models.MainFolder, error) {
	ctx = ensureContext(ctx)

	var folders []models.MainFolder
	if err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", strings.TrimSpace(ownerID)).
		Order("created_at DESC").
		Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("folder service: list main folders: %w", err)
	}
	return folders, nil
}

// GetMainFolder retrieves a single main folder scoped to the owner.
func (s *FolderService) GetMainFolder(ctx context.Context, ownerID, id string) (*models.MainFolder, error) {
	ctx = ensureContext(ctx)

	var folder models.MainFolder
	if err := s.db.WithContext(ctx).
		First(&folder, "id = ? AND owner_user_id = ?", strings.TrimSpace(id), strings.TrimSpace(ownerID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("MainFolder")
		}
		return nil, fmt.Errorf("folder service: load main folder: %w", err)
	}
	return &folder, nil
}

// UpdateMainFolder applies the provided changes to an owned main folder.
func (s *FolderService) UpdateMainFolder(ctx context.Context, ownerID, id string, input MainFolderInput) (*models.MainFolder, error) {
	ctx = ensureContext(ctx)

	folder, err := s.GetMainFolder(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != folder.Name {
		updates["name"] = name
	}
	if desc := strings.TrimSpace(input.Description); desc != folder.Description {
		updates["description"] = desc
	}
	if icon := strings.TrimSpace(input.Icon); icon != "" && icon != folder.Icon {
		updates["icon"] = icon
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(folder).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("folder service: update main folder: %w", err)
		}
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "folder.main.update",
		Resource:    folder.ID,
		Result:      "success",
	})

	return folder, nil
}

// DeleteMainFolder removes a main folder together with every subfolder and command
// underneath it. The cascade runs in a single transaction; the source system
// performed the child deletes as separate statements, but the storage engine here
// offers multi-statement transactions at no extra cost.
func (s *FolderService) DeleteMainFolder(ctx context.Context, ownerID, id string) error {
	ctx = ensureContext(ctx)

	ownerID = strings.TrimSpace(ownerID)
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.NewValidation("id is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var folder models.MainFolder
		if err := tx.First(&folder, "id = ? AND owner_user_id = ?", id, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("MainFolder")
			}
			return fmt.Errorf("folder service: load main folder: %w", err)
		}

		if err := tx.Delete(&folder).Error; err != nil {
			return fmt.Errorf("folder service: delete main folder: %w", err)
		}

		// Deleting zero children is not an error; an empty folder cascades trivially.
		if err := tx.Where("main_folder_id = ? AND owner_user_id = ?", id, ownerID).
			Delete(&models.SubFolder{}).Error; err != nil {
			return fmt.Errorf("folder service: cascade subfolders: %w", err)
		}
		if err := tx.Where("main_folder_id = ? AND owner_user_id = ?", id, ownerID).
			Delete(&models.Command{}).Error; err != nil {
			return fmt.Errorf("folder service: cascade commands: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "folder.main.delete",
		Resource:    id,
		Result:      "success",
	})

	return nil
}

// CreateSubFolder registers a subfolder under an existing, owned main folder.
// A missing or foreign-owned parent fails with a MainFolder not-found error and
// creates nothing.
func (s *FolderService) CreateSubFolder(ctx context.Context, ownerID string, input SubFolderInput) (*models.SubFolder, error) {
	ctx = ensureContext(ctx)

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("folder service: owner id is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("name is required")
	}

	parentID := strings.TrimSpace(input.MainFolderID)
	if parentID == "" {
		return nil, apperrors.NewValidation("mainFolder is required")
	}

	if _, err := s.GetMainFolder(ctx, ownerID, parentID); err != nil {
		return nil, err
	}

	folder := models.SubFolder{
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		MainFolderID: parentID,
		OwnerUserID:  ownerID,
	}

	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, duplicateKeyError(err, "name")
		}
		return nil, fmt.Errorf("folder service: create subfolder: %w", err)
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "folder.sub.create",
		Resource:    folder.ID,
		Result:      "success",
		Metadata:    map[string]any{"name": folder.Name, "main_folder_id": parentID},
	})

	return &folder, nil
}

// ListSubFolders returns the subfolders of a main folder, scoped to the owner.
func (s *FolderService) ListSubFolders(ctx context.Context, ownerID, mainFolderID string) ([]models.SubFolder, error) {
	ctx = ensureContext(ctx)

	var folders []models.SubFolder
	if err := s.db.WithContext(ctx).
		Where("main_folder_id = ? AND owner_user_id = ?", strings.TrimSpace(mainFolderID), strings.TrimSpace(ownerID)).
		Order("created_at DESC").
		Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("folder service: list subfolders: %w", err)
	}
	return folders, nil
}

// GetSubFolder retrieves a single subfolder scoped to the owner.
func (s *FolderService) GetSubFolder(ctx context.Context, ownerID, id string) (*models.SubFolder, error) {
	ctx = ensureContext(ctx)

	var folder models.SubFolder
	if err := s.db.WithContext(ctx).
		First(&folder, "id = ? AND owner_user_id = ?", strings.TrimSpace(id), strings.TrimSpace(ownerID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("SubFolder")
		}
		return nil, fmt.Errorf("folder service: load subfolder: %w", err)
	}
	return &folder, nil
}

// UpdateSubFolder applies the provided changes to an owned subfolder. The parent
// reference is immutable after creation.
func (s *FolderService) UpdateSubFolder(ctx context.Context, ownerID, id string, input SubFolderInput) (*models.SubFolder, error) {
	ctx = ensureContext(ctx)

	folder, err := s.GetSubFolder(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" && name != folder.Name {
		updates["name"] = name
	}
	if desc := strings.TrimSpace(input.Description); desc != folder.Description {
		updates["description"] = desc
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(folder).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("folder service: update subfolder: %w", err)
		}
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "folder.sub.update",
		Resource:    folder.ID,
		Result:      "success",
	})

	return folder, nil
}

// DeleteSubFolder removes a subfolder together with every command underneath it.
func (s *FolderService) DeleteSubFolder(ctx context.Context, ownerID, id string) error {
	ctx = ensureContext(ctx)

	ownerID = strings.TrimSpace(ownerID)
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.NewValidation("id is required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var folder models.SubFolder
		if err := tx.First(&folder, "id = ? AND owner_user_id = ?", id, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("SubFolder")
			}
			return fmt.Errorf("folder service: load subfolder: %w", err)
		}

		if err := tx.Delete(&folder).Error; err != nil {
			return fmt.Errorf("folder service: delete subfolder: %w", err)
		}

		if err := tx.Where("sub_folder_id = ? AND owner_user_id = ?", id, ownerID).
			Delete(&models.Command{}).Error; err != nil {
			return fmt.Errorf("folder service: cascade commands: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "folder.sub.delete",
		Resource:    id,
		Result:      "success",
	})

	return nil
}
