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

// CommandService manages CRUD operations for stored commands. Every query is
// scoped to the owning user; a command belonging to someone else is
// indistinguishable from one that does not exist.
type CommandService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewCommandService constructs a command service once a database handle is supplied.
func NewCommandService(db *gorm.DB, audit *AuditService) (*CommandService, error) {
	if db == nil {
		return nil, errors.New("command service: db is required")
	}
	return &CommandService{db: db, audit: audit}, nil
}

// CreateCommandInput captures the fields accepted when creating a command.
type CreateCommandInput struct {
	Title        string
	Command      string
	Description  string
	Platform     string
	Tags         []string
	MainFolderID string
	SubFolderID  *string
}

// UpdateCommandInput describes mutable command fields. A nil pointer indicates no change.
type UpdateCommandInput struct {
	Title        *string
	Command      *string
	Description  *string
	Platform     *string
	Tags         []string
	MainFolderID *string
	SubFolderID  *string
}

// ListCommandsOptions controls exact-match filtering when listing commands.
type ListCommandsOptions struct {
	MainFolderID string
	SubFolderID  string
}

// validateRequired collects one message per missing or invalid field so callers
// can fix the whole payload in a single round trip.
func validateRequired(title, command, description, platform string) error {
	var failures []string
	if strings.TrimSpace(title) == "" {
		failures = append(failures, "title is required")
	}
	if strings.TrimSpace(command) == "" {
		failures = append(failures, "command is required")
	}
	if strings.TrimSpace(description) == "" {
		failures = append(failures, "description is required")
	}
	if !models.ValidPlatform(platform) {
		failures = append(failures, fmt.Sprintf("platform must be one of linux, macos, windows, universal (got %q)", platform))
	}
	if len(failures) > 0 {
		return apperrors.NewValidation(failures...)
	}
	return nil
}

// resolveFolders verifies that the main folder exists for the owner and, when a
// subfolder is given, that it belongs to that same main folder.
func (s *CommandService) resolveFolders(ctx context.Context, ownerID, mainFolderID string, subFolderID *string) error {
	var folder models.MainFolder
	if err := s.db.WithContext(ctx).
		First(&folder, "id = ? AND owner_user_id = ?", mainFolderID, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("MainFolder")
		}
		return fmt.Errorf("command service: load main folder: %w", err)
	}

	if subFolderID == nil {
		return nil
	}

	var sub models.SubFolder
	if err := s.db.WithContext(ctx).
		First(&sub, "id = ? AND owner_user_id = ?", *subFolderID, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("SubFolder")
		}
		return fmt.Errorf("command service: load subfolder: %w", err)
	}
	if sub.MainFolderID != mainFolderID {
		return apperrors.NewValidation("subFolder does not belong to the given mainFolder")
	}
	return nil
}

// Create persists a new command for the owner.
func (s *CommandService) Create(ctx context.Context, ownerID string, input CreateCommandInput) (*models.Command, error) {
	ctx = ensureContext(ctx)

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("command service: owner id is required")
	}

	platform := strings.ToLower(strings.TrimSpace(input.Platform))
	if platform == "" {
		platform = models.PlatformUniversal
	}

	if err := validateRequired(input.Title, input.Command, input.Description, platform); err != nil {
		return nil, err
	}

	mainFolderID := strings.TrimSpace(input.MainFolderID)
	if mainFolderID == "" {
		return nil, apperrors.NewValidation("mainFolder is required")
	}
	subFolderID := trimPtr(input.SubFolderID)

	if err := s.resolveFolders(ctx, ownerID, mainFolderID, subFolderID); err != nil {
		return nil, err
	}

	command := models.Command{
		Title:        input.Title,
		Command:      input.Command,
		Description:  input.Description,
		Platform:     platform,
		MainFolderID: mainFolderID,
		SubFolderID:  subFolderID,
		OwnerUserID:  ownerID,
	}
	command.Normalise()
	if err := command.SetTags(input.Tags); err != nil {
		return nil, fmt.Errorf("command service: encode tags: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&command).Error; err != nil {
		return nil, fmt.Errorf("command service: create command: %w", err)
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "command.create",
		Resource:    command.ID,
		Result:      "success",
		Metadata:    map[string]any{"title": command.Title},
	})

	return &command, nil
}

// List returns the owner's commands, newest first, optionally filtered by exact
// folder ids. Unlike search, listing is unbounded.
func (s *CommandService) List(ctx context.Context, ownerID string, opts ListCommandsOptions) ([]models.Command, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Where("owner_user_id = ?", strings.TrimSpace(ownerID)).
		Order("created_at DESC")

	if id := strings.TrimSpace(opts.MainFolderID); id != "" {
		query = query.Where("main_folder_id = ?", id)
	}
	if id := strings.TrimSpace(opts.SubFolderID); id != "" {
		query = query.Where("sub_folder_id = ?", id)
	}

	var commands []models.Command
	if err := query.Find(&commands).Error; err != nil {
		return nil, fmt.Errorf("command service: list commands: %w", err)
	}
	return commands, nil
}

// Get retrieves a single command scoped to the owner.
func (s *CommandService) Get(ctx context.Context, ownerID, id string) (*models.Command, error) {
	ctx = ensureContext(ctx)

	var command models.Command
	if err := s.db.WithContext(ctx).
		First(&command, "id = ? AND owner_user_id = ?", strings.TrimSpace(id), strings.TrimSpace(ownerID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("Command")
		}
		return nil, fmt.Errorf("command service: load command: %w", err)
	}
	return &command, nil
}

// Update applies the provided changes to an owned command.
func (s *CommandService) Update(ctx context.Context, ownerID, id string, input UpdateCommandInput) (*models.Command, error) {
	ctx = ensureContext(ctx)

	command, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		command.Title = *input.Title
	}
	if input.Command != nil {
		command.Command = *input.Command
	}
	if input.Description != nil {
		command.Description = *input.Description
	}
	if input.Platform != nil {
		command.Platform = *input.Platform
	}
	command.Normalise()

	if err := validateRequired(command.Title, command.Command, command.Description, command.Platform); err != nil {
		return nil, err
	}

	if input.Tags != nil {
		if err := command.SetTags(input.Tags); err != nil {
			return nil, fmt.Errorf("command service: encode tags: %w", err)
		}
	}

	folderChanged := false
	if input.MainFolderID != nil {
		trimmed := strings.TrimSpace(*input.MainFolderID)
		if trimmed == "" {
			return nil, apperrors.NewValidation("mainFolder is required")
		}
		if trimmed != command.MainFolderID {
			command.MainFolderID = trimmed
			folderChanged = true
			// Moving to a new main folder detaches the subfolder unless one is supplied.
			if input.SubFolderID == nil {
				command.SubFolderID = nil
			}
		}
	}
	if input.SubFolderID != nil {
		command.SubFolderID = trimPtr(input.SubFolderID)
		folderChanged = true
	}

	if folderChanged {
		if err := s.resolveFolders(ctx, ownerID, command.MainFolderID, command.SubFolderID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Save(command).Error; err != nil {
		return nil, fmt.Errorf("command service: update command: %w", err)
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "command.update",
		Resource:    command.ID,
		Result:      "success",
	})

	return command, nil
}

// Delete removes an owned command.
func (s *CommandService) Delete(ctx context.Context, ownerID, id string) error {
	ctx = ensureContext(ctx)

	command, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(command).Error; err != nil {
		return fmt.Errorf("command service: delete command: %w", err)
	}

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "command.delete",
		Resource:    command.ID,
		Result:      "success",
	})

	return nil
}
