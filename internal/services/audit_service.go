package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/cmdstash/internal/models"
	"github.com/charlesng35/cmdstash/pkg/logger"
)

// AuditEntry captures a single activity event to persist.
type AuditEntry struct {
	OwnerUserID string
	Action      string
	Resource    string
	Result      string
	Metadata    map[string]any
}

// AuditService persists and retrieves activity log entries.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService constructs an AuditService using the provided database handle.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db}, nil
}

// Log stores an audit entry, marshalling metadata into JSON form.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit service: action is required")
	}
	if strings.TrimSpace(entry.Result) == "" {
		return errors.New("audit service: result is required")
	}

	payload := ""
	if entry.Metadata != nil {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		payload = string(encoded)
	}

	record := models.AuditLog{
		OwnerUserID: strings.TrimSpace(entry.OwnerUserID),
		Action:      strings.TrimSpace(entry.Action),
		Resource:    strings.TrimSpace(entry.Resource),
		Result:      strings.TrimSpace(entry.Result),
		Metadata:    payload,
	}

	return s.db.WithContext(ctx).Create(&record).Error
}

// record writes an audit entry without failing the caller; audit persistence is
// best effort and never blocks the primary operation.
func (s *AuditService) record(ctx context.Context, entry AuditEntry) {
	if s == nil {
		return
	}
	if err := s.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("audit entry dropped", zap.Error(err))
	}
}

// List returns the caller's activity, newest first, capped at limit.
func (s *AuditService) List(ctx context.Context, ownerID string, limit int) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("audit service: owner id is required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []models.AuditLog
	if err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("audit service: list entries: %w", err)
	}
	return entries, nil
}

// CleanupOlderThan removes audit logs older than the supplied retention window (in days).
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("audit service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
