package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/cmdstash/internal/models"
	"github.com/charlesng35/cmdstash/internal/services"
	"github.com/charlesng35/cmdstash/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultAuditSpec          = "@daily"
	defaultOrphanSpec         = "@daily"
)

// Cleaner coordinates background maintenance tasks such as pruning stale audit
// entries and sweeping rows orphaned by out-of-band deletes.
type Cleaner struct {
	db        *gorm.DB
	audit     *services.AuditService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention int

	auditSchedule  string
	orphanSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit entries are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithOrphanSchedule overrides the cron specification for the orphan sweep.
func WithOrphanSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.orphanSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:             db,
		audit:          audit,
		now:            time.Now,
		retention:      defaultAuditRetentionDays,
		auditSchedule:  defaultAuditSpec,
		orphanSchedule: defaultOrphanSpec,
		log:            logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.audit != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			ctx := context.Background()
			if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.orphanSchedule, func() {
			ctx := context.Background()
			if _, err := CleanupOrphans(ctx, c.db); err != nil {
				c.log.Warn("orphan cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.audit != nil && c.retention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil {
		if _, err := CleanupOrphans(ctx, c.db); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// OrphanCleanupStats captures the number of rows removed for each orphan class.
type OrphanCleanupStats struct {
	SubFolders int64
	Commands   int64
}

// CleanupOrphans removes sub folders and commands whose parent folder no longer
// exists. Service deletes cascade in a transaction, so orphans only appear when
// rows are removed outside the API.
func CleanupOrphans(ctx context.Context, db *gorm.DB) (OrphanCleanupStats, error) {
	if db == nil {
		return OrphanCleanupStats{}, errors.New("cleanup orphans: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := OrphanCleanupStats{}

	mainIDs := db.Model(&models.MainFolder{}).Select("id")
	if result := db.WithContext(ctx).
		Where("main_folder_id NOT IN (?)", mainIDs).
		Delete(&models.SubFolder{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup orphans: sub folders: %w", result.Error)
	} else {
		stats.SubFolders = result.RowsAffected
	}

	subIDs := db.Model(&models.SubFolder{}).Select("id")
	if result := db.WithContext(ctx).
		Where("main_folder_id NOT IN (?)", mainIDs).
		Or("sub_folder_id IS NOT NULL AND sub_folder_id NOT IN (?)", subIDs).
		Delete(&models.Command{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup orphans: commands: %w", result.Error)
	} else {
		stats.Commands = result.RowsAffected
	}

	return stats, nil
}
