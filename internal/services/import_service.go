package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/cmdstash/internal/models"
	apperrors "github.com/charlesng35/cmdstash/pkg/errors"
	"github.com/charlesng35/cmdstash/pkg/metrics"
)

// ImportBatchSize is the number of commands written per insert batch.
const ImportBatchSize = 50

// ImportService ingests tabular command payloads, admits the valid subset and
// writes it in fixed-size batches. Batches are independent: a failing batch
// aborts the remainder of the import, but batches already written stay persisted.
type ImportService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewImportService constructs an import service once a database handle is supplied.
func NewImportService(db *gorm.DB, audit *AuditService) (*ImportService, error) {
	if db == nil {
		return nil, errors.New("import service: db is required")
	}
	return &ImportService{db: db, audit: audit}, nil
}

// ImportRow is a single candidate command parsed from the import payload.
type ImportRow struct {
	Title        string   `json:"title"`
	Command      string   `json:"command"`
	Description  string   `json:"description"`
	Platform     string   `json:"platform"`
	Tags         []string `json:"tags"`
	MainFolderID string   `json:"mainFolder"`
	SubFolderID  string   `json:"subFolder"`
}

// DroppedRow records a row rejected during admission together with the reason.
type DroppedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportContext supplies folder placement for rows that do not carry their own.
type ImportContext struct {
	MainFolderID string
	SubFolderID  string
}

// ImportResult summarises a completed import.
type ImportResult struct {
	Created  []models.Command `json:"created"`
	Dropped  []DroppedRow     `json:"dropped"`
	Batches  int              `json:"batches"`
	Admitted int              `json:"admitted"`
}

// ParseCSV reads a header-row, comma-delimited payload into candidate rows.
// Recognised headers: title, command, description, platform, tags, mainFolder,
// subFolder (case-insensitive; snake_case accepted). Tags are comma-separated
// within their column.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewBadRequest("import payload is empty")
		}
		return nil, apperrors.NewBadRequest("invalid CSV payload").WithInternal(err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normaliseHeader(name)] = i
	}

	cell := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewBadRequest("invalid CSV payload").WithInternal(err)
		}

		rows = append(rows, ImportRow{
			Title:        cell(record, "title"),
			Command:      cell(record, "command"),
			Description:  cell(record, "description"),
			Platform:     cell(record, "platform"),
			Tags:         splitTags(cell(record, "tags")),
			MainFolderID: cell(record, "mainfolder"),
			SubFolderID:  cell(record, "subfolder"),
		})
	}

	return rows, nil
}

func normaliseHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", "")
}

// admit applies the row admission rule: title, command and description must all
// be non-empty after trimming. Invalid rows are dropped, not failed.
func admit(rows []ImportRow, ictx ImportContext, ownerID string) ([]models.Command, []DroppedRow, error) {
	admitted := make([]models.Command, 0, len(rows))
	var dropped []DroppedRow

	for i, row := range rows {
		line := i + 1

		title := strings.TrimSpace(row.Title)
		commandText := strings.TrimSpace(row.Command)
		description := strings.TrimSpace(row.Description)

		switch {
		case title == "":
			dropped = append(dropped, DroppedRow{Line: line, Reason: "missing title"})
			continue
		case commandText == "":
			dropped = append(dropped, DroppedRow{Line: line, Reason: "missing command"})
			continue
		case description == "":
			dropped = append(dropped, DroppedRow{Line: line, Reason: "missing description"})
			continue
		}

		platform := strings.ToLower(strings.TrimSpace(row.Platform))
		if platform == "" {
			platform = models.PlatformUniversal
		}
		if !models.ValidPlatform(platform) {
			return nil, nil, apperrors.NewValidation(fmt.Sprintf("row %d: invalid platform %q", line, row.Platform))
		}

		mainFolderID := strings.TrimSpace(row.MainFolderID)
		if mainFolderID == "" {
			mainFolderID = strings.TrimSpace(ictx.MainFolderID)
		}
		if mainFolderID == "" {
			return nil, nil, apperrors.NewValidation(fmt.Sprintf("row %d: mainFolder is required", line))
		}

		subFolderID := strings.TrimSpace(row.SubFolderID)
		if subFolderID == "" {
			subFolderID = strings.TrimSpace(ictx.SubFolderID)
		}

		command := models.Command{
			Title:        title,
			Command:      commandText,
			Description:  description,
			Platform:     platform,
			MainFolderID: mainFolderID,
			OwnerUserID:  ownerID,
		}
		if subFolderID != "" {
			command.SubFolderID = &subFolderID
		}
		if err := command.SetTags(row.Tags); err != nil {
			return nil, nil, fmt.Errorf("import service: encode tags: %w", err)
		}

		admitted = append(admitted, command)
	}

	return admitted, dropped, nil
}

// Import admits the supplied rows and writes the surviving commands in batches of
// ImportBatchSize. If no rows survive admission, nothing is written and the import
// fails. There is no partial-import recovery: a failed batch surfaces as an error
// and earlier batches remain persisted.
func (s *ImportService) Import(ctx context.Context, ownerID string, rows []ImportRow, ictx ImportContext) (*ImportResult, error) {
	ctx = ensureContext(ctx)

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("import service: owner id is required")
	}

	admitted, dropped, err := admit(rows, ictx, ownerID)
	if err != nil {
		return nil, err
	}

	metrics.ImportedCommands.WithLabelValues("dropped").Add(float64(len(dropped)))

	if len(admitted) == 0 {
		return nil, apperrors.ErrEmptyImport
	}

	batches := 0
	created := make([]models.Command, 0, len(admitted))
	for start := 0; start < len(admitted); start += ImportBatchSize {
		end := start + ImportBatchSize
		if end > len(admitted) {
			end = len(admitted)
		}

		batch := admitted[start:end]
		if err := s.db.WithContext(ctx).Create(&batch).Error; err != nil {
			s.audit.record(ctx, AuditEntry{
				OwnerUserID: ownerID,
				Action:      "command.import",
				Result:      "failure",
				Metadata:    map[string]any{"batch": batches + 1, "created": len(created)},
			})
			return nil, fmt.Errorf("import service: write batch %d: %w", batches+1, err)
		}
		created = append(created, batch...)
		batches++
	}

	metrics.ImportedCommands.WithLabelValues("created").Add(float64(len(created)))

	s.audit.record(ctx, AuditEntry{
		OwnerUserID: ownerID,
		Action:      "command.import",
		Result:      "success",
		Metadata:    map[string]any{"created": len(created), "dropped": len(dropped)},
	})

	return &ImportResult{
		Created:  created,
		Dropped:  dropped,
		Batches:  batches,
		Admitted: len(admitted),
	}, nil
}

// ImportCSV parses a CSV payload and runs the import pipeline over it.
func (s *ImportService) ImportCSV(ctx context.Context, ownerID string, r io.Reader, ictx ImportContext) (*ImportResult, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, ownerID, rows, ictx)
}
