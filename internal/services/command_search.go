package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charlesng35/cmdstash/internal/models"
)

// SearchLimit caps the number of results returned by a single search.
const SearchLimit = 20

// SearchResult is a matched command enriched with the display names of its
// folders. The names are looked up at query time, not stored on the command.
type SearchResult struct {
	Command        models.Command `json:"command"`
	Tags           []string       `json:"tags"`
	MainFolderName string         `json:"main_folder_name"`
	SubFolderName  string         `json:"sub_folder_name,omitempty"`
}

// Search returns the owner's commands whose title, command text, description or
// any tag contains the query as a case-insensitive substring. Results are ordered
// newest first and capped at SearchLimit. An empty query returns an empty result
// set rather than every command.
func (s *CommandService) Search(ctx context.Context, ownerID, query string) ([]SearchResult, error) {
	ctx = ensureContext(ctx)

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []SearchResult{}, nil
	}

	// The substring scan over tags happens in-process. Candidates are loaded
	// newest-first and the match loop stops once the cap is reached.
	var candidates []models.Command
	if err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", strings.TrimSpace(ownerID)).
		Order("created_at DESC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("command service: search candidates: %w", err)
	}

	matches := make([]models.Command, 0, SearchLimit)
	for _, candidate := range candidates {
		if commandMatches(&candidate, needle) {
			matches = append(matches, candidate)
			if len(matches) == SearchLimit {
				break
			}
		}
	}

	return s.enrichWithFolderNames(ctx, ownerID, matches)
}

func commandMatches(command *models.Command, needle string) bool {
	if strings.Contains(strings.ToLower(command.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(command.Command), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(command.Description), needle) {
		return true
	}
	for _, tag := range command.TagList() {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// enrichWithFolderNames resolves folder display names for each match with two
// batched lookups instead of a query per result.
func (s *CommandService) enrichWithFolderNames(ctx context.Context, ownerID string, matches []models.Command) ([]SearchResult, error) {
	results := make([]SearchResult, 0, len(matches))
	if len(matches) == 0 {
		return results, nil
	}

	mainIDs := make([]string, 0, len(matches))
	subIDs := make([]string, 0, len(matches))
	for _, match := range matches {
		mainIDs = append(mainIDs, match.MainFolderID)
		if match.SubFolderID != nil {
			subIDs = append(subIDs, *match.SubFolderID)
		}
	}

	mainNames := make(map[string]string, len(mainIDs))
	var mainFolders []models.MainFolder
	if err := s.db.WithContext(ctx).
		Where("id IN ? AND owner_user_id = ?", mainIDs, ownerID).
		Find(&mainFolders).Error; err != nil {
		return nil, fmt.Errorf("command service: resolve main folder names: %w", err)
	}
	for _, folder := range mainFolders {
		mainNames[folder.ID] = folder.Name
	}

	subNames := make(map[string]string, len(subIDs))
	if len(subIDs) > 0 {
		var subFolders []models.SubFolder
		if err := s.db.WithContext(ctx).
			Where("id IN ? AND owner_user_id = ?", subIDs, ownerID).
			Find(&subFolders).Error; err != nil {
			return nil, fmt.Errorf("command service: resolve subfolder names: %w", err)
		}
		for _, folder := range subFolders {
			subNames[folder.ID] = folder.Name
		}
	}

	for _, match := range matches {
		result := SearchResult{
			Command:        match,
			Tags:           match.TagList(),
			MainFolderName: mainNames[match.MainFolderID],
		}
		if match.SubFolderID != nil {
			result.SubFolderName = subNames[*match.SubFolderID]
		}
		results = append(results, result)
	}

	return results, nil
}
