// ABOUTME: Baseline set persistence with schema migration on load.
// ABOUTME: A malformed baselines file is a surfaced error, never silently reset.
package storage

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/harperreed/morning/internal/baseline"
	"github.com/harperreed/morning/internal/models"
)

// LoadBaselines reads the persisted baseline set, filling in defaults for
// any metrics added since the file was written. A missing file yields fresh
// defaults; a corrupt file is an error the caller must surface, because
// silently resetting would erase weeks of accumulated history.
func (s *Store) LoadBaselines() (*models.BaselineSet, error) {
	data, err := os.ReadFile(s.baselinesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return baseline.Defaults(), nil
		}
		return nil, fmt.Errorf("read baselines: %w", err)
	}

	var set models.BaselineSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse baselines: %w", err)
	}

	baseline.Migrate(&set)
	return &set, nil
}

// SaveBaselines writes the baseline set to disk.
func (s *Store) SaveBaselines(set *models.BaselineSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baselines: %w", err)
	}
	if err := os.WriteFile(s.baselinesPath(), data, 0600); err != nil {
		return fmt.Errorf("write baselines: %w", err)
	}
	return nil
}

// ResetBaselines replaces the persisted set with fresh defaults.
func (s *Store) ResetBaselines() (*models.BaselineSet, error) {
	set := baseline.Defaults()
	if err := s.SaveBaselines(set); err != nil {
		return nil, err
	}
	return set, nil
}
