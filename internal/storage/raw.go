// ABOUTME: Raw device-API snapshot persistence. A replaceable cache of
// ABOUTME: already-extracted data, kept briefly for debugging and re-runs.
package storage

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// SaveRaw writes the day's combined raw API payloads.
func (s *Store) SaveRaw(date string, data map[string]any) error {
	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal raw %s: %w", date, err)
	}
	if err := os.WriteFile(s.rawPath(date), blob, 0600); err != nil {
		return fmt.Errorf("write raw %s: %w", date, err)
	}
	return nil
}

// LoadRaw reads a day's raw snapshot, or ErrNotFound.
func (s *Store) LoadRaw(date string) (map[string]any, error) {
	blob, err := os.ReadFile(s.rawPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read raw %s: %w", date, err)
	}

	var data map[string]any
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("parse raw %s: %w", date, err)
	}
	return data, nil
}
