// ABOUTME: Retention pruning. Only raw snapshots expire; derived records,
// ABOUTME: briefs, and intervention logs are the long-term analytical asset.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/morning/internal/config"
)

// PruneOldData deletes raw snapshots older than the raw retention window and
// returns how many files were removed.
func (s *Store) PruneOldData() (int, error) {
	cutoff := time.Now().In(config.Location()).
		AddDate(0, 0, -config.RawWindowDays).
		Format("2006-01-02")

	entries, err := os.ReadDir(filepath.Join(s.dir, rawDir))
	if err != nil {
		return 0, fmt.Errorf("read raw directory: %w", err)
	}

	pruned := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(name, ".json")
		if date >= cutoff {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, rawDir, name)); err != nil {
			return pruned, fmt.Errorf("prune raw %s: %w", name, err)
		}
		pruned++
	}

	if pruned > 0 {
		s.log.Info("pruned raw snapshots", "count", pruned, "cutoff", cutoff)
	}
	return pruned, nil
}
