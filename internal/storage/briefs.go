// ABOUTME: Morning brief persistence: one markdown file per date, plus
// ABOUTME: recency helpers for prompt context.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/models"
)

// SaveBrief writes the generated brief for a date.
func (s *Store) SaveBrief(date, content string) error {
	if err := os.WriteFile(s.briefPath(date), []byte(content), 0600); err != nil {
		return fmt.Errorf("write brief %s: %w", date, err)
	}
	return nil
}

// LoadBrief reads the brief for a date, or ErrNotFound.
func (s *Store) LoadBrief(date string) (string, error) {
	data, err := os.ReadFile(s.briefPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read brief %s: %w", date, err)
	}
	return string(data), nil
}

// LoadRecentBriefs returns briefs for the last days dates starting from
// yesterday, oldest-read-last. Today's brief is excluded: it is usually the
// one being generated.
func (s *Store) LoadRecentBriefs(days int) ([]models.Brief, error) {
	now := time.Now().In(config.Location())
	briefs := []models.Brief{}
	for i := 1; i <= days; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		content, err := s.LoadBrief(date)
		if err != nil {
			continue
		}
		briefs = append(briefs, models.Brief{Date: date, Content: content})
	}
	return briefs, nil
}

// LatestBrief returns the most recently written brief's content, ignoring
// legacy "-evening" suffixed files. Returns a placeholder when none exist.
func (s *Store) LatestBrief() string {
	entries, err := os.ReadDir(filepath.Join(s.dir, briefsDir))
	if err != nil {
		return "No briefs available yet."
	}

	type candidate struct {
		name    string
		modTime time.Time
	}
	var candidates []candidate
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") || strings.Contains(name, "-evening") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{name: name, modTime: info.ModTime()})
	}
	if len(candidates) == 0 {
		return "No briefs available yet."
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	data, err := os.ReadFile(filepath.Join(s.dir, briefsDir, candidates[0].name))
	if err != nil {
		return "No briefs available yet."
	}
	return string(data)
}
