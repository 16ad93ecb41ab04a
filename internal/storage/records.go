// ABOUTME: Daily record persistence: merge-safe writes and historical loads
// ABOUTME: of per-date metric files.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/models"
)

// SaveDailyMetrics writes one day's record. Nil arguments mean "not provided":
// with merge set, an existing file's summary is overlaid key-by-key (new
// values win) and provided detail sections replace the old ones wholesale,
// while omitted sections survive untouched. Without merge the file is fully
// replaced and omitted sections reset to empty. Two jobs writing different
// sections of the same day therefore never erase each other's work.
func (s *Store) SaveDailyMetrics(date string, summary models.Summary, detailedSleep map[string]any, detailedWorkouts []map[string]any, merge bool) error {
	var existing *models.DailyRecord
	if merge {
		rec, err := s.LoadDailyRecord(date)
		if err == nil {
			existing = rec
		} else if !errors.Is(err, ErrNotFound) {
			// An unreadable file is treated as absent rather than
			// blocking the write
			s.log.Warn("ignoring unreadable record during merge", "date", date, "error", err)
		}
	}

	rec := models.NewDailyRecord(date)

	switch {
	case summary != nil && existing != nil && existing.Summary != nil:
		merged := models.Summary{}
		for k, v := range existing.Summary {
			merged[k] = v
		}
		for k, v := range summary {
			merged[k] = v
		}
		rec.Summary = merged
	case summary != nil:
		rec.Summary = summary
	case existing != nil && existing.Summary != nil:
		rec.Summary = existing.Summary
	}

	switch {
	case detailedSleep != nil:
		rec.DetailedSleep = detailedSleep
	case existing != nil && existing.DetailedSleep != nil:
		rec.DetailedSleep = existing.DetailedSleep
	}

	switch {
	case detailedWorkouts != nil:
		rec.DetailedWorkouts = detailedWorkouts
	case existing != nil && existing.DetailedWorkouts != nil:
		rec.DetailedWorkouts = existing.DetailedWorkouts
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", date, err)
	}
	if err := os.WriteFile(s.metricsPath(date), data, 0600); err != nil {
		return fmt.Errorf("write record %s: %w", date, err)
	}
	return nil
}

// LoadDailyRecord reads one day's record, or ErrNotFound.
func (s *Store) LoadDailyRecord(date string) (*models.DailyRecord, error) {
	data, err := os.ReadFile(s.metricsPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record %s: %w", date, err)
	}

	var rec models.DailyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", date, err)
	}
	rec.Date = date
	rec.Normalize()
	return &rec, nil
}

// LoadHistoricalMetrics returns records for the last days calendar dates,
// newest first, skipping dates with no usable record. days <= 0 loads every
// record on disk.
func (s *Store) LoadHistoricalMetrics(days int) ([]*models.DailyRecord, error) {
	if days <= 0 {
		return s.loadAllMetrics()
	}

	now := time.Now().In(config.Location())
	history := []*models.DailyRecord{}
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		rec, err := s.LoadDailyRecord(date)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.log.Warn("skipping unreadable record", "date", date, "error", err)
			}
			continue
		}
		history = append(history, rec)
	}
	return history, nil
}

func (s *Store) loadAllMetrics() ([]*models.DailyRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, metricsDir))
	if err != nil {
		return nil, fmt.Errorf("read metrics directory: %w", err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	history := []*models.DailyRecord{}
	for _, date := range dates {
		rec, err := s.LoadDailyRecord(date)
		if err != nil {
			s.log.Warn("skipping unreadable record", "date", date, "error", err)
			continue
		}
		history = append(history, rec)
	}
	return history, nil
}
