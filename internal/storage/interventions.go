// ABOUTME: Intervention logging: append-only JSONL per date, with lazy
// ABOUTME: migration of the legacy single-document JSON format.
package storage

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/models"
)

type legacyIntervention struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

type legacyInterventionDay struct {
	Date          string                `json:"date"`
	Entries       []models.Intervention `json:"entries"`
	Interventions []legacyIntervention  `json:"interventions"`
}

// LoadInterventions returns the entries logged for a date. Reads the JSONL
// file when present, falling back to the legacy JSON format. Corrupt JSONL
// lines are skipped so one bad append never hides a day's log.
func (s *Store) LoadInterventions(date string) ([]models.Intervention, error) {
	f, err := os.Open(s.interventionsPath(date))
	if err == nil {
		defer f.Close()
		entries := []models.Intervention{}
		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			var entry models.Intervention
			if err := json.Unmarshal([]byte(text), &entry); err != nil {
				s.log.Warn("skipped corrupt intervention line", "date", date, "line", line, "error", err)
				continue
			}
			entries = append(entries, entry)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read interventions %s: %w", date, err)
		}
		return entries, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open interventions %s: %w", date, err)
	}

	return s.loadLegacyInterventions(date)
}

func (s *Store) loadLegacyInterventions(date string) ([]models.Intervention, error) {
	data, err := os.ReadFile(s.legacyInterventionsPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Intervention{}, nil
		}
		return nil, fmt.Errorf("read legacy interventions %s: %w", date, err)
	}

	var day legacyInterventionDay
	if err := json.Unmarshal(data, &day); err != nil {
		return nil, fmt.Errorf("parse legacy interventions %s: %w", date, err)
	}

	if len(day.Entries) > 0 || len(day.Interventions) == 0 {
		if day.Entries == nil {
			day.Entries = []models.Intervention{}
		}
		return day.Entries, nil
	}

	entries := make([]models.Intervention, 0, len(day.Interventions))
	for _, legacy := range day.Interventions {
		entries = append(entries, convertLegacyIntervention(legacy))
	}
	return entries, nil
}

func convertLegacyIntervention(legacy legacyIntervention) models.Intervention {
	clock := ""
	if _, rest, found := strings.Cut(legacy.Timestamp, "T"); found {
		clock = rest
		if len(clock) > 5 {
			clock = clock[:5]
		}
	}

	text := legacy.Name
	if legacy.Details != "" {
		text = fmt.Sprintf("%s (%s)", legacy.Name, legacy.Details)
	}

	return models.Intervention{Time: clock, Raw: text, Cleaned: text}
}

// SaveIntervention appends an entry to today's log. Append-only JSONL avoids
// read-modify-write races with the daily ingestion job. An empty cleaned text
// falls back to the raw text.
func (s *Store) SaveIntervention(raw, cleaned string) (models.Intervention, error) {
	now := time.Now().In(config.Location())
	today := now.Format("2006-01-02")

	if err := s.migrateLegacyInterventions(today); err != nil {
		return models.Intervention{}, err
	}

	if cleaned == "" {
		cleaned = raw
	}
	entry := models.Intervention{
		Time:    now.Format("15:04"),
		Raw:     raw,
		Cleaned: cleaned,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return models.Intervention{}, fmt.Errorf("marshal intervention: %w", err)
	}

	f, err := os.OpenFile(s.interventionsPath(today), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return models.Intervention{}, fmt.Errorf("open interventions %s: %w", today, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return models.Intervention{}, fmt.Errorf("append intervention: %w", err)
	}
	return entry, nil
}

// migrateLegacyInterventions rewrites a legacy JSON day as JSONL before the
// first append touches it, then removes the legacy file.
func (s *Store) migrateLegacyInterventions(date string) error {
	legacyPath := s.legacyInterventionsPath(date)
	if _, err := os.Stat(legacyPath); err != nil {
		return nil
	}
	if _, err := os.Stat(s.interventionsPath(date)); err == nil {
		return nil
	}

	entries, err := s.loadLegacyInterventions(date)
	if err != nil {
		return err
	}

	if len(entries) > 0 {
		var b strings.Builder
		for _, entry := range entries {
			line, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("marshal intervention: %w", err)
			}
			b.Write(line)
			b.WriteByte('\n')
		}
		if err := os.WriteFile(s.interventionsPath(date), []byte(b.String()), 0600); err != nil {
			return fmt.Errorf("write migrated interventions %s: %w", date, err)
		}
		s.log.Info("migrated legacy interventions", "date", date, "entries", len(entries))
	}

	if err := os.Remove(legacyPath); err != nil {
		return fmt.Errorf("remove legacy interventions %s: %w", date, err)
	}
	return nil
}

// TodayInterventions returns entries logged today.
func (s *Store) TodayInterventions() ([]models.Intervention, error) {
	return s.LoadInterventions(config.Today())
}

// LoadRecentInterventions returns entries for the last days calendar dates,
// keyed by date. Days with no entries are omitted.
func (s *Store) LoadRecentInterventions(days int) (map[string][]models.Intervention, error) {
	now := time.Now().In(config.Location())
	byDate := map[string][]models.Intervention{}
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		entries, err := s.LoadInterventions(date)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			byDate[date] = entries
		}
	}
	return byDate, nil
}

// ClearInterventions deletes a date's log in both formats. Returns whether
// anything was removed.
func (s *Store) ClearInterventions(date string) (bool, error) {
	cleared := false
	for _, path := range []string{s.interventionsPath(date), s.legacyInterventionsPath(date)} {
		err := os.Remove(path)
		if err == nil {
			cleared = true
			continue
		}
		if !os.IsNotExist(err) {
			return cleared, fmt.Errorf("remove interventions %s: %w", date, err)
		}
	}
	return cleared, nil
}
