// ABOUTME: Export and import for the daily-record store.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/morning/internal/models"
)

// ExportData is the portable form of the whole store: every daily record,
// the baseline set, and all intervention logs. Briefs are regenerable and
// raw snapshots age out, so neither is included.
type ExportData struct {
	Version       string                           `json:"version" yaml:"version"`
	ExportedAt    time.Time                        `json:"exported_at" yaml:"exported_at"`
	Tool          string                           `json:"tool" yaml:"tool"`
	Records       []*models.DailyRecord            `json:"records" yaml:"records"`
	Baselines     *models.BaselineSet              `json:"baselines" yaml:"baselines"`
	Interventions map[string][]models.Intervention `json:"interventions" yaml:"interventions"`
}

// GetAllData retrieves all data for export. Records come back newest first,
// matching the store's read order everywhere else.
func (s *Store) GetAllData() (*ExportData, error) {
	records, err := s.LoadHistoricalMetrics(0)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	baselines, err := s.LoadBaselines()
	if err != nil {
		return nil, fmt.Errorf("load baselines: %w", err)
	}

	interventions, err := s.allInterventions()
	if err != nil {
		return nil, fmt.Errorf("load interventions: %w", err)
	}

	return &ExportData{
		Version:       "1.0",
		ExportedAt:    time.Now(),
		Tool:          "morning",
		Records:       records,
		Baselines:     baselines,
		Interventions: interventions,
	}, nil
}

func (s *Store) allInterventions() (map[string][]models.Intervention, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, interventionsDir))
	if err != nil {
		return nil, fmt.Errorf("read interventions directory: %w", err)
	}

	byDate := map[string][]models.Intervention{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		date := strings.TrimSuffix(strings.TrimSuffix(name, ".jsonl"), ".json")
		if date == name {
			continue
		}
		if _, seen := byDate[date]; seen {
			continue
		}
		list, err := s.LoadInterventions(date)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			byDate[date] = list
		}
	}
	return byDate, nil
}

// ImportData writes an export back into the store. Records and intervention
// logs overwrite the dates they cover; dates the export does not mention are
// left alone. Baselines are replaced wholesale when present.
func (s *Store) ImportData(data *ExportData) error {
	for _, rec := range data.Records {
		if rec == nil || rec.Date == "" {
			continue
		}
		if err := s.SaveDailyMetrics(rec.Date, rec.Summary, rec.DetailedSleep, rec.DetailedWorkouts, false); err != nil {
			return fmt.Errorf("import record %s: %w", rec.Date, err)
		}
	}

	if data.Baselines != nil {
		if err := s.SaveBaselines(data.Baselines); err != nil {
			return fmt.Errorf("import baselines: %w", err)
		}
	}

	for date, entries := range data.Interventions {
		if err := s.writeInterventions(date, entries); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeInterventions(date string, entries []models.Intervention) error {
	if len(entries) == 0 {
		return nil
	}
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
		return fmt.Errorf("write interventions %s: %w", date, err)
	}
	return nil
}

// ExportJSON exports all data as JSON.
func (s *Store) ExportJSON() ([]byte, error) {
	data, err := s.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func (s *Store) ExportYAML() ([]byte, error) {
	data, err := s.GetAllData()
	if err != nil {
		return nil, err
	}

	// Compact, human-readable form: summaries without the detailed
	// sub-structures, baselines as mean/std/n.
	yamlData := struct {
		Version       string                        `yaml:"version"`
		ExportedAt    string                        `yaml:"exported_at"`
		Tool          string                        `yaml:"tool"`
		Records       []yamlRecord                  `yaml:"records"`
		Baselines     map[string]yamlBaseline       `yaml:"baselines"`
		Interventions map[string][]yamlIntervention `yaml:"interventions,omitempty"`
	}{
		Version:       data.Version,
		ExportedAt:    data.ExportedAt.Format(time.RFC3339),
		Tool:          data.Tool,
		Records:       make([]yamlRecord, 0, len(data.Records)),
		Baselines:     make(map[string]yamlBaseline),
		Interventions: make(map[string][]yamlIntervention),
	}

	for _, rec := range data.Records {
		yamlData.Records = append(yamlData.Records, yamlRecord{
			Date:     rec.Date,
			Summary:  rec.Summary,
			Workouts: len(rec.DetailedWorkouts),
		})
	}

	if data.Baselines != nil {
		for name, mb := range data.Baselines.Metrics {
			yamlData.Baselines[name] = yamlBaseline{
				Mean: mb.Mean,
				Std:  mb.Std,
				N:    len(mb.Values),
			}
		}
	}

	for date, entries := range data.Interventions {
		for _, entry := range entries {
			yamlData.Interventions[date] = append(yamlData.Interventions[date], yamlIntervention{
				Time: entry.Time,
				Text: entry.Cleaned,
			})
		}
	}

	return yaml.Marshal(yamlData)
}

type yamlRecord struct {
	Date     string         `yaml:"date"`
	Summary  models.Summary `yaml:"summary"`
	Workouts int            `yaml:"workouts,omitempty"`
}

type yamlBaseline struct {
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
	N    int     `yaml:"n"`
}

type yamlIntervention struct {
	Time string `yaml:"time"`
	Text string `yaml:"text"`
}

// ExportMarkdown exports data as Markdown tables.
func (s *Store) ExportMarkdown(since *time.Time) (string, error) {
	data, err := s.GetAllData()
	if err != nil {
		return "", err
	}

	records := data.Records
	if since != nil {
		cutoff := since.Format("2006-01-02")
		var filtered []*models.DailyRecord
		for _, rec := range records {
			if rec.Date >= cutoff {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	var sb strings.Builder
	now := time.Now()
	sb.WriteString(fmt.Sprintf("# Morning Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(records) > 0 {
		sb.WriteString("## Daily Metrics\n\n")
		sb.WriteString("| Date | Sleep | Readiness | Total Sleep | HRV | Resting HR | Steps |\n")
		sb.WriteString("|------|-------|-----------|-------------|-----|------------|-------|\n")
		for _, rec := range records {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				rec.Date,
				markdownCell(rec.Summary, "sleep_score"),
				markdownCell(rec.Summary, "readiness"),
				markdownCell(rec.Summary, "total_sleep_minutes"),
				markdownCell(rec.Summary, "hrv"),
				markdownCell(rec.Summary, "resting_hr"),
				markdownCell(rec.Summary, "steps")))
		}
		sb.WriteString("\n")
	}

	if data.Baselines != nil && data.Baselines.DataPoints > 0 {
		var names []string
		for name := range data.Baselines.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		sb.WriteString("## Baselines\n\n")
		sb.WriteString("| Metric | Mean | Std | Days |\n")
		sb.WriteString("|--------|------|-----|------|\n")
		for _, name := range names {
			mb := data.Baselines.Metrics[name]
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n",
				name, formatFloat(mb.Mean), formatFloat(mb.Std), len(mb.Values)))
		}
		sb.WriteString("\n")
	}

	if len(data.Interventions) > 0 {
		var dates []string
		for date := range data.Interventions {
			if since != nil && date < since.Format("2006-01-02") {
				continue
			}
			dates = append(dates, date)
		}
		sort.Strings(dates)

		if len(dates) > 0 {
			sb.WriteString("## Interventions\n\n")
			sb.WriteString("| Date | Time | Entry |\n")
			sb.WriteString("|------|------|-------|\n")
			for _, date := range dates {
				for _, entry := range data.Interventions[date] {
					sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", date, entry.Time, entry.Cleaned))
				}
			}
		}
	}

	return sb.String(), nil
}

func markdownCell(s models.Summary, key string) string {
	if v, ok := s.Number(key); ok {
		return formatFloat(v)
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ImportJSON imports data from JSON bytes.
func (s *Store) ImportJSON(data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return s.ImportData(&exportData)
}
