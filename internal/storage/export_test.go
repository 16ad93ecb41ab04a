// ABOUTME: Tests for store export and import.
// ABOUTME: Verifies JSON, YAML, and Markdown export formats round-trip.
package storage

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/morning/internal/baseline"
	"github.com/harperreed/morning/internal/models"
)

func seedExportStore(t *testing.T, store *Store) {
	t.Helper()

	if err := store.SaveDailyMetrics("2026-01-14", models.Summary{"sleep_score": 76.0, "hrv": 41.0}, nil, nil, false); err != nil {
		t.Fatalf("SaveDailyMetrics failed: %v", err)
	}
	sleep := map[string]any{"efficiency": 91.0}
	workouts := []map[string]any{{"activity": "cycling"}}
	if err := store.SaveDailyMetrics("2026-01-15", models.Summary{"sleep_score": 82.0, "resting_hr": 52.5}, sleep, workouts, false); err != nil {
		t.Fatalf("SaveDailyMetrics failed: %v", err)
	}

	set := baseline.Defaults()
	baseline.Update(set, "2026-01-14", models.Summary{"sleep_score": 76.0})
	baseline.Update(set, "2026-01-15", models.Summary{"sleep_score": 82.0})
	if err := store.SaveBaselines(set); err != nil {
		t.Fatalf("SaveBaselines failed: %v", err)
	}

	entries := []models.Intervention{{Time: "07:30", Raw: "sauna 20min", Cleaned: "20 min sauna"}}
	if err := store.writeInterventions("2026-01-15", entries); err != nil {
		t.Fatalf("writeInterventions failed: %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	store := setupTestStore(t)
	seedExportStore(t, store)

	data, err := store.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}
	if export.Tool != "morning" {
		t.Errorf("Expected tool morning, got %s", export.Tool)
	}
	if len(export.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(export.Records))
	}
	if export.Records[0].Date != "2026-01-15" {
		t.Errorf("Expected newest record first, got %s", export.Records[0].Date)
	}
	if export.Baselines == nil || export.Baselines.DataPoints != 2 {
		t.Errorf("Expected baselines with 2 data points, got %+v", export.Baselines)
	}
	if len(export.Interventions["2026-01-15"]) != 1 {
		t.Errorf("Expected 1 intervention for 2026-01-15, got %d", len(export.Interventions["2026-01-15"]))
	}
}

func TestExportYAML(t *testing.T) {
	store := setupTestStore(t)
	seedExportStore(t, store)

	data, err := store.ExportYAML()
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}

	if yamlData["version"] != "1.0" {
		t.Errorf("Expected version 1.0, got %v", yamlData["version"])
	}
	if yamlData["tool"] != "morning" {
		t.Errorf("Expected tool morning, got %v", yamlData["tool"])
	}

	records, ok := yamlData["records"].([]interface{})
	if !ok {
		t.Fatalf("Expected records to be a list")
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}

	baselines, ok := yamlData["baselines"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected baselines to be a map")
	}
	if _, ok := baselines["sleep_score"]; !ok {
		t.Error("Expected sleep_score in baselines")
	}
}

func TestExportMarkdown(t *testing.T) {
	store := setupTestStore(t)
	seedExportStore(t, store)

	md, err := store.ExportMarkdown(nil)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}

	if !strings.Contains(md, "# Morning Export") {
		t.Error("Expected markdown header")
	}
	if !strings.Contains(md, "## Daily Metrics") {
		t.Error("Expected daily metrics section")
	}
	if !strings.Contains(md, "| 2026-01-15 | 82 |") {
		t.Errorf("Expected record row, got:\n%s", md)
	}
	if !strings.Contains(md, "52.5") {
		t.Error("Expected fractional resting HR in table")
	}
	if !strings.Contains(md, "## Baselines") {
		t.Error("Expected baselines section")
	}
	if !strings.Contains(md, "## Interventions") {
		t.Error("Expected interventions section")
	}
	if !strings.Contains(md, "20 min sauna") {
		t.Error("Expected intervention entry")
	}
}

func TestExportMarkdownWithSince(t *testing.T) {
	store := setupTestStore(t)
	if err := store.SaveDailyMetrics("2026-01-05", models.Summary{"sleep_score": 70.0}, nil, nil, false); err != nil {
		t.Fatalf("SaveDailyMetrics failed: %v", err)
	}
	if err := store.SaveDailyMetrics("2026-01-15", models.Summary{"sleep_score": 82.0}, nil, nil, false); err != nil {
		t.Fatalf("SaveDailyMetrics failed: %v", err)
	}

	since := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	md, err := store.ExportMarkdown(&since)
	if err != nil {
		t.Fatalf("ExportMarkdown with since failed: %v", err)
	}

	if !strings.Contains(md, "2026-01-15") {
		t.Error("Expected recent record in export")
	}
	if strings.Contains(md, "2026-01-05") {
		t.Error("Should not contain record before since date")
	}
}

func TestExportMarkdownEmptyStore(t *testing.T) {
	store := setupTestStore(t)

	md, err := store.ExportMarkdown(nil)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}

	if !strings.Contains(md, "# Morning Export") {
		t.Error("Expected markdown header")
	}
	// Priors carry no observations, so no baselines table either.
	if strings.Contains(md, "## Baselines") {
		t.Error("Did not expect baselines section for empty store")
	}
}

func TestImportJSON(t *testing.T) {
	store := setupTestStore(t)

	jsonData := `{
		"version": "1.0",
		"exported_at": "2026-01-31T12:00:00Z",
		"tool": "morning",
		"records": [
			{
				"date": "2026-01-15",
				"summary": {"sleep_score": 82, "hrv": 48},
				"detailed_sleep": {"efficiency": 91},
				"detailed_workouts": []
			}
		],
		"baselines": null,
		"interventions": {
			"2026-01-15": [
				{"time": "07:30", "raw": "sauna", "cleaned": "20 min sauna"}
			]
		}
	}`

	if err := store.ImportJSON([]byte(jsonData)); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	rec, err := store.LoadDailyRecord("2026-01-15")
	if err != nil {
		t.Fatalf("LoadDailyRecord failed: %v", err)
	}
	if got, _ := rec.Summary.Number("sleep_score"); got != 82 {
		t.Errorf("sleep_score = %v, want 82", got)
	}

	entries, err := store.LoadInterventions("2026-01-15")
	if err != nil {
		t.Fatalf("LoadInterventions failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Cleaned != "20 min sauna" {
		t.Errorf("Interventions = %+v, want the imported entry", entries)
	}
}

func TestImportJSONInvalid(t *testing.T) {
	store := setupTestStore(t)

	if err := store.ImportJSON([]byte("not valid json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := setupTestStore(t)
	seedExportStore(t, src)

	data, err := src.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}

	dst := setupTestStore(t)
	if err := dst.ImportData(data); err != nil {
		t.Fatalf("ImportData failed: %v", err)
	}

	rec, err := dst.LoadDailyRecord("2026-01-15")
	if err != nil {
		t.Fatalf("LoadDailyRecord failed: %v", err)
	}
	if got, _ := rec.Summary.Number("resting_hr"); got != 52.5 {
		t.Errorf("resting_hr = %v, want 52.5", got)
	}
	if len(rec.DetailedWorkouts) != 1 {
		t.Errorf("Expected 1 detailed workout, got %d", len(rec.DetailedWorkouts))
	}

	baselines, err := dst.LoadBaselines()
	if err != nil {
		t.Fatalf("LoadBaselines failed: %v", err)
	}
	if baselines.DataPoints != 2 {
		t.Errorf("DataPoints = %d, want 2", baselines.DataPoints)
	}
}
