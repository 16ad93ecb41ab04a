// ABOUTME: Tests for agent tool execution against a real on-disk store.
// ABOUTME: Covers filtering, error payloads, and input normalization.
package agent

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/models"
	"github.com/harperreed/morning/internal/storage"
)

func setupToolAgent(t *testing.T) *Agent {
	t.Helper()
	dir, err := os.MkdirTemp("", "agent-tools-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return &Agent{store: store, logger: slog.Default()}
}

func localDate(daysAgo int) string {
	return time.Now().In(config.Location()).AddDate(0, 0, -daysAgo).Format("2006-01-02")
}

func TestGetMetricsFiltersDateRange(t *testing.T) {
	a := setupToolAgent(t)
	for i := 0; i < 3; i++ {
		date := localDate(i)
		summary := models.Summary{"sleep_score": float64(80 - i)}
		if err := a.store.SaveDailyMetrics(date, summary, nil, nil, false); err != nil {
			t.Fatalf("seed metrics: %v", err)
		}
	}

	out, err := a.executeTool("get_metrics", map[string]interface{}{
		"start_date": localDate(1),
		"end_date":   localDate(0),
	})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}

	var result []struct {
		Date    string         `json:"date"`
		Summary models.Summary `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, out)
	}
	if len(result) != 2 {
		t.Fatalf("got %d days, want 2", len(result))
	}
	if result[0].Date != localDate(0) || result[1].Date != localDate(1) {
		t.Errorf("dates = %s, %s", result[0].Date, result[1].Date)
	}
	if got, _ := result[1].Summary.Number("sleep_score"); got != 79 {
		t.Errorf("yesterday sleep_score = %v, want 79", got)
	}
}

func TestGetDetailedSleep(t *testing.T) {
	a := setupToolAgent(t)
	detailed := map[string]any{"total_sleep_minutes": float64(432), "deep_sleep_pct": 24.5}
	if err := a.store.SaveDailyMetrics(localDate(0), models.Summary{"sleep_score": float64(81)}, detailed, nil, false); err != nil {
		t.Fatalf("seed metrics: %v", err)
	}
	if err := a.store.SaveDailyMetrics(localDate(1), models.Summary{"sleep_score": float64(74)}, nil, nil, false); err != nil {
		t.Fatalf("seed metrics: %v", err)
	}

	out, err := a.executeTool("get_detailed_sleep", map[string]interface{}{"date": localDate(0)})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if diff := cmp.Diff(detailed, got); diff != "" {
		t.Errorf("detailed sleep mismatch (-want +got):\n%s", diff)
	}

	out, err = a.executeTool("get_detailed_sleep", map[string]interface{}{"date": localDate(1)})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if want := fmt.Sprintf(`{"error":"No detailed sleep data for %s"}`, localDate(1)); out != want {
		t.Errorf("empty-detail result = %s, want %s", out, want)
	}

	out, err = a.executeTool("get_detailed_sleep", map[string]interface{}{"date": "1999-01-01"})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if out != `{"error":"No data found for 1999-01-01"}` {
		t.Errorf("missing-date result = %s", out)
	}
}

func TestGetInterventionsFiltersDateRange(t *testing.T) {
	a := setupToolAgent(t)
	if _, err := a.store.SaveIntervention("sauna 20", "Sauna 20 min"); err != nil {
		t.Fatalf("seed intervention: %v", err)
	}

	out, err := a.executeTool("get_interventions", map[string]interface{}{
		"start_date": localDate(0),
		"end_date":   localDate(0),
	})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	var got map[string][]models.Intervention
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(got) != 1 || len(got[localDate(0)]) != 1 {
		t.Fatalf("result = %v", got)
	}
	if got[localDate(0)][0].Cleaned != "Sauna 20 min" {
		t.Errorf("entry = %+v", got[localDate(0)][0])
	}

	out, err = a.executeTool("get_interventions", map[string]interface{}{
		"start_date": "1999-01-01",
		"end_date":   "1999-01-07",
	})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if out != "{}" {
		t.Errorf("out-of-range result = %s, want {}", out)
	}
}

func TestGetBaselinesStripsValues(t *testing.T) {
	a := setupToolAgent(t)
	updated := "2026-01-15T07:00:00-05:00"
	set := &models.BaselineSet{
		LastUpdated: &updated,
		Dates:       []string{"2026-01-14", "2026-01-15"},
		DataPoints:  2,
		WindowDays:  config.BaselineWindowDays,
		Metrics: map[string]*models.MetricBaseline{
			"hrv": {Mean: 52.5, Std: 4.1, Values: []float64{48, 57}},
		},
	}
	if err := a.store.SaveBaselines(set); err != nil {
		t.Fatalf("seed baselines: %v", err)
	}

	out, err := a.executeTool("get_baselines", nil)
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	var got struct {
		DataPoints  int                           `json:"data_points"`
		LastUpdated *string                       `json:"last_updated"`
		Metrics     map[string]map[string]float64 `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if got.DataPoints != 2 {
		t.Errorf("data_points = %d, want 2", got.DataPoints)
	}
	if got.LastUpdated == nil || *got.LastUpdated != updated {
		t.Errorf("last_updated = %v", got.LastUpdated)
	}
	if got.Metrics["hrv"]["mean"] != 52.5 || got.Metrics["hrv"]["std"] != 4.1 {
		t.Errorf("hrv baseline = %v", got.Metrics["hrv"])
	}
	if strings.Contains(out, "values") {
		t.Error("raw value arrays should be stripped from the payload")
	}
}

func TestLogInterventionTool(t *testing.T) {
	a := setupToolAgent(t)

	out, err := a.executeTool("log_intervention", map[string]interface{}{
		"raw_text":   "took 2 mag threonate",
		"normalized": "Magnesium L-Threonate 2 capsules",
	})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	var got struct {
		Status     string `json:"status"`
		Time       string `json:"time"`
		Normalized string `json:"normalized"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if got.Status != "logged" || got.Normalized != "Magnesium L-Threonate 2 capsules" || got.Time == "" {
		t.Errorf("result = %+v", got)
	}

	entries, err := a.store.TodayInterventions()
	if err != nil {
		t.Fatalf("TodayInterventions failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Raw != "took 2 mag threonate" {
		t.Errorf("stored entries = %+v", entries)
	}
}

func TestGetTodayInterventionsEmpty(t *testing.T) {
	a := setupToolAgent(t)

	out, err := a.executeTool("get_today_interventions", nil)
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if out != "[]" {
		t.Errorf("empty result = %s, want []", out)
	}
}

func TestGetRecentBriefsClampsDays(t *testing.T) {
	a := setupToolAgent(t)
	for i := 1; i <= 9; i++ {
		if err := a.store.SaveBrief(localDate(i), fmt.Sprintf("brief %d", i)); err != nil {
			t.Fatalf("seed brief: %v", err)
		}
	}

	out, err := a.executeTool("get_recent_briefs", map[string]interface{}{"days": float64(30)})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	var briefs []models.Brief
	if err := json.Unmarshal([]byte(out), &briefs); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(briefs) != 7 {
		t.Errorf("got %d briefs with days=30, want 7 (clamped)", len(briefs))
	}

	out, err = a.executeTool("get_recent_briefs", map[string]interface{}{})
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &briefs); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(briefs) != 3 {
		t.Errorf("got %d briefs by default, want 3", len(briefs))
	}
}

func TestExecuteToolUnknown(t *testing.T) {
	a := setupToolAgent(t)

	out, err := a.executeTool("bogus_tool", nil)
	if err != nil {
		t.Fatalf("unknown tool should not error: %v", err)
	}
	if out != `{"error":"Unknown tool: bogus_tool"}` {
		t.Errorf("result = %s", out)
	}
}

func TestExecuteToolMissingArgument(t *testing.T) {
	a := setupToolAgent(t)

	_, err := a.executeTool("get_metrics", map[string]interface{}{"start_date": localDate(1)})
	if err == nil {
		t.Fatal("expected error for missing end_date")
	}
	if !strings.Contains(err.Error(), "end_date") {
		t.Errorf("error = %v", err)
	}
}

func TestNormalizeToolInput(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  map[string]interface{}
	}{
		{"nil", nil, map[string]interface{}{}},
		{"map passthrough", map[string]interface{}{"date": "2026-01-15"}, map[string]interface{}{"date": "2026-01-15"}},
		{"raw message", json.RawMessage(`{"days": 3}`), map[string]interface{}{"days": float64(3)}},
		{"bytes", []byte(`{"x":"y"}`), map[string]interface{}{"x": "y"}},
		{"empty bytes", []byte{}, map[string]interface{}{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeToolInput(tc.input)
			if err != nil {
				t.Fatalf("normalizeToolInput failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := normalizeToolInput(json.RawMessage(`{not json`)); err == nil {
		t.Error("expected error for malformed input")
	}
}
