// ABOUTME: Tests for morning brief prompt assembly and generation.
// ABOUTME: Prompt content checks plus a canned-response API round trip.
package brief

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/harperreed/morning/internal/models"
)

func sampleInput() Input {
	return Input{
		Date: "2026-01-15",
		Summary: models.Summary{
			"sleep_score": float64(82),
			"hrv":         float64(52),
			"readiness":   float64(78),
		},
		DetailedSleep: map[string]any{
			"bedtime_start":       "2026-01-14T23:00:00-05:00",
			"bedtime_end":         "2026-01-15T06:45:00-05:00",
			"time_in_bed_minutes": float64(465),
			"total_sleep_minutes": float64(420),
			"deep_sleep_pct":      27.3,
			"light_sleep_pct":     40.9,
			"rem_sleep_pct":       22.7,
			"hr_first_third_avg":  52.8,
			"hr_last_third_avg":   56.5,
			"hrv_first_third_avg": 50.0,
			"hrv_last_third_avg":  51.3,
			"phase_transitions":   float64(9),
		},
		DetailedWorkouts: []map[string]any{
			{
				"activity":         "cycling",
				"label":            nil,
				"intensity":        "moderate",
				"duration_minutes": float64(45),
				"calories":         float64(350),
			},
		},
		Baselines: &models.BaselineSet{
			Dates:      []string{"2026-01-13", "2026-01-14"},
			DataPoints: 2,
			WindowDays: 60,
			Metrics: map[string]*models.MetricBaseline{
				"sleep_score": {Mean: 75.0, Std: 4.1, Values: []float64{70, 80}},
			},
		},
		History: []models.DailyRecord{
			{
				Date: "2026-01-14",
				Summary: models.Summary{
					"sleep_score":      float64(79),
					"stress_high":      float64(45),
					"recovery_high":    float64(120),
					"workout_minutes":  float64(45),
					"workout_calories": float64(350),
					"daytime_hr_avg":   72.5,
				},
			},
		},
		Interventions: map[string][]models.Intervention{
			"2026-01-14": {{Time: "21:30", Raw: "took mag", Cleaned: "Magnesium 400mg"}},
		},
		RecentBriefs: []models.Brief{
			{Date: "2026-01-14", Content: "*TL;DR* Solid recovery."},
		},
	}
}

func TestBuildPromptSections(t *testing.T) {
	prompt := BuildPrompt(sampleInput())

	if !strings.HasPrefix(prompt, "Generate my morning optimization brief for 2026-01-15.") {
		t.Errorf("prompt does not open with the date line:\n%s", prompt[:120])
	}

	sections := []string{
		"LAST NIGHT'S DETAILED SLEEP DATA",
		"YESTERDAY'S WORKOUTS",
		"TODAY'S SUMMARY METRICS",
		"BASELINES (rolling 60-day averages, updated daily)",
		"HISTORICAL METRICS (last 28 days)",
		"INTERVENTIONS (last 28 days)",
		"RECENT BRIEFS (for continuity)",
		"YOUR TASK",
	}
	for _, s := range sections {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt missing section %q", s)
		}
	}
}

func TestBuildPromptSleepObservations(t *testing.T) {
	prompt := BuildPrompt(sampleInput())

	wants := []string{
		"- Bedtime: 2026-01-14T23:00:00-05:00 → 2026-01-15T06:45:00-05:00",
		"- Time in bed: 465 min, actual sleep: 420 min",
		"- Sleep stages: Deep 27.3%, Light 40.9%, REM 22.7%",
		"- HR trend: first third avg 52.8 → last third avg 56.5 bpm",
		"- HRV trend: first third avg 50 → last third avg 51.3 ms",
		"- Phase transitions (sleep fragmentation indicator): 9",
	}
	for _, w := range wants {
		if !strings.Contains(prompt, w) {
			t.Errorf("prompt missing observation %q", w)
		}
	}
}

func TestBuildPromptWorkoutSummary(t *testing.T) {
	prompt := BuildPrompt(sampleInput())

	wants := []string{
		"Summary: 1 workout(s), 45 total minutes, 350 calories",
		"Activities: cycling",
		"  1. cycling: 45min, moderate intensity, 350 cal",
	}
	for _, w := range wants {
		if !strings.Contains(prompt, w) {
			t.Errorf("prompt missing workout line %q", w)
		}
	}
}

func TestBuildPromptHistoryLine(t *testing.T) {
	prompt := BuildPrompt(sampleInput())

	want := "2026-01-14: Sleep=79, Readiness=-, HRV=-, Deep=-min, RHR=-, Stress=45min, Recovery=120min, Workout=45min/350cal, DayHR=72.5bpm"
	if !strings.Contains(prompt, want) {
		t.Errorf("prompt missing history line:\nwant %q", want)
	}
}

func TestBuildPromptBaselineContext(t *testing.T) {
	prompt := BuildPrompt(sampleInput())

	if !strings.Contains(prompt, "Data points in baseline: 2") {
		t.Error("prompt missing baseline data points line")
	}
	if !strings.Contains(prompt, "Dates covered: 2026-01-13, 2026-01-14") {
		t.Error("prompt missing baseline dates line")
	}
	if !strings.Contains(prompt, `"mean": 75`) {
		t.Error("prompt missing baseline metrics JSON")
	}
}

func TestBuildPromptEmptyInput(t *testing.T) {
	prompt := BuildPrompt(Input{Date: "2026-01-15"})

	wants := []string{
		"No workouts recorded yesterday.",
		"No baselines available yet.",
		"No historical data available yet (building baseline).",
		"No interventions logged yet.",
		"No previous briefs available.",
		"- Bedtime: N/A → N/A",
	}
	for _, w := range wants {
		if !strings.Contains(prompt, w) {
			t.Errorf("empty-input prompt missing %q", w)
		}
	}
}

func TestBuildPromptInterventionsNewestFirst(t *testing.T) {
	in := sampleInput()
	in.Interventions = map[string][]models.Intervention{
		"2026-01-12": {{Time: "08:00", Raw: "coffee", Cleaned: ""}},
		"2026-01-14": {{Time: "21:30", Raw: "took mag", Cleaned: "Magnesium 400mg"}},
	}
	prompt := BuildPrompt(in)

	first := strings.Index(prompt, "2026-01-14: Magnesium 400mg")
	second := strings.Index(prompt, "2026-01-12: coffee")
	if first == -1 || second == -1 {
		t.Fatalf("prompt missing intervention lines (idx %d, %d)", first, second)
	}
	if first > second {
		t.Error("interventions not ordered newest date first")
	}
}

func TestBuildPromptLimitsRecentBriefs(t *testing.T) {
	in := sampleInput()
	in.RecentBriefs = []models.Brief{
		{Date: "2026-01-14", Content: "brief one"},
		{Date: "2026-01-13", Content: "brief two"},
		{Date: "2026-01-12", Content: "brief three"},
		{Date: "2026-01-11", Content: "brief four"},
	}
	prompt := BuildPrompt(in)

	if !strings.Contains(prompt, "brief three") {
		t.Error("third brief should be included")
	}
	if strings.Contains(prompt, "brief four") {
		t.Error("fourth brief should be cut by the three-brief limit")
	}
}

func TestBuildPromptCapsHistory(t *testing.T) {
	in := sampleInput()
	in.History = nil
	for i := 0; i < 35; i++ {
		in.History = append(in.History, models.DailyRecord{
			Date:    fmt.Sprintf("2026-01-%02d", i+1),
			Summary: models.Summary{"sleep_score": float64(70 + i%10)},
		})
	}
	prompt := BuildPrompt(in)

	if got := strings.Count(prompt, ": Sleep="); got != 28 {
		t.Errorf("history lines = %d, want 28", got)
	}
}

func TestGenerateExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q, want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "msg_test",
			"type": "message",
			"role": "assistant",
			"model": "claude-opus-4-5-20251101",
			"content": [{"type": "text", "text": "*TL;DR* Take it easy today."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 100, "output_tokens": 20}
		}`)
	}))
	t.Cleanup(srv.Close)

	g := NewGenerator("test-key", "claude-opus-4-5-20251101", option.WithBaseURL(srv.URL))
	text, err := g.Generate(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "*TL;DR* Take it easy today." {
		t.Errorf("Generate = %q, want the canned brief text", text)
	}
}
