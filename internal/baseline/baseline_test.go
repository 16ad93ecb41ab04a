// ABOUTME: Tests for the rolling baseline engine.
// ABOUTME: Covers correction semantics, window bounds, and stat regression values.
package baseline

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/morning/internal/models"
)

func TestDefaults(t *testing.T) {
	set := Defaults()

	if set.LastUpdated != nil {
		t.Errorf("LastUpdated = %v, want nil for fresh baselines", *set.LastUpdated)
	}
	if len(set.Dates) != 0 {
		t.Errorf("Dates = %v, want empty", set.Dates)
	}
	if set.DataPoints != 0 {
		t.Errorf("DataPoints = %d, want 0", set.DataPoints)
	}
	if set.WindowDays != 60 {
		t.Errorf("WindowDays = %d, want 60", set.WindowDays)
	}
	if len(set.Metrics) != 15 {
		t.Errorf("got %d tracked metrics, want 15", len(set.Metrics))
	}

	ss := set.Metrics["sleep_score"]
	if ss == nil {
		t.Fatal("sleep_score baseline missing")
	}
	if ss.Mean != 75 || ss.Std != 10 {
		t.Errorf("sleep_score stub = %v/%v, want 75/10", ss.Mean, ss.Std)
	}
	if len(ss.Values) != 0 {
		t.Errorf("sleep_score values = %v, want empty", ss.Values)
	}

	wc := set.Metrics["workout_calories"]
	if wc == nil || wc.Mean != 200 || wc.Std != 150 {
		t.Errorf("workout_calories stub = %+v, want 200/150", wc)
	}
}

func TestUpdateTwoDayScenario(t *testing.T) {
	set := Defaults()

	Update(set, "2026-01-01", models.Summary{"sleep_score": 80.0})
	Update(set, "2026-01-02", models.Summary{"sleep_score": 70.0})

	if diff := cmp.Diff([]string{"2026-01-01", "2026-01-02"}, set.Dates); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}

	ss := set.Metrics["sleep_score"]
	if diff := cmp.Diff([]float64{80, 70}, ss.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if ss.Mean != 75.0 {
		t.Errorf("mean = %v, want 75.0", ss.Mean)
	}
	if ss.Std != 7.1 {
		t.Errorf("std = %v, want 7.1", ss.Std)
	}
}

func TestUpdateSingleValue(t *testing.T) {
	set := Defaults()

	Update(set, "2026-01-01", models.Summary{"hrv": 52.0})

	hrv := set.Metrics["hrv"]
	if hrv.Mean != 52.0 {
		t.Errorf("mean = %v, want the single observation", hrv.Mean)
	}
	if hrv.Std != 0 {
		t.Errorf("std = %v, want 0 for a single observation", hrv.Std)
	}
}

func TestUpdateFiveValueRegression(t *testing.T) {
	set := Defaults()

	values := []float64{70, 72, 75, 78, 80}
	for i, v := range values {
		date := time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		Update(set, date, models.Summary{"sleep_score": v})
	}

	ss := set.Metrics["sleep_score"]
	if ss.Mean != 75.0 {
		t.Errorf("mean = %v, want 75.0", ss.Mean)
	}
	// Sample (N-1) standard deviation: sqrt(68/4)
	if ss.Std != 4.1 {
		t.Errorf("std = %v, want 4.1", ss.Std)
	}
}

func TestUpdateCorrectionReplacesDate(t *testing.T) {
	set := Defaults()

	Update(set, "2026-01-05", models.Summary{"sleep_score": 80.0})
	Update(set, "2026-01-05", models.Summary{"sleep_score": 85.0})

	if len(set.Dates) != 1 {
		t.Fatalf("dates = %v, want exactly one entry", set.Dates)
	}
	if set.Dates[0] != "2026-01-05" {
		t.Errorf("dates[0] = %q, want 2026-01-05", set.Dates[0])
	}

	ss := set.Metrics["sleep_score"]
	if diff := cmp.Diff([]float64{85}, ss.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if ss.Mean != 85.0 {
		t.Errorf("mean = %v, want the corrected value", ss.Mean)
	}
}

func TestUpdateCorrectionMidWindow(t *testing.T) {
	set := Defaults()

	Update(set, "2026-01-01", models.Summary{"sleep_score": 70.0})
	Update(set, "2026-01-02", models.Summary{"sleep_score": 80.0})
	Update(set, "2026-01-03", models.Summary{"sleep_score": 90.0})

	// Re-ingest the middle day; its slot moves to the end of the window
	Update(set, "2026-01-02", models.Summary{"sleep_score": 60.0})

	if diff := cmp.Diff([]string{"2026-01-01", "2026-01-03", "2026-01-02"}, set.Dates); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
	ss := set.Metrics["sleep_score"]
	if diff := cmp.Diff([]float64{70, 90, 60}, ss.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateCorrectionShortHistory(t *testing.T) {
	set := Defaults()

	// hrv never observed; its empty history must survive a correction at
	// an index it does not reach
	Update(set, "2026-01-01", models.Summary{"sleep_score": 70.0})
	Update(set, "2026-01-01", models.Summary{"sleep_score": 75.0, "hrv": 50.0})

	if len(set.Dates) != 1 {
		t.Fatalf("dates = %v, want one entry", set.Dates)
	}
	if diff := cmp.Diff([]float64{50}, set.Metrics["hrv"].Values); diff != "" {
		t.Errorf("hrv values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{75}, set.Metrics["sleep_score"].Values); diff != "" {
		t.Errorf("sleep_score values mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateRespectsWindow(t *testing.T) {
	set := &models.BaselineSet{
		Dates:      []string{"2026-01-10", "2026-01-11", "2026-01-12", "2026-01-13", "2026-01-14"},
		DataPoints: 5,
		WindowDays: 5,
		Metrics: map[string]*models.MetricBaseline{
			"sleep_score": {Mean: 75, Std: 5, Values: []float64{70, 72, 75, 78, 80}},
		},
	}

	Update(set, "2026-01-15", models.Summary{"sleep_score": 85.0})

	if len(set.Dates) != 5 {
		t.Fatalf("dates length = %d, want 5", len(set.Dates))
	}
	for _, d := range set.Dates {
		if d == "2026-01-10" {
			t.Error("oldest date should have been dropped")
		}
	}
	if set.Dates[len(set.Dates)-1] != "2026-01-15" {
		t.Errorf("newest date = %q, want 2026-01-15", set.Dates[len(set.Dates)-1])
	}

	ss := set.Metrics["sleep_score"]
	if diff := cmp.Diff([]float64{72, 75, 78, 80, 85}, ss.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if ss.Mean != 78.0 {
		t.Errorf("mean = %v, want 78.0", ss.Mean)
	}
	if ss.Std != 4.9 {
		t.Errorf("std = %v, want 4.9", ss.Std)
	}
}

func TestUpdateSkipsNullValues(t *testing.T) {
	set := Defaults()

	Update(set, "2026-01-01", models.Summary{"sleep_score": 80.0, "hrv": nil})

	hrv := set.Metrics["hrv"]
	if len(hrv.Values) != 0 {
		t.Errorf("hrv values = %v, want untouched", hrv.Values)
	}
	if hrv.Mean != 45 || hrv.Std != 10 {
		t.Errorf("hrv stub changed: %v/%v", hrv.Mean, hrv.Std)
	}

	if len(set.Metrics["sleep_score"].Values) != 1 {
		t.Error("sleep_score should still have been recorded")
	}
}

func TestUpdateIgnoresUnknownKeys(t *testing.T) {
	set := Defaults()

	Update(set, "2026-01-01", models.Summary{"stress_day_summary": "restored", "shoe_size": 44.0})

	if _, ok := set.Metrics["shoe_size"]; ok {
		t.Error("unknown metric keys must not create baselines")
	}
	if len(set.Metrics) != 15 {
		t.Errorf("metric count changed to %d", len(set.Metrics))
	}
}

func TestUpdateStampsMetadata(t *testing.T) {
	set := Defaults()

	Update(set, "2026-01-01", models.Summary{"sleep_score": 80.0})
	Update(set, "2026-01-02", models.Summary{"sleep_score": 82.0})

	if set.LastUpdated == nil {
		t.Fatal("LastUpdated not stamped")
	}
	if _, err := time.Parse(time.RFC3339, *set.LastUpdated); err != nil {
		t.Errorf("LastUpdated %q not RFC3339: %v", *set.LastUpdated, err)
	}
	if set.DataPoints != 2 {
		t.Errorf("DataPoints = %d, want 2", set.DataPoints)
	}
}

func TestMigrateAddsMissingMetrics(t *testing.T) {
	set := &models.BaselineSet{
		Dates:      []string{"2026-01-01"},
		WindowDays: 60,
		Metrics: map[string]*models.MetricBaseline{
			"sleep_score": {Mean: 80, Std: 4, Values: []float64{78, 80, 82}},
		},
	}

	Migrate(set)

	if len(set.Metrics) != 15 {
		t.Errorf("got %d metrics after migration, want 15", len(set.Metrics))
	}

	ss := set.Metrics["sleep_score"]
	if diff := cmp.Diff([]float64{78, 80, 82}, ss.Values); diff != "" {
		t.Errorf("pre-existing values disturbed (-want +got):\n%s", diff)
	}
	if ss.Mean != 80 || ss.Std != 4 {
		t.Errorf("pre-existing stats disturbed: %v/%v", ss.Mean, ss.Std)
	}

	hrv := set.Metrics["hrv"]
	if hrv == nil || hrv.Mean != 45 || hrv.Std != 10 || len(hrv.Values) != 0 {
		t.Errorf("migrated hrv stub = %+v, want default 45/10 with empty values", hrv)
	}
}

func TestMigrateRepairsEmptySet(t *testing.T) {
	set := &models.BaselineSet{}

	Migrate(set)

	if set.Metrics == nil || len(set.Metrics) != 15 {
		t.Errorf("Metrics not populated: %d", len(set.Metrics))
	}
	if set.Dates == nil {
		t.Error("Dates should be non-nil after migration")
	}
	if set.WindowDays != 60 {
		t.Errorf("WindowDays = %d, want 60", set.WindowDays)
	}
}
