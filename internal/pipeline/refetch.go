// ABOUTME: Single-date refetch: re-pull one day from Oura and correct storage.
// ABOUTME: Merge-writes the record, then folds the correction into baselines.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/morning/internal/baseline"
	"github.com/harperreed/morning/internal/extract"
	"github.com/harperreed/morning/internal/models"
)

// Refetch re-pulls a single date from Oura, merge-writes it over the stored
// record, and corrects that date's baseline contribution. Merging preserves
// fields a later refetch cannot reproduce, daytime heart rate in particular.
// It returns the record as stored after the merge.
func (r *Runner) Refetch(ctx context.Context, date string) (*models.DailyRecord, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}

	r.logger.Info("refetching", "date", date)

	data, err := r.oura.FetchDailyData(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("fetching data for %s: %w", date, err)
	}

	summary := extract.Metrics(data)
	if !hasAnyValue(summary) {
		return nil, fmt.Errorf("no metrics extracted for %s", date)
	}
	detailedSleep := extract.DetailedSleep(data)
	detailedWorkouts := extract.DetailedWorkouts(data)

	if err := r.store.SaveDailyMetrics(date, summary, detailedSleep, detailedWorkouts, true); err != nil {
		return nil, fmt.Errorf("saving metrics for %s: %w", date, err)
	}
	record, err := r.store.LoadDailyRecord(date)
	if err != nil {
		return nil, err
	}

	baselines, err := r.store.LoadBaselines()
	if err != nil {
		return nil, err
	}
	// The merged summary is what the baseline contribution should reflect.
	if withinWindow(baselines.Dates, date) {
		baseline.Update(baselines, date, record.Summary)
		if err := r.store.SaveBaselines(baselines); err != nil {
			return nil, err
		}
	} else {
		r.logger.Info("date predates baseline window, skipping baseline update", "date", date)
	}

	return record, nil
}

// withinWindow reports whether a refetched date belongs in the rolling
// baseline window. Tracked dates are corrected in place and dates at or after
// the oldest tracked date extend the window. Anything older would append as
// if it were newest, so it stays out.
func withinWindow(dates []string, date string) bool {
	if len(dates) == 0 {
		return true
	}
	oldest := dates[0]
	for _, d := range dates {
		if d == date {
			return true
		}
		if d < oldest {
			oldest = d
		}
	}
	return date >= oldest
}
