// ABOUTME: Historical backfill: bulk-fetch a date range and rebuild baselines.
// ABOUTME: Per-endpoint failures degrade to empty sources, never abort the run.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/morning/internal/baseline"
	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/extract"
	"github.com/harperreed/morning/internal/models"
)

const defaultBackfillDays = 90

// BackfillResult summarizes what a backfill run accomplished.
type BackfillResult struct {
	DaysProcessed  int
	FilesSaved     int
	BaselinePoints int
}

// Backfill fetches the trailing window of Oura history, writes daily metric
// files for the raw retention window, and rebuilds baselines from scratch
// over every day that produced metrics. Existing baselines are replaced, not
// merged. days <= 0 means the default 90.
func (r *Runner) Backfill(ctx context.Context, days int) (*BackfillResult, error) {
	if days <= 0 {
		days = defaultBackfillDays
	}

	today := config.Today()
	start, err := addDays(today, -days)
	if err != nil {
		return nil, err
	}
	end, err := addDays(today, 1)
	if err != nil {
		return nil, err
	}
	// Sessions ending on the oldest wake date started the night before.
	sleepStart, err := addDays(today, -(days + 1))
	if err != nil {
		return nil, err
	}

	r.logger.Info("starting backfill", "days", days, "start", start, "end", end)

	dailySleep := r.rangeByDay(ctx, "daily_sleep", start, end)
	dailyReadiness := r.rangeByDay(ctx, "daily_readiness", start, end)
	sessions := r.sleepSessionsByWakeDate(ctx, sleepStart, end)
	dailyStress := r.rangeByDay(ctx, "daily_stress", start, end)
	workouts := r.workoutsByDay(ctx, start, end)
	daytimeHR := r.daytimeHeartrate(ctx, today, days)

	allMetrics := map[string]models.Summary{}
	saved := 0
	for i := 0; i < days; i++ {
		date, err := addDays(today, -i)
		if err != nil {
			return nil, err
		}

		data := extract.SourceData{
			"daily_sleep":     itemOrEmpty(dailySleep, date),
			"daily_readiness": itemOrEmpty(dailyReadiness, date),
			"sleep":           itemOrEmpty(sessions, date),
			"daily_stress":    itemOrEmpty(dailyStress, date),
			"workouts":        workouts[date],
			"daytime_hr":      daytimeHR[date],
		}

		summary := extract.Metrics(data)
		if !hasAnyValue(summary) {
			continue
		}
		allMetrics[date] = summary

		if i < config.RawWindowDays {
			detailedSleep := extract.DetailedSleep(data)
			detailedWorkouts := extract.DetailedWorkouts(data)
			if err := r.store.SaveDailyMetrics(date, summary, detailedSleep, detailedWorkouts, false); err != nil {
				return nil, fmt.Errorf("saving metrics for %s: %w", date, err)
			}
			saved++
		}
	}

	r.logger.Info("extracted metrics", "days", len(allMetrics))

	set := baseline.Defaults()
	dates := make([]string, 0, len(allMetrics))
	for date := range allMetrics {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		baseline.Update(set, date, allMetrics[date])
	}
	if err := r.store.SaveBaselines(set); err != nil {
		return nil, err
	}

	r.logger.Info("backfill complete",
		"days_processed", len(allMetrics),
		"files_saved", saved,
		"baseline_points", set.DataPoints)

	return &BackfillResult{
		DaysProcessed:  len(allMetrics),
		FilesSaved:     saved,
		BaselinePoints: set.DataPoints,
	}, nil
}

// rangeByDay pulls one endpoint for the window and indexes items by their
// "day" field, last wins. A failed endpoint degrades to an empty index.
func (r *Runner) rangeByDay(ctx context.Context, endpoint, start, end string) map[string]map[string]any {
	items, err := r.oura.FetchRange(ctx, endpoint, start, end)
	if err != nil {
		r.logger.Warn("backfill endpoint failed", "endpoint", endpoint, "error", err)
		return map[string]map[string]any{}
	}
	byDay := make(map[string]map[string]any, len(items))
	for _, item := range items {
		if day, ok := item["day"].(string); ok && day != "" {
			byDay[day] = item
		}
	}
	return byDay
}

// sleepSessionsByWakeDate groups sleep sessions by the date they ended on,
// keeping the session with the latest bedtime_end for each wake date.
func (r *Runner) sleepSessionsByWakeDate(ctx context.Context, start, end string) map[string]map[string]any {
	items, err := r.oura.FetchRange(ctx, "sleep", start, end)
	if err != nil {
		r.logger.Warn("backfill endpoint failed", "endpoint", "sleep", "error", err)
		return map[string]map[string]any{}
	}
	byWake := make(map[string]map[string]any, len(items))
	for _, item := range items {
		bedtimeEnd, _ := item["bedtime_end"].(string)
		if bedtimeEnd == "" {
			continue
		}
		wakeDate, _, _ := strings.Cut(bedtimeEnd, "T")
		prev, ok := byWake[wakeDate]
		if !ok {
			byWake[wakeDate] = item
			continue
		}
		prevEnd, _ := prev["bedtime_end"].(string)
		if bedtimeEnd > prevEnd {
			byWake[wakeDate] = item
		}
	}
	return byWake
}

// workoutsByDay pulls the workout endpoint for the window and groups sessions
// into per-day lists.
func (r *Runner) workoutsByDay(ctx context.Context, start, end string) map[string][]map[string]any {
	items, err := r.oura.FetchRange(ctx, "workout", start, end)
	if err != nil {
		r.logger.Warn("backfill endpoint failed", "endpoint", "workout", "error", err)
		return map[string][]map[string]any{}
	}
	byDay := map[string][]map[string]any{}
	for _, item := range items {
		if day, ok := item["day"].(string); ok && day != "" {
			byDay[day] = append(byDay[day], item)
		}
	}
	return byDay
}

// daytimeHeartrate fetches heart-rate readings day by day. The endpoint takes
// datetime bounds rather than a date range, so each day is a separate call;
// only the raw retention window is worth the round trips.
func (r *Runner) daytimeHeartrate(ctx context.Context, today string, days int) map[string][]map[string]any {
	limit := days
	if limit > config.RawWindowDays {
		limit = config.RawWindowDays
	}
	byDay := map[string][]map[string]any{}
	for i := 0; i < limit; i++ {
		date, err := addDays(today, -i)
		if err != nil {
			continue
		}
		readings := r.oura.FetchDaytimeHeartrate(ctx, date)
		if len(readings) > 0 {
			byDay[date] = readings
		}
	}
	return byDay
}

func itemOrEmpty(byDay map[string]map[string]any, date string) []map[string]any {
	if item, ok := byDay[date]; ok {
		return []map[string]any{item}
	}
	return []map[string]any{}
}

// hasAnyValue reports whether the summary carries at least one concrete
// value. Extraction emits explicit nulls for present-but-empty fields, so an
// all-null summary means the day had no usable data.
func hasAnyValue(summary models.Summary) bool {
	for _, v := range summary {
		if v != nil {
			return true
		}
	}
	return false
}
