// ABOUTME: High-level Oura fetch operations grouped per daily run phase.
// ABOUTME: Endpoints are fetched concurrently; failures degrade to empty lists.
package oura

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/extract"
)

// FetchSleepData pulls the sleep-side endpoints for a wake date: daily sleep
// and readiness summaries for that date plus the detailed session that ended
// on that morning.
func (c *Client) FetchSleepData(ctx context.Context, wakeDate string) (extract.SourceData, error) {
	dayBefore, err := addDays(wakeDate, -1)
	if err != nil {
		return nil, err
	}
	dayAfter, err := addDays(wakeDate, 1)
	if err != nil {
		return nil, err
	}

	var dailySleep, dailyReadiness, sessions []map[string]any

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dailySleep = c.fetchTolerant(gctx, "daily_sleep", dateQuery(wakeDate, wakeDate))
		return nil
	})
	g.Go(func() error {
		dailyReadiness = c.fetchTolerant(gctx, "daily_readiness", dateQuery(wakeDate, wakeDate))
		return nil
	})
	g.Go(func() error {
		// Sessions are listed by their start day, so a night ending on
		// wakeDate can be filed under the previous date.
		sessions = c.fetchTolerant(gctx, "sleep", dateQuery(dayBefore, dayAfter))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := extract.SourceData{
		"daily_sleep":     dailySleep,
		"daily_readiness": dailyReadiness,
	}
	if session, ok := extract.SelectSleepSession(sessions, wakeDate); ok {
		data["sleep"] = []map[string]any{session}
	} else {
		data["sleep"] = []map[string]any{}
	}
	return data, nil
}

// FetchActivityData pulls the activity-side endpoints for a completed day:
// activity and stress summaries, workouts, and daytime heart rate readings.
func (c *Client) FetchActivityData(ctx context.Context, activityDate string) (extract.SourceData, error) {
	nextDay, err := addDays(activityDate, 1)
	if err != nil {
		return nil, err
	}

	var activity, stress, workouts, heartrate []map[string]any

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		activity = c.fetchTolerant(gctx, "daily_activity", dateQuery(activityDate, activityDate))
		return nil
	})
	g.Go(func() error {
		stress = c.fetchTolerant(gctx, "daily_stress", dateQuery(activityDate, activityDate))
		return nil
	})
	g.Go(func() error {
		// The workout endpoint treats end_date as exclusive.
		workouts = c.fetchTolerant(gctx, "workout", dateQuery(activityDate, nextDay))
		return nil
	})
	g.Go(func() error {
		heartrate = c.FetchDaytimeHeartrate(gctx, activityDate)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return extract.SourceData{
		"daily_activity": activity,
		"daily_stress":   stress,
		"workouts":       workouts,
		"daytime_hr":     heartrate,
	}, nil
}

// FetchDailyData pulls sleep and activity endpoints together for a single
// backfill day. The wake date drives sleep endpoints; contextDate drives
// activity endpoints and defaults to the wake date. Daytime heart rate is
// skipped: the endpoint only serves recent history.
func (c *Client) FetchDailyData(ctx context.Context, wakeDate, contextDate string) (extract.SourceData, error) {
	if contextDate == "" {
		contextDate = wakeDate
	}
	dayBefore, err := addDays(wakeDate, -1)
	if err != nil {
		return nil, err
	}
	dayAfter, err := addDays(wakeDate, 1)
	if err != nil {
		return nil, err
	}
	nextDay, err := addDays(contextDate, 1)
	if err != nil {
		return nil, err
	}

	var dailySleep, dailyReadiness, sessions, activity, stress, workouts []map[string]any

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dailySleep = c.fetchTolerant(gctx, "daily_sleep", dateQuery(wakeDate, wakeDate))
		return nil
	})
	g.Go(func() error {
		dailyReadiness = c.fetchTolerant(gctx, "daily_readiness", dateQuery(wakeDate, wakeDate))
		return nil
	})
	g.Go(func() error {
		sessions = c.fetchTolerant(gctx, "sleep", dateQuery(dayBefore, dayAfter))
		return nil
	})
	g.Go(func() error {
		activity = c.fetchTolerant(gctx, "daily_activity", dateQuery(contextDate, contextDate))
		return nil
	})
	g.Go(func() error {
		stress = c.fetchTolerant(gctx, "daily_stress", dateQuery(contextDate, contextDate))
		return nil
	})
	g.Go(func() error {
		workouts = c.fetchTolerant(gctx, "workout", dateQuery(contextDate, nextDay))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := extract.SourceData{
		"daily_sleep":     dailySleep,
		"daily_readiness": dailyReadiness,
		"daily_activity":  activity,
		"daily_stress":    stress,
		"workouts":        workouts,
	}
	if session, ok := extract.SelectSleepSession(sessions, wakeDate); ok {
		data["sleep"] = []map[string]any{session}
	} else {
		data["sleep"] = []map[string]any{}
	}
	return data, nil
}

// FetchDaytimeHeartrate pulls heart rate readings for a local calendar day
// and drops readings recorded during sleep. The endpoint is not retried; it
// serves large payloads and a miss only costs one day of daytime HR.
func (c *Client) FetchDaytimeHeartrate(ctx context.Context, date string) []map[string]any {
	day, err := time.ParseInLocation("2006-01-02", date, config.Location())
	if err != nil {
		c.logger.Warn("invalid heartrate date", "date", date, "error", err)
		return []map[string]any{}
	}

	query := url.Values{}
	query.Set("start_datetime", day.Format(time.RFC3339))
	query.Set("end_datetime", day.AddDate(0, 0, 1).Add(-time.Second).Format(time.RFC3339))

	readings, err := c.doList(ctx, "heartrate", query)
	if err != nil {
		c.logger.Warn("failed to fetch heartrate", "date", date, "error", err)
		return []map[string]any{}
	}

	daytime := []map[string]any{}
	for _, r := range readings {
		if src, _ := r["source"].(string); src != "sleep" {
			daytime = append(daytime, r)
		}
	}
	return daytime
}

// FetchRange pulls one endpoint's raw items for a date range, retrying
// transient failures. Unlike the per-day helpers it surfaces errors; bulk
// callers decide what a missing endpoint costs.
func (c *Client) FetchRange(ctx context.Context, endpoint, start, end string) ([]map[string]any, error) {
	return c.fetchList(ctx, endpoint, dateQuery(start, end))
}

func dateQuery(start, end string) url.Values {
	q := url.Values{}
	q.Set("start_date", start)
	q.Set("end_date", end)
	return q
}

func addDays(date string, days int) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", date, err)
	}
	return t.AddDate(0, 0, days).Format("2006-01-02"), nil
}
