// ABOUTME: Morning pipeline: fetch, extract, persist, brief, deliver.
// ABOUTME: Saves everything it fetched before judging whether to brief.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harperreed/morning/internal/baseline"
	"github.com/harperreed/morning/internal/brief"
	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/extract"
	"github.com/harperreed/morning/internal/models"
	"github.com/harperreed/morning/internal/oura"
	"github.com/harperreed/morning/internal/storage"
	"github.com/harperreed/morning/internal/telegram"
)

// Status labels a morning run outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusDelayed Status = "delayed"
)

const recentBriefDays = 3

// Outcome reports what a morning run produced.
type Outcome struct {
	Status Status
	Date   string
	Reason string
	Brief  string
}

// Runner executes the scheduled pipelines over injected collaborators.
type Runner struct {
	oura     *oura.Client
	store    *storage.Store
	gen      *brief.Generator
	telegram *telegram.Client
	logger   *slog.Logger
}

// Option configures the runner.
type Option func(*Runner)

// WithLogger overrides the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner builds a Runner. A nil telegram client disables delivery; briefs
// are still generated and saved.
func NewRunner(ouraClient *oura.Client, store *storage.Store, gen *brief.Generator, tg *telegram.Client, opts ...Option) *Runner {
	r := &Runner{
		oura:     ouraClient,
		store:    store,
		gen:      gen,
		telegram: tg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MorningRun executes the daily pipeline for today's wake date. Fetched data
// is saved before the sleep-availability check, so a delayed run still keeps
// everything Oura returned. Failures are reported to Telegram before the
// error is returned.
func (r *Runner) MorningRun(ctx context.Context) (*Outcome, error) {
	outcome, err := r.morningRun(ctx)
	if err != nil {
		r.notifyFailure(fmt.Sprintf("Morning brief failed: %v", err))
		return nil, err
	}
	return outcome, nil
}

func (r *Runner) morningRun(ctx context.Context) (*Outcome, error) {
	today := config.Today()
	yesterday, err := addDays(today, -1)
	if err != nil {
		return nil, err
	}

	r.logger.Info("starting morning run", "date", today)

	sleepData, err := r.oura.FetchSleepData(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("fetching sleep data: %w", err)
	}
	sleepSummary := extract.SleepMetrics(sleepData)
	detailedSleep := extract.DetailedSleep(sleepData)

	activityData, err := r.oura.FetchActivityData(ctx, yesterday)
	if err != nil {
		return nil, fmt.Errorf("fetching activity data: %w", err)
	}
	activitySummary := extract.ActivityMetrics(activityData)
	detailedWorkouts := extract.DetailedWorkouts(activityData)

	// Partial data still has value; persist before the completeness check.
	if err := r.store.SaveDailyMetrics(today, sleepSummary, detailedSleep, nil, true); err != nil {
		return nil, fmt.Errorf("saving sleep metrics: %w", err)
	}
	if err := r.store.SaveDailyMetrics(yesterday, activitySummary, nil, detailedWorkouts, true); err != nil {
		return nil, fmt.Errorf("saving activity metrics: %w", err)
	}

	raw := make(map[string]any, len(sleepData)+len(activityData))
	for k, v := range sleepData {
		raw[k] = v
	}
	for k, v := range activityData {
		raw[k] = v
	}
	if err := r.store.SaveRaw(today, raw); err != nil {
		return nil, fmt.Errorf("saving raw snapshot: %w", err)
	}

	if len(sleepData["sleep"]) == 0 && len(sleepData["daily_sleep"]) == 0 {
		reason := fmt.Sprintf("Sleep data for %s not yet available. Oura may not have synced.", today)
		r.logger.Warn("morning brief delayed", "date", today)
		r.send(ctx, fmt.Sprintf("⏳ *Morning Brief Delayed*\n\n%s\n\nPlease sync your Oura ring, then use /regen-brief to generate the brief.", reason))
		return &Outcome{Status: StatusDelayed, Date: today, Reason: "sleep_data_not_available"}, nil
	}

	summary := make(models.Summary, len(sleepSummary)+len(activitySummary))
	for k, v := range sleepSummary {
		summary[k] = v
	}
	for k, v := range activitySummary {
		summary[k] = v
	}
	if len(summary) == 0 {
		return nil, errors.New("no metrics extracted from Oura data")
	}

	// Context is assembled against the pre-update baselines so the brief
	// compares today to a window that does not yet include it.
	baselines, err := r.store.LoadBaselines()
	if err != nil {
		return nil, err
	}
	history, err := r.store.LoadHistoricalMetrics(config.RawWindowDays)
	if err != nil {
		return nil, err
	}
	interventions, err := r.store.LoadRecentInterventions(config.RawWindowDays)
	if err != nil {
		return nil, err
	}
	recentBriefs, err := r.store.LoadRecentBriefs(recentBriefDays)
	if err != nil {
		return nil, err
	}

	r.logger.Info("loaded context", "history_days", len(history), "intervention_days", len(interventions))

	content, err := r.gen.Generate(ctx, brief.Input{
		Date:             today,
		Summary:          summary,
		DetailedSleep:    detailedSleep,
		DetailedWorkouts: detailedWorkouts,
		Baselines:        baselines,
		History:          derefRecords(history),
		Interventions:    interventions,
		RecentBriefs:     recentBriefs,
	})
	if err != nil {
		return nil, err
	}

	if err := r.store.SaveBrief(today, content); err != nil {
		return nil, fmt.Errorf("saving brief: %w", err)
	}

	baseline.Update(baselines, today, summary)
	if err := r.store.SaveBaselines(baselines); err != nil {
		return nil, err
	}

	if removed, err := r.store.PruneOldData(); err != nil {
		r.logger.Warn("prune failed", "error", err)
	} else if removed > 0 {
		r.logger.Info("pruned old data", "files", removed)
	}

	r.send(ctx, fmt.Sprintf("*Morning Brief — %s*\n\n%s", today, content))

	return &Outcome{Status: StatusSuccess, Date: today, Brief: content}, nil
}

// send delivers a message if a telegram client is configured. Delivery
// failures are logged, not fatal: the brief is already on disk.
func (r *Runner) send(ctx context.Context, message string) {
	if r.telegram == nil {
		return
	}
	if err := r.telegram.SendMessage(ctx, message); err != nil {
		r.logger.Warn("failed to send telegram message", "error", err)
	}
}

// notifyFailure reports a run failure over Telegram. The run context may
// already be canceled, so the notification gets its own.
func (r *Runner) notifyFailure(message string) {
	if r.telegram == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	r.send(ctx, fmt.Sprintf("*Oura Agent Error*\n\n`%s`", message))
}

func derefRecords(records []*models.DailyRecord) []models.DailyRecord {
	out := make([]models.DailyRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}

func addDays(date string, days int) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", date, err)
	}
	return t.AddDate(0, 0, days).Format("2006-01-02"), nil
}
