// ABOUTME: Rolling baseline engine: per-metric mean/std over a sliding window.
// ABOUTME: Pure update logic with correction semantics; callers own persistence.
package baseline

import (
	"math"
	"time"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/models"
)

// Defaults returns a fresh BaselineSet seeded with population-typical priors
// for every tracked metric. Deviation context runs against these stubs until
// real observations accumulate.
func Defaults() *models.BaselineSet {
	return &models.BaselineSet{
		Dates:      []string{},
		WindowDays: config.BaselineWindowDays,
		Metrics: map[string]*models.MetricBaseline{
			"sleep_score":         {Mean: 75, Std: 10, Values: []float64{}},
			"hrv":                 {Mean: 45, Std: 10, Values: []float64{}},
			"deep_sleep_minutes":  {Mean: 70, Std: 15, Values: []float64{}},
			"light_sleep_minutes": {Mean: 200, Std: 30, Values: []float64{}},
			"rem_sleep_minutes":   {Mean: 90, Std: 20, Values: []float64{}},
			"sleep_efficiency":    {Mean: 85, Std: 5, Values: []float64{}},
			"latency_minutes":     {Mean: 15, Std: 10, Values: []float64{}},
			"total_sleep_minutes": {Mean: 420, Std: 45, Values: []float64{}},
			"resting_hr":          {Mean: 55, Std: 5, Values: []float64{}},
			"daytime_hr_avg":      {Mean: 70, Std: 8, Values: []float64{}},
			"readiness":           {Mean: 75, Std: 10, Values: []float64{}},
			"stress_high":         {Mean: 60, Std: 30, Values: []float64{}},
			"recovery_high":       {Mean: 120, Std: 45, Values: []float64{}},
			"workout_minutes":     {Mean: 30, Std: 20, Values: []float64{}},
			"workout_calories":    {Mean: 200, Std: 150, Values: []float64{}},
		},
	}
}

// Update folds one day's summary metrics into the rolling window. Calling it
// again for a date already in the window first removes that date's prior
// contribution, so re-ingestion corrects rather than duplicates. Summary keys
// not tracked in the set are ignored; null or non-numeric values leave the
// metric untouched.
func Update(set *models.BaselineSet, date string, summary models.Summary) {
	window := set.WindowDays
	if window <= 0 {
		window = config.BaselineWindowDays
	}

	// Correction: a metric's history only shrinks when it actually reaches
	// back to the replaced date's index
	for i, d := range set.Dates {
		if d != date {
			continue
		}
		for _, mb := range set.Metrics {
			if len(mb.Values) > i {
				mb.Values = append(mb.Values[:i], mb.Values[i+1:]...)
			}
		}
		set.Dates = append(set.Dates[:i], set.Dates[i+1:]...)
		break
	}

	set.Dates = append(set.Dates, date)
	if len(set.Dates) > window {
		set.Dates = set.Dates[len(set.Dates)-window:]
	}

	for key, mb := range set.Metrics {
		value, ok := summary.Number(key)
		if !ok {
			continue
		}
		mb.Values = append(mb.Values, value)
		if len(mb.Values) > window {
			mb.Values = mb.Values[len(mb.Values)-window:]
		}
		if len(mb.Values) >= 2 {
			mb.Mean = round1(mean(mb.Values))
			mb.Std = round1(sampleStd(mb.Values))
		} else {
			mb.Mean = mb.Values[0]
			mb.Std = 0
		}
	}

	ts := time.Now().In(config.Location()).Format(time.RFC3339)
	set.LastUpdated = &ts
	set.DataPoints = len(set.Dates)
}

// Migrate fills in metrics that exist in the current defaults but are missing
// from a persisted set, so older baseline files pick up newly tracked metrics
// without losing accumulated history.
func Migrate(set *models.BaselineSet) {
	defaults := Defaults()
	if set.Metrics == nil {
		set.Metrics = map[string]*models.MetricBaseline{}
	}
	for key, stub := range defaults.Metrics {
		if _, ok := set.Metrics[key]; !ok {
			set.Metrics[key] = stub
		}
	}
	if set.Dates == nil {
		set.Dates = []string{}
	}
	if set.WindowDays <= 0 {
		set.WindowDays = config.BaselineWindowDays
	}
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the sample (N-1) standard deviation.
func sampleStd(values []float64) float64 {
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
