// ABOUTME: DailyRecord model: one day's summary metrics plus detailed sub-structures.
// ABOUTME: Records are keyed by wake-date and carry merge-friendly empty defaults.
package models

// Summary maps metric names to extracted values. A nil value is an explicit
// null: the source was present but the field was empty. An absent key means
// the source itself was absent. Values are numbers for scalar metrics,
// strings for bedtime boundaries, and string lists for workout activities.
type Summary map[string]any

// DailyRecord is one day's health data. Date is the wake-date (the morning
// the night's sleep ended), regardless of which calendar day contributed the
// activity portion.
type DailyRecord struct {
	Date             string           `json:"date"`
	Summary          Summary          `json:"summary"`
	DetailedSleep    map[string]any   `json:"detailed_sleep"`
	DetailedWorkouts []map[string]any `json:"detailed_workouts"`
}

// NewDailyRecord returns a record with empty, non-nil fields so the persisted
// form always carries all four keys.
func NewDailyRecord(date string) *DailyRecord {
	return &DailyRecord{
		Date:             date,
		Summary:          Summary{},
		DetailedSleep:    map[string]any{},
		DetailedWorkouts: []map[string]any{},
	}
}

// MergeSummary overlays the supplied summary onto the record's summary at the
// key level: supplied keys overwrite, existing keys the caller did not supply
// are preserved.
func (r *DailyRecord) MergeSummary(s Summary) {
	if r.Summary == nil {
		r.Summary = Summary{}
	}
	for k, v := range s {
		r.Summary[k] = v
	}
}

// Normalize replaces nil fields with their empty defaults. Records read from
// hand-edited or partial files pass through here before use.
func (r *DailyRecord) Normalize() {
	if r.Summary == nil {
		r.Summary = Summary{}
	}
	if r.DetailedSleep == nil {
		r.DetailedSleep = map[string]any{}
	}
	if r.DetailedWorkouts == nil {
		r.DetailedWorkouts = []map[string]any{}
	}
}

// Number returns the summary value for key as a float64. The second return
// reports whether the key was present with a numeric value; explicit nulls
// and non-numeric values (bedtimes, activity lists) report false.
func (s Summary) Number(key string) (float64, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
