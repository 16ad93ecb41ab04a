// ABOUTME: Summary metric extraction from raw Oura API payloads.
// ABOUTME: Pure functions; sources map to flat metric keys with explicit nulls.
package extract

import (
	"math"
	"strings"

	"github.com/harperreed/morning/internal/models"
)

// SourceData maps a logical source name (daily_sleep, sleep, daily_readiness,
// daily_activity, daily_stress, workouts, daytime_hr) to its raw records as
// decoded JSON. Absent or failed sources are empty lists.
type SourceData map[string][]map[string]any

// Metrics extracts the full summary for a day: the sleep/readiness blocks
// plus the activity/stress/workout/heart-rate blocks.
func Metrics(data SourceData) models.Summary {
	out := SleepMetrics(data)
	for k, v := range ActivityMetrics(data) {
		out[k] = v
	}
	return out
}

// SleepMetrics extracts the wake-date metrics: sleep score, the selected
// session's stage durations and vitals, and readiness. Sources that are
// absent contribute no keys; fields missing within a present source become
// explicit nulls.
func SleepMetrics(data SourceData) models.Summary {
	out := models.Summary{}

	if len(data["daily_sleep"]) > 0 {
		out["sleep_score"] = data["daily_sleep"][0]["score"]
	}

	if len(data["sleep"]) > 0 {
		session := data["sleep"][0]
		out["deep_sleep_minutes"] = floorMinutes(session, "deep_sleep_duration")
		out["light_sleep_minutes"] = floorMinutes(session, "light_sleep_duration")
		out["rem_sleep_minutes"] = floorMinutes(session, "rem_sleep_duration")
		out["total_sleep_minutes"] = floorMinutes(session, "total_sleep_duration")
		out["sleep_efficiency"] = session["efficiency"]
		out["hrv"] = session["average_hrv"]
		out["avg_hr"] = session["average_heart_rate"]
		out["avg_breath"] = session["average_breath"]
		out["latency_minutes"] = floorMinutes(session, "latency")
		out["restless_periods"] = session["restless_periods"]
		out["resting_hr"] = session["lowest_heart_rate"]
	}

	if len(data["daily_readiness"]) > 0 {
		readiness := data["daily_readiness"][0]
		out["readiness"] = readiness["score"]
		out["temperature_deviation"] = readiness["temperature_deviation"]
	}

	return out
}

// ActivityMetrics extracts the calendar-date metrics: activity, stress,
// workouts, and daytime heart rate.
func ActivityMetrics(data SourceData) models.Summary {
	out := models.Summary{}

	if len(data["daily_activity"]) > 0 {
		activity := data["daily_activity"][0]
		out["activity_score"] = activity["score"]
		out["steps"] = activity["steps"]
	}

	// Stress durations arrive in seconds
	if len(data["daily_stress"]) > 0 {
		stress := data["daily_stress"][0]
		out["stress_high"] = roundMinutes(stress, "stress_high")
		out["recovery_high"] = roundMinutes(stress, "recovery_high")
		out["stress_day_summary"] = stress["day_summary"]
	}

	if workouts := data["workouts"]; len(workouts) > 0 {
		out["workout_count"] = float64(len(workouts))

		var calories float64
		for _, w := range workouts {
			if c, ok := number(w, "calories"); ok {
				calories += c
			}
		}
		out["workout_calories"] = calories

		var minutes float64
		for _, w := range workouts {
			minutes += float64(workoutDurationMinutes(w))
		}
		out["workout_minutes"] = minutes

		activities := []string{}
		for _, w := range workouts {
			if name, ok := w["activity"].(string); ok && name != "" {
				activities = append(activities, name)
			}
		}
		out["workout_activities"] = activities
	}

	if readings := data["daytime_hr"]; len(readings) > 0 {
		var bpms []float64
		for _, r := range readings {
			if bpm, ok := number(r, "bpm"); ok && bpm != 0 {
				bpms = append(bpms, bpm)
			}
		}
		// A day with zero valid samples produces no heart-rate keys at all
		if len(bpms) > 0 {
			out["daytime_hr_avg"] = round1(mean(bpms))
			out["daytime_hr_min"] = minOf(bpms)
			out["daytime_hr_max"] = maxOf(bpms)
			out["daytime_hr_samples"] = float64(len(bpms))
		}
	}

	return out
}

// SelectSleepSession picks the main sleep session for a wake-date: the last
// session in list order whose type is "long_sleep" and whose bedtime_end
// falls on the wake-date. Naps, rest periods, and ring-removed fragments
// never qualify; no qualifying session means no sleep data for that date, not
// a fallback to a stale session.
func SelectSleepSession(sessions []map[string]any, wakeDate string) (map[string]any, bool) {
	for i := len(sessions) - 1; i >= 0; i-- {
		session := sessions[i]
		bedtimeEnd, _ := session["bedtime_end"].(string)
		sessionType, _ := session["type"].(string)
		if sessionType == "long_sleep" && strings.Contains(bedtimeEnd, wakeDate) {
			return session, true
		}
	}
	return nil, false
}

// number returns m[key] as a float64 when it is numeric.
func number(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// floorMinutes converts a seconds field to whole minutes (floor division).
// Missing, null, or zero seconds yield an explicit null.
func floorMinutes(m map[string]any, key string) any {
	if sec, ok := number(m, key); ok && sec != 0 {
		return math.Floor(sec / 60)
	}
	return nil
}

// roundMinutes converts a seconds field to rounded minutes. Missing, null,
// or zero seconds yield an explicit null.
func roundMinutes(m map[string]any, key string) any {
	if sec, ok := number(m, key); ok && sec != 0 {
		return math.Round(sec / 60)
	}
	return nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
