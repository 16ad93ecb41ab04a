// ABOUTME: Detailed sleep extraction: stage timeline, intraday series stats,
// ABOUTME: fragmentation indicators, and readiness contributors.
package extract

import "math"

// DetailedSleep extracts the rich nightly structure from the selected sleep
// session: bedtime window, per-stage minutes, HR/HRV series statistics,
// decoded stage percentages, and readiness contributors. Returns an empty map
// when no session is present.
func DetailedSleep(data SourceData) map[string]any {
	if len(data["sleep"]) == 0 {
		return map[string]any{}
	}
	session := data["sleep"][0]

	detailed := map[string]any{
		"bedtime_start":       session["bedtime_start"],
		"bedtime_end":         session["bedtime_end"],
		"time_in_bed_minutes": wholeMinutes(session, "time_in_bed"),
		"total_sleep_minutes": wholeMinutes(session, "total_sleep_duration"),
		"awake_minutes":       wholeMinutes(session, "awake_time"),
		"latency_minutes":     wholeMinutes(session, "latency"),
		"deep_sleep_minutes":  wholeMinutes(session, "deep_sleep_duration"),
		"light_sleep_minutes": wholeMinutes(session, "light_sleep_duration"),
		"rem_sleep_minutes":   wholeMinutes(session, "rem_sleep_duration"),
		"efficiency":          session["efficiency"],
		"restless_periods":    session["restless_periods"],
		"average_hr":          session["average_heart_rate"],
		"lowest_hr":           session["lowest_heart_rate"],
		"average_hrv":         session["average_hrv"],
		"average_breath":      session["average_breath"],
	}

	seriesStats(detailed, "hr", seriesItems(session, "heart_rate"))
	seriesStats(detailed, "hrv", seriesItems(session, "hrv"))

	phases, _ := session["sleep_phase_5_min"].(string)
	if phases != "" {
		var deep, light, rem, awake int
		for _, c := range phases {
			switch c {
			case '1':
				deep++
			case '2':
				light++
			case '3':
				rem++
			case '4':
				awake++
			}
		}
		// Denominator counts only classified intervals, so the four
		// percentages sum to ~100 within rounding
		total := deep + light + rem + awake
		if total > 0 {
			detailed["deep_sleep_pct"] = round1(100 * float64(deep) / float64(total))
			detailed["light_sleep_pct"] = round1(100 * float64(light) / float64(total))
			detailed["rem_sleep_pct"] = round1(100 * float64(rem) / float64(total))
			detailed["awake_pct"] = round1(100 * float64(awake) / float64(total))
		}

		// Fragmentation index: state changes across the raw code string
		transitions := 0
		for i := 1; i < len(phases); i++ {
			if phases[i] != phases[i-1] {
				transitions++
			}
		}
		detailed["phase_transitions"] = float64(transitions)
	}

	if readiness, ok := session["readiness"].(map[string]any); ok && len(readiness) > 0 {
		detailed["readiness_score"] = readiness["score"]
		detailed["temperature_deviation"] = readiness["temperature_deviation"]
		detailed["temperature_trend"] = readiness["temperature_trend_deviation"]

		contributors, _ := readiness["contributors"].(map[string]any)
		if contributors == nil {
			contributors = map[string]any{}
		}
		detailed["contributor_activity_balance"] = contributors["activity_balance"]
		detailed["contributor_body_temperature"] = contributors["body_temperature"]
		detailed["contributor_hrv_balance"] = contributors["hrv_balance"]
		detailed["contributor_previous_day_activity"] = contributors["previous_day_activity"]
		detailed["contributor_previous_night"] = contributors["previous_night"]
		detailed["contributor_recovery_index"] = contributors["recovery_index"]
		detailed["contributor_resting_heart_rate"] = contributors["resting_heart_rate"]
		detailed["contributor_sleep_balance"] = contributors["sleep_balance"]
	}

	return detailed
}

// wholeMinutes converts a seconds field to floor minutes, treating missing or
// null as zero. Unlike the summary fields, the detailed structure always
// carries a number here.
func wholeMinutes(m map[string]any, key string) float64 {
	sec, _ := number(m, key)
	return math.Floor(sec / 60)
}

// seriesItems pulls the items list out of a nested time-series object,
// dropping null samples.
func seriesItems(session map[string]any, key string) []float64 {
	series, ok := session[key].(map[string]any)
	if !ok {
		return nil
	}
	items, ok := series["items"].([]any)
	if !ok {
		return nil
	}
	var values []float64
	for _, item := range items {
		if v, ok := item.(float64); ok {
			values = append(values, v)
		}
	}
	return values
}

// seriesStats records min/max/range and first-third vs last-third averages
// for an intraday series. A rising last third of heart rate relative to the
// first third is a fragmented-sleep signal the brief generator keys on.
func seriesStats(out map[string]any, prefix string, values []float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := minOf(values), maxOf(values)
	out[prefix+"_min"] = lo
	out[prefix+"_max"] = hi
	out[prefix+"_range"] = hi - lo

	third := len(values) / 3
	if third > 0 {
		out[prefix+"_first_third_avg"] = round1(mean(values[:third]))
		out[prefix+"_last_third_avg"] = round1(mean(values[len(values)-third:]))
	}
}
