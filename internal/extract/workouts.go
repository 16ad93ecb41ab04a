// ABOUTME: Detailed workout extraction and duration arithmetic.
// ABOUTME: Preserves session order and aggregates across multiple workouts.
package extract

import (
	"time"
)

// DetailedWorkouts extracts every workout session with full context, in the
// order the API returned them.
func DetailedWorkouts(data SourceData) []map[string]any {
	workouts := data["workouts"]
	if len(workouts) == 0 {
		return []map[string]any{}
	}

	detailed := make([]map[string]any, 0, len(workouts))
	for _, w := range workouts {
		detailed = append(detailed, map[string]any{
			"activity":         w["activity"],
			"label":            w["label"],
			"intensity":        w["intensity"],
			"start_time":       w["start_datetime"],
			"end_time":         w["end_datetime"],
			"duration_minutes": float64(workoutDurationMinutes(w)),
			"calories":         w["calories"],
			"distance_meters":  w["distance"],
			"source":           w["source"],
		})
	}
	return detailed
}

// workoutDurationMinutes computes whole minutes between a workout's start and
// end timestamps, truncating partial minutes. Missing or unparseable
// timestamps yield 0.
func workoutDurationMinutes(w map[string]any) int {
	start, ok1 := w["start_datetime"].(string)
	end, ok2 := w["end_datetime"].(string)
	if !ok1 || !ok2 || start == "" || end == "" {
		return 0
	}
	startT, err1 := parseWorkoutTime(start)
	endT, err2 := parseWorkoutTime(end)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(endT.Sub(startT).Seconds() / 60)
}

func parseWorkoutTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	// Some sources omit the zone offset
	return time.Parse("2006-01-02T15:04:05", s)
}
