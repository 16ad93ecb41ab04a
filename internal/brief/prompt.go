// ABOUTME: Assembles the morning brief user prompt from one day's context.
// ABOUTME: Sectioned layout with JSON blocks plus compact derived summaries.
package brief

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/models"
)

// Input carries everything the brief prompt needs for one morning.
type Input struct {
	Date             string
	Summary          models.Summary
	DetailedSleep    map[string]any
	DetailedWorkouts []map[string]any
	Baselines        *models.BaselineSet
	History          []models.DailyRecord
	Interventions    map[string][]models.Intervention
	RecentBriefs     []models.Brief
}

const sectionRule = "═══════════════════════════════════════════════════════════════════════════════"

const taskBlock = `1. Analyze last night's detailed sleep data - look at HR/HRV trends, sleep architecture, timing
2. Compare today's metrics against 60-day baselines (calculate z-scores where possible)
3. Look for patterns in the 28-day historical data
4. Correlate any interventions with outcomes (e.g., did alcohol correlate with poor sleep?)
5. Generate the brief in the exact format specified in your instructions

Be specific with numbers. Use status emojis: ✅ (normal), ⚠️ (notable deviation), 🔴 (significant concern).
`

// BuildPrompt renders the user prompt for one morning's brief.
func BuildPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate my morning optimization brief for %s.\n", in.Date)

	writeSection(&b, "LAST NIGHT'S DETAILED SLEEP DATA")
	writeJSONBlock(&b, in.DetailedSleep)
	b.WriteString("\nKey observations from the data:\n")
	fmt.Fprintf(&b, "- Bedtime: %s → %s\n",
		field(in.DetailedSleep, "bedtime_start"), field(in.DetailedSleep, "bedtime_end"))
	fmt.Fprintf(&b, "- Time in bed: %s min, actual sleep: %s min\n",
		field(in.DetailedSleep, "time_in_bed_minutes"), field(in.DetailedSleep, "total_sleep_minutes"))
	fmt.Fprintf(&b, "- Sleep stages: Deep %s%%, Light %s%%, REM %s%%\n",
		field(in.DetailedSleep, "deep_sleep_pct"), field(in.DetailedSleep, "light_sleep_pct"), field(in.DetailedSleep, "rem_sleep_pct"))
	fmt.Fprintf(&b, "- HR trend: first third avg %s → last third avg %s bpm\n",
		field(in.DetailedSleep, "hr_first_third_avg"), field(in.DetailedSleep, "hr_last_third_avg"))
	fmt.Fprintf(&b, "- HRV trend: first third avg %s → last third avg %s ms\n",
		field(in.DetailedSleep, "hrv_first_third_avg"), field(in.DetailedSleep, "hrv_last_third_avg"))
	fmt.Fprintf(&b, "- Phase transitions (sleep fragmentation indicator): %s\n",
		field(in.DetailedSleep, "phase_transitions"))

	writeSection(&b, "YESTERDAY'S WORKOUTS")
	writeWorkouts(&b, in.DetailedWorkouts)

	writeSection(&b, "TODAY'S SUMMARY METRICS")
	writeJSONBlock(&b, in.Summary)

	writeSection(&b, "BASELINES (rolling 60-day averages, updated daily)")
	if in.Baselines != nil {
		writeJSONBlock(&b, in.Baselines.Metrics)
		fmt.Fprintf(&b, "Data points in baseline: %d\n", in.Baselines.DataPoints)
		fmt.Fprintf(&b, "Dates covered: %s\n", strings.Join(in.Baselines.Dates, ", "))
	} else {
		b.WriteString("No baselines available yet.\n")
	}

	writeSection(&b, "HISTORICAL METRICS (last 28 days)")
	writeHistory(&b, in.History)

	writeSection(&b, "INTERVENTIONS (last 28 days)")
	writeInterventions(&b, in.Interventions)

	writeSection(&b, "RECENT BRIEFS (for continuity)")
	briefs := in.RecentBriefs
	if len(briefs) > 3 {
		briefs = briefs[:3]
	}
	if len(briefs) == 0 {
		b.WriteString("No previous briefs available.\n")
	}
	for _, prior := range briefs {
		fmt.Fprintf(&b, "\n### %s\n%s\n", prior.Date, prior.Content)
	}

	writeSection(&b, "YOUR TASK")
	b.WriteString(taskBlock)

	return b.String()
}

func writeSection(b *strings.Builder, title string) {
	b.WriteString("\n")
	b.WriteString(sectionRule)
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(sectionRule)
	b.WriteString("\n\n")
}

func writeJSONBlock(b *strings.Builder, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		b.WriteString("```json\n{}\n```\n")
		return
	}
	fmt.Fprintf(b, "```json\n%s\n```\n", data)
}

// field renders a detailed-sleep value, or N/A when missing or null.
func field(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", v)
}

// sval renders a summary value, or "-" when missing or null.
func sval(s models.Summary, key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return "-"
	}
	return fmt.Sprintf("%v", v)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func writeWorkouts(b *strings.Builder, workouts []map[string]any) {
	if len(workouts) == 0 {
		b.WriteString("No workouts recorded yesterday.\n")
		return
	}

	writeJSONBlock(b, workouts)
	b.WriteString("\n")

	totalMins := 0
	totalCals := 0.0
	var activities []string
	for _, w := range workouts {
		if mins, ok := asFloat(w["duration_minutes"]); ok {
			totalMins += int(mins)
		}
		if cals, ok := asFloat(w["calories"]); ok {
			totalCals += cals
		}
		if act, ok := w["activity"].(string); ok && act != "" {
			activities = append(activities, act)
		}
	}
	fmt.Fprintf(b, "Summary: %d workout(s), %d total minutes, %.0f calories\n", len(workouts), totalMins, totalCals)
	fmt.Fprintf(b, "Activities: %s\n", strings.Join(activities, ", "))

	for i, w := range workouts {
		activity, _ := w["activity"].(string)
		label := ""
		if l, ok := w["label"].(string); ok && l != "" {
			label = fmt.Sprintf(" (%s)", l)
		}
		intensity := "unknown"
		if v, ok := w["intensity"].(string); ok && v != "" {
			intensity = v
		}
		mins := 0
		if v, ok := asFloat(w["duration_minutes"]); ok {
			mins = int(v)
		}
		cals := 0.0
		if v, ok := asFloat(w["calories"]); ok {
			cals = v
		}
		fmt.Fprintf(b, "  %d. %s%s: %dmin, %s intensity, %.0f cal\n", i+1, activity, label, mins, intensity, cals)
	}
}

func writeHistory(b *strings.Builder, history []models.DailyRecord) {
	if len(history) == 0 {
		b.WriteString("No historical data available yet (building baseline).\n")
		return
	}

	days := history
	if len(days) > config.BriefHistoryDays {
		days = days[:config.BriefHistoryDays]
	}
	for _, day := range days {
		s := day.Summary
		line := fmt.Sprintf("\n%s: Sleep=%s, Readiness=%s, HRV=%s, Deep=%smin, RHR=%s",
			day.Date, sval(s, "sleep_score"), sval(s, "readiness"), sval(s, "hrv"),
			sval(s, "deep_sleep_minutes"), sval(s, "resting_hr"))
		if v, ok := s["stress_high"]; ok && v != nil {
			line += fmt.Sprintf(", Stress=%vmin, Recovery=%smin", v, sval(s, "recovery_high"))
		}
		if v, ok := s.Number("workout_minutes"); ok && v != 0 {
			line += fmt.Sprintf(", Workout=%vmin/%scal", v, sval(s, "workout_calories"))
		}
		if v, ok := s.Number("daytime_hr_avg"); ok && v != 0 {
			line += fmt.Sprintf(", DayHR=%vbpm", v)
		}
		b.WriteString(line)
	}
	b.WriteString("\n")
}

func writeInterventions(b *strings.Builder, interventions map[string][]models.Intervention) {
	if len(interventions) == 0 {
		b.WriteString("No interventions logged yet.\n")
		return
	}

	dates := make([]string, 0, len(interventions))
	for d := range interventions {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	for _, d := range dates {
		for _, e := range interventions[d] {
			display := e.Cleaned
			if display == "" {
				display = e.Raw
			}
			if display == "" {
				display = "unknown"
			}
			fmt.Fprintf(b, "%s: %s\n", d, display)
		}
	}
}
