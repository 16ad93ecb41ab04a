// ABOUTME: Tool definitions and execution for the chat agent.
// ABOUTME: Seven read/write tools over the local health store.
package agent

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	json "github.com/goccy/go-json"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/models"
)

func agentTools() []anthropic.ToolUnionParam {
	tools := []anthropic.ToolParam{
		{
			Name:        "get_metrics",
			Description: anthropic.String("Get daily health metrics for a date range. Use for questions about sleep, HRV, readiness trends. Returns summary data for each day including sleep_score, hrv, deep_sleep_minutes, readiness, resting_hr, stress_high, recovery_high, workout info."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"start_date": map[string]interface{}{
						"type":        "string",
						"description": "Start date YYYY-MM-DD",
					},
					"end_date": map[string]interface{}{
						"type":        "string",
						"description": "End date YYYY-MM-DD (inclusive)",
					},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
		{
			Name:        "get_detailed_sleep",
			Description: anthropic.String("Get detailed sleep data for a specific night (HR/HRV trends through the night, sleep stages percentages, efficiency, latency). Use when user asks about a specific night's sleep quality."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"date": map[string]interface{}{
						"type":        "string",
						"description": "Date YYYY-MM-DD (the day you woke up)",
					},
				},
				Required: []string{"date"},
			},
		},
		{
			Name:        "get_interventions",
			Description: anthropic.String("Get logged interventions (supplements, activities, food, etc.) for a date range. Use for correlation analysis."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"start_date": map[string]interface{}{
						"type":        "string",
						"description": "Start date YYYY-MM-DD",
					},
					"end_date": map[string]interface{}{
						"type":        "string",
						"description": "End date YYYY-MM-DD (inclusive)",
					},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
		{
			Name:        "get_baselines",
			Description: anthropic.String("Get 60-day rolling baseline statistics (mean, std) for all metrics. Use to compare current values against personal averages."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{},
			},
		},
		{
			Name:        "log_intervention",
			Description: anthropic.String("Log an intervention the user reports (supplement, activity, food, etc). Use when user tells you they did/took something."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"raw_text": map[string]interface{}{
						"type":        "string",
						"description": "Original user input exactly as written",
					},
					"normalized": map[string]interface{}{
						"type":        "string",
						"description": "Cleaned/normalized version (e.g., 'Magnesium 400mg', 'Sauna 20 min')",
					},
				},
				Required: []string{"raw_text", "normalized"},
			},
		},
		{
			Name:        "get_today_interventions",
			Description: anthropic.String("Get all interventions logged today. Use to acknowledge what's been logged or answer questions about today's logging."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{},
			},
		},
		{
			Name:        "get_recent_briefs",
			Description: anthropic.String("Get recent morning briefs (last 3 days). Use when user asks about previous recommendations or analysis."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"days": map[string]interface{}{
						"type":        "integer",
						"description": "Number of days of briefs to retrieve (default 3, max 7)",
					},
				},
			},
		},
	}

	params := make([]anthropic.ToolUnionParam, len(tools))
	for i := range tools {
		tool := tools[i]
		params[i] = anthropic.ToolUnionParam{OfTool: &tool}
	}
	return params
}

// executeTool dispatches one tool call and returns its JSON result. A
// returned error means the call itself failed; expected conditions like
// "no data for that date" come back as JSON error payloads instead.
func (a *Agent) executeTool(name string, input interface{}) (string, error) {
	args, err := normalizeToolInput(input)
	if err != nil {
		return "", err
	}

	switch name {
	case "get_metrics":
		return a.getMetrics(args)
	case "get_detailed_sleep":
		return a.getDetailedSleep(args)
	case "get_interventions":
		return a.getInterventions(args)
	case "get_baselines":
		return a.getBaselines()
	case "log_intervention":
		return a.logIntervention(args)
	case "get_today_interventions":
		return a.getTodayInterventions()
	case "get_recent_briefs":
		return a.getRecentBriefs(args)
	default:
		return errorPayload(fmt.Sprintf("Unknown tool: %s", name)), nil
	}
}

func (a *Agent) getMetrics(args map[string]interface{}) (string, error) {
	start, err := stringArg(args, "start_date")
	if err != nil {
		return "", err
	}
	end, err := stringArg(args, "end_date")
	if err != nil {
		return "", err
	}

	records, err := a.store.LoadHistoricalMetrics(config.RawWindowDays)
	if err != nil {
		return "", err
	}

	// Summaries only, to keep the payload small.
	result := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if rec.Date < start || rec.Date > end {
			continue
		}
		result = append(result, map[string]any{"date": rec.Date, "summary": rec.Summary})
	}
	return marshalResult(result)
}

func (a *Agent) getDetailedSleep(args map[string]interface{}) (string, error) {
	date, err := stringArg(args, "date")
	if err != nil {
		return "", err
	}

	records, err := a.store.LoadHistoricalMetrics(config.RawWindowDays)
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if rec.Date != date {
			continue
		}
		if len(rec.DetailedSleep) == 0 {
			return errorPayload(fmt.Sprintf("No detailed sleep data for %s", date)), nil
		}
		return marshalResult(rec.DetailedSleep)
	}
	return errorPayload(fmt.Sprintf("No data found for %s", date)), nil
}

func (a *Agent) getInterventions(args map[string]interface{}) (string, error) {
	start, err := stringArg(args, "start_date")
	if err != nil {
		return "", err
	}
	end, err := stringArg(args, "end_date")
	if err != nil {
		return "", err
	}

	all, err := a.store.LoadRecentInterventions(config.RawWindowDays)
	if err != nil {
		return "", err
	}
	filtered := map[string][]models.Intervention{}
	for date, entries := range all {
		if date >= start && date <= end {
			filtered[date] = entries
		}
	}
	return marshalResult(filtered)
}

func (a *Agent) getBaselines() (string, error) {
	set, err := a.store.LoadBaselines()
	if err != nil {
		return "", err
	}

	// Strip the raw value arrays; mean and std are what the model needs.
	metrics := make(map[string]map[string]float64, len(set.Metrics))
	for name, m := range set.Metrics {
		metrics[name] = map[string]float64{"mean": m.Mean, "std": m.Std}
	}
	return marshalResult(map[string]any{
		"data_points":  set.DataPoints,
		"last_updated": set.LastUpdated,
		"metrics":      metrics,
	})
}

func (a *Agent) logIntervention(args map[string]interface{}) (string, error) {
	raw, err := stringArg(args, "raw_text")
	if err != nil {
		return "", err
	}
	normalized, err := stringArg(args, "normalized")
	if err != nil {
		return "", err
	}

	entry, err := a.store.SaveIntervention(raw, normalized)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(map[string]any{
		"status":     "logged",
		"time":       entry.Time,
		"normalized": normalized,
	})
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(data), nil
}

func (a *Agent) getTodayInterventions() (string, error) {
	entries, err := a.store.TodayInterventions()
	if err != nil {
		return "", err
	}
	if entries == nil {
		entries = []models.Intervention{}
	}
	return marshalResult(entries)
}

func (a *Agent) getRecentBriefs(args map[string]interface{}) (string, error) {
	days := intArg(args, "days", 3)
	if days > 7 {
		days = 7
	}

	briefs, err := a.store.LoadRecentBriefs(days)
	if err != nil {
		return "", err
	}
	if briefs == nil {
		briefs = []models.Brief{}
	}
	return marshalResult(briefs)
}

// normalizeToolInput converts whatever shape the SDK hands us into a plain
// argument map.
func normalizeToolInput(input interface{}) (map[string]interface{}, error) {
	switch v := input.(type) {
	case nil:
		return map[string]interface{}{}, nil
	case map[string]interface{}:
		return v, nil
	case json.RawMessage:
		return unmarshalArgs([]byte(v))
	case []byte:
		return unmarshalArgs(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("unexpected tool input type %T", input)
		}
		return unmarshalArgs(data)
	}
}

func unmarshalArgs(data []byte) (map[string]interface{}, error) {
	if len(data) == 0 {
		return map[string]interface{}{}, nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("parsing tool input: %w", err)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return v, nil
}

func intArg(args map[string]interface{}, key string, fallback int) int {
	switch n := args[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return fallback
}

func marshalResult(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(data), nil
}

func errorPayload(msg string) string {
	data, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error": "internal error"}`
	}
	return string(data)
}
