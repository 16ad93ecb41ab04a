// ABOUTME: MCP tool implementations over the morning data store.
// ABOUTME: Exposes the same seven tools the chat agent uses.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// get_metrics
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_metrics",
		Description: "Get daily health metrics for a date range. Use for questions about sleep, HRV, readiness trends. Returns summary data for each day including sleep_score, hrv, deep_sleep_minutes, readiness, resting_hr, stress_high, recovery_high, workout info.",
	}, s.handleGetMetrics)

	// get_detailed_sleep
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_detailed_sleep",
		Description: "Get detailed sleep data for a specific night (HR/HRV trends through the night, sleep stages percentages, efficiency, latency). Use when user asks about a specific night's sleep quality.",
	}, s.handleGetDetailedSleep)

	// get_interventions
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_interventions",
		Description: "Get logged interventions (supplements, activities, food, etc.) for a date range. Use for correlation analysis.",
	}, s.handleGetInterventions)

	// get_baselines
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_baselines",
		Description: "Get 60-day rolling baseline statistics (mean, std) for all metrics. Use to compare current values against personal averages.",
	}, s.handleGetBaselines)

	// log_intervention
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_intervention",
		Description: "Log an intervention the user reports (supplement, activity, food, etc). Use when user tells you they did/took something.",
	}, s.handleLogIntervention)

	// get_today_interventions
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_today_interventions",
		Description: "Get all interventions logged today. Use to acknowledge what's been logged or answer questions about today's logging.",
	}, s.handleGetTodayInterventions)

	// get_recent_briefs
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_recent_briefs",
		Description: "Get recent morning briefs (last 3 days). Use when user asks about previous recommendations or analysis.",
	}, s.handleGetRecentBriefs)
}

// Tool input/output types

type dateRangeInput struct {
	StartDate string `json:"start_date" jsonschema:"description=Start date YYYY-MM-DD,required"`
	EndDate   string `json:"end_date" jsonschema:"description=End date YYYY-MM-DD (inclusive),required"`
}

type dateInput struct {
	Date string `json:"date" jsonschema:"description=Date YYYY-MM-DD (the day you woke up),required"`
}

type noInput struct{}

type logInterventionInput struct {
	RawText    string `json:"raw_text" jsonschema:"description=Original user input exactly as written,required"`
	Normalized string `json:"normalized" jsonschema:"description=Cleaned/normalized version (e.g. 'Magnesium 400mg'),required"`
}

type recentBriefsInput struct {
	Days int `json:"days,omitempty" jsonschema:"description=Number of days of briefs to retrieve (default 3, max 7)"`
}

type baselineOutput struct {
	DataPoints  int                           `json:"data_points"`
	LastUpdated *string                       `json:"last_updated"`
	WindowDays  int                           `json:"window_days"`
	Metrics     map[string]map[string]float64 `json:"metrics"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleGetMetrics(ctx context.Context, req *mcp.CallToolRequest, input dateRangeInput) (*mcp.CallToolResult, any, error) {
	records, err := s.store.LoadHistoricalMetrics(config.RawWindowDays)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load metrics: %w", err)
	}

	result := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if rec.Date < input.StartDate || rec.Date > input.EndDate {
			continue
		}
		result = append(result, map[string]any{"date": rec.Date, "summary": rec.Summary})
	}

	if len(result) == 0 {
		return nil, map[string]interface{}{"message": "No metrics found in that range."}, nil
	}
	return nil, result, nil
}

func (s *Server) handleGetDetailedSleep(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	records, err := s.store.LoadHistoricalMetrics(config.RawWindowDays)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load metrics: %w", err)
	}

	for _, rec := range records {
		if rec.Date != input.Date {
			continue
		}
		if len(rec.DetailedSleep) == 0 {
			return nil, nil, fmt.Errorf("no detailed sleep data for %s", input.Date)
		}
		return nil, rec.DetailedSleep, nil
	}
	return nil, nil, fmt.Errorf("no data found for %s", input.Date)
}

func (s *Server) handleGetInterventions(ctx context.Context, req *mcp.CallToolRequest, input dateRangeInput) (*mcp.CallToolResult, any, error) {
	all, err := s.store.LoadRecentInterventions(config.RawWindowDays)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load interventions: %w", err)
	}

	filtered := map[string][]models.Intervention{}
	for date, entries := range all {
		if date >= input.StartDate && date <= input.EndDate {
			filtered[date] = entries
		}
	}

	if len(filtered) == 0 {
		return nil, map[string]interface{}{"message": "No interventions found in that range."}, nil
	}
	return nil, filtered, nil
}

func (s *Server) handleGetBaselines(ctx context.Context, req *mcp.CallToolRequest, input noInput) (*mcp.CallToolResult, baselineOutput, error) {
	set, err := s.store.LoadBaselines()
	if err != nil {
		return nil, baselineOutput{}, fmt.Errorf("failed to load baselines: %w", err)
	}

	// Mean and std only; the raw value arrays are an implementation detail.
	metrics := make(map[string]map[string]float64, len(set.Metrics))
	for name, m := range set.Metrics {
		metrics[name] = map[string]float64{"mean": m.Mean, "std": m.Std}
	}

	return nil, baselineOutput{
		DataPoints:  set.DataPoints,
		LastUpdated: set.LastUpdated,
		WindowDays:  set.WindowDays,
		Metrics:     metrics,
	}, nil
}

func (s *Server) handleLogIntervention(ctx context.Context, req *mcp.CallToolRequest, input logInterventionInput) (*mcp.CallToolResult, simpleOutput, error) {
	if input.RawText == "" {
		return nil, simpleOutput{}, fmt.Errorf("raw_text is required")
	}

	entry, err := s.store.SaveIntervention(input.RawText, input.Normalized)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to log intervention: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Logged at %s: %s", entry.Time, entry.Cleaned),
	}, nil
}

func (s *Server) handleGetTodayInterventions(ctx context.Context, req *mcp.CallToolRequest, input noInput) (*mcp.CallToolResult, any, error) {
	entries, err := s.store.TodayInterventions()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load interventions: %w", err)
	}

	if len(entries) == 0 {
		return nil, map[string]interface{}{"message": "No interventions logged today."}, nil
	}
	return nil, entries, nil
}

func (s *Server) handleGetRecentBriefs(ctx context.Context, req *mcp.CallToolRequest, input recentBriefsInput) (*mcp.CallToolResult, any, error) {
	days := input.Days
	if days <= 0 {
		days = 3
	}
	if days > 7 {
		days = 7
	}

	briefs, err := s.store.LoadRecentBriefs(days)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load briefs: %w", err)
	}

	if len(briefs) == 0 {
		return nil, map[string]interface{}{"message": "No briefs found."}, nil
	}
	return nil, briefs, nil
}
