// ABOUTME: MCP resource implementations for the morning data store.
// ABOUTME: Provides brief/latest, baselines, and metrics/today resources.
package mcp

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// morning://brief/latest - the most recent morning brief
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "morning://brief/latest",
		Name:        "Latest Morning Brief",
		Description: "The most recent morning brief as Markdown",
		MIMEType:    "text/markdown",
	}, s.handleLatestBriefResource)

	// morning://baselines - full rolling baseline set
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "morning://baselines",
		Name:        "Rolling Baselines",
		Description: "60-day rolling baseline statistics for all tracked metrics",
		MIMEType:    "application/json",
	}, s.handleBaselinesResource)

	// morning://metrics/today - today's daily record
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "morning://metrics/today",
		Name:        "Today's Metrics",
		Description: "Today's daily record with summary and detailed sleep",
		MIMEType:    "application/json",
	}, s.handleTodayMetricsResource)
}

// Resource handlers

func (s *Server) handleLatestBriefResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "morning://brief/latest",
			MIMEType: "text/markdown",
			Text:     s.store.LatestBrief(),
		}},
	}, nil
}

func (s *Server) handleBaselinesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	set, err := s.store.LoadBaselines()
	if err != nil {
		return nil, fmt.Errorf("failed to load baselines: %w", err)
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal baselines: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "morning://baselines",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleTodayMetricsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := config.Today()

	var payload any
	rec, err := s.store.LoadDailyRecord(today)
	switch {
	case err == nil:
		payload = rec
	case errors.Is(err, storage.ErrNotFound):
		payload = map[string]interface{}{
			"date":    today,
			"message": "No data for today yet.",
		}
	default:
		return nil, fmt.Errorf("failed to load today's record: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "morning://metrics/today",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
