package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/waymark/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) workoutLog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts := h.ds.Workouts()
	// Initialized so an empty log serializes as [], matching the HTTP API.
	out := make([]map[string]any, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, encodeWorkout(&w))
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) summary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type kindTotals struct {
		Count       int     `json:"count"`
		DistanceKm  float64 `json:"distanceKm"`
		DurationMin float64 `json:"durationMin"`
	}

	totals := map[string]*kindTotals{
		string(workout.Running): {},
		string(workout.Cycling): {},
	}
	workouts := h.ds.Workouts()
	for _, w := range workouts {
		t := totals[string(w.Kind)]
		t.Count++
		t.DistanceKm += w.DistanceKm
		t.DurationMin += w.DurationMin
	}

	data, err := json.Marshal(map[string]any{
		"totalWorkouts": len(workouts),
		"byKind":        totals,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
