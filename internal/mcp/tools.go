package mcp

import (
	"context"
	"time"

	"github.com/claude/waymark/internal/app"
	"github.com/claude/waymark/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List every logged workout in insertion order. Returns coordinates, distance, duration, kind-specific metrics, and the derived pace or speed."),
	mcp.WithString("kind", mcp.Description("Filter by workout kind"), mcp.Enum("running", "cycling")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get a single workout by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (UUID)")),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Log a new workout at the given map coordinates. Running workouts require cadence_spm; cycling workouts require elevation_gain_m."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Workout kind"), mcp.Enum("running", "cycling")),
	mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude")),
	mcp.WithNumber("lng", mcp.Required(), mcp.Description("Longitude")),
	mcp.WithNumber("distance_km", mcp.Required(), mcp.Description("Distance in kilometres (must be positive)")),
	mcp.WithNumber("duration_min", mcp.Required(), mcp.Description("Duration in minutes (must be positive)")),
	mcp.WithNumber("cadence_spm", mcp.Description("Running cadence in steps per minute")),
	mcp.WithNumber("elevation_gain_m", mcp.Description("Cycling elevation gain in metres (may be zero or negative)")),
)

var toolSelectWorkout = mcp.NewTool("select_workout",
	mcp.WithDescription("Select a workout: bumps its interaction counter and pans the map view to it. Unknown IDs are a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (UUID)")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kindFilter := req.GetString("kind", "")

	workouts := h.ds.Workouts()
	// Initialized so an empty log serializes as [], matching the HTTP API.
	out := make([]map[string]any, 0, len(workouts))
	for _, w := range workouts {
		if kindFilter != "" && string(w.Kind) != kindFilter {
			continue
		}
		out = append(out, encodeWorkout(&w))
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout ID: " + err.Error()), nil
	}

	w, ok := h.ds.FindWorkout(id)
	if !ok {
		return mcp.NewToolResultError("workout not found"), nil
	}

	result, err := mcp.NewToolResultJSON(encodeWorkout(&w))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("kind parameter is required"), nil
	}
	lat, err := req.RequireFloat("lat")
	if err != nil {
		return mcp.NewToolResultError("lat parameter is required"), nil
	}
	lng, err := req.RequireFloat("lng")
	if err != nil {
		return mcp.NewToolResultError("lng parameter is required"), nil
	}
	distance, err := req.RequireFloat("distance_km")
	if err != nil {
		return mcp.NewToolResultError("distance_km parameter is required"), nil
	}
	duration, err := req.RequireFloat("duration_min")
	if err != nil {
		return mcp.NewToolResultError("duration_min parameter is required"), nil
	}

	payload := app.SubmitPayload{
		Kind:        kind,
		DistanceKm:  distance,
		DurationMin: duration,
	}
	// The kind-specific metric is mandatory for its kind: defaulting a
	// missing one to zero would silently log a flat ride or a zero-cadence
	// run.
	switch kind {
	case string(workout.Running):
		cadence, err := req.RequireFloat("cadence_spm")
		if err != nil {
			return mcp.NewToolResultError("cadence_spm is required for running workouts"), nil
		}
		payload.CadenceSpm = cadence
	case string(workout.Cycling):
		gain, err := req.RequireFloat("elevation_gain_m")
		if err != nil {
			return mcp.NewToolResultError("elevation_gain_m is required for cycling workouts"), nil
		}
		payload.ElevationGainM = gain
	}

	w, err := h.ds.LogWorkoutAt(ctx, workout.Coords{Lat: lat, Lng: lng}, payload)
	if err != nil {
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError("logging failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(encodeWorkout(&w))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) selectWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout ID: " + err.Error()), nil
	}

	h.ds.SelectWorkout(ctx, id)

	result, err := mcp.NewToolResultJSON(map[string]string{"status": "selected"})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func encodeWorkout(w *workout.Workout) map[string]any {
	out := map[string]any{
		"id":               w.ID.String(),
		"createdAt":        w.CreatedAt.Format(time.RFC3339),
		"coordinates":      [2]float64{w.Coords.Lat, w.Coords.Lng},
		"distanceKm":       w.DistanceKm,
		"durationMin":      w.DurationMin,
		"kind":             string(w.Kind),
		"interactionCount": w.Clicks,
		"description":      w.Description(),
	}
	switch w.Kind {
	case workout.Running:
		out["cadenceSpm"] = w.CadenceSpm
		out["paceMinPerKm"] = w.PaceMinPerKm()
	case workout.Cycling:
		out["elevationGainM"] = w.ElevationGainM
		out["speedKmPerH"] = w.SpeedKmPerH()
	}
	return out
}
