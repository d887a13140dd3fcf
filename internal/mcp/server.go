// Package mcp exposes the workout log to AI assistants over the Model
// Context Protocol: query tools, a logging tool, and summary resources.
package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/waymark/internal/app"
	"github.com/claude/waymark/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DataSource abstracts the coordinator for MCP handlers. Workouts are
// returned by value so handlers never share mutable state with the
// coordinator's store.
type DataSource interface {
	Workouts() []workout.Workout
	FindWorkout(id uuid.UUID) (workout.Workout, bool)
	LogWorkoutAt(ctx context.Context, coords workout.Coords, p app.SubmitPayload) (workout.Workout, error)
	SelectWorkout(ctx context.Context, id uuid.UUID)
}

// Compile-time check: *app.Coordinator satisfies DataSource.
var _ DataSource = (*app.Coordinator)(nil)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Waymark", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Waymark workout log. List, inspect, and log outdoor running and cycling workouts pinned to map coordinates. Pace and speed are derived from distance and duration."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolSelectWorkout, Handler: h.selectWorkout},
	)

	s.AddResources(
		server.ServerResource{Resource: resWorkoutLog, Handler: h.workoutLog},
		server.ServerResource{Resource: resSummary, Handler: h.summary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resWorkoutLog = mcp.NewResource(
	"waymark://workouts",
	"Workout Log",
	mcp.WithResourceDescription("Every logged workout in insertion order, with coordinates, derived metrics, and descriptions"),
	mcp.WithMIMEType("application/json"),
)

var resSummary = mcp.NewResource(
	"waymark://summary",
	"Training Summary",
	mcp.WithResourceDescription("Aggregate totals: workout counts, distance and duration per kind"),
	mcp.WithMIMEType("application/json"),
)
