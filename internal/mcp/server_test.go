package mcp

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/waymark/internal/app"
	"github.com/claude/waymark/internal/workout"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSource is an in-memory DataSource for handler tests.
type fakeSource struct {
	workouts []*workout.Workout
	logged   []app.SubmitPayload
	selected []uuid.UUID
}

func (f *fakeSource) Workouts() []workout.Workout {
	out := make([]workout.Workout, 0, len(f.workouts))
	for _, w := range f.workouts {
		out = append(out, *w)
	}
	return out
}

func (f *fakeSource) FindWorkout(id uuid.UUID) (workout.Workout, bool) {
	for _, w := range f.workouts {
		if w.ID == id {
			return *w, true
		}
	}
	return workout.Workout{}, false
}

func (f *fakeSource) LogWorkoutAt(ctx context.Context, coords workout.Coords, p app.SubmitPayload) (workout.Workout, error) {
	f.logged = append(f.logged, p)
	w, err := workout.NewRunning(coords, p.DistanceKm, p.DurationMin, p.CadenceSpm)
	if err != nil {
		return workout.Workout{}, err
	}
	f.workouts = append(f.workouts, w)
	return *w, nil
}

func (f *fakeSource) SelectWorkout(ctx context.Context, id uuid.UUID) {
	f.selected = append(f.selected, id)
}

func testHandlers(t *testing.T, ws ...*workout.Workout) (*handlers, *fakeSource) {
	t.Helper()
	src := &fakeSource{workouts: ws}
	return &handlers{ds: src, log: slog.New(slog.NewTextHandler(io.Discard, nil))}, src
}

func mustRunning(t *testing.T) *workout.Workout {
	t.Helper()
	w, err := workout.NewRunning(workout.Coords{Lat: 40, Lng: -73}, 5, 25, 180)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// TestEncodeWorkoutRunning verifies the tool payload for a running workout:
// derived pace present, cycling fields absent.
func TestEncodeWorkoutRunning(t *testing.T) {
	w := mustRunning(t)
	out := encodeWorkout(w)

	if out["kind"] != "running" {
		t.Errorf("kind = %v, want running", out["kind"])
	}
	if out["paceMinPerKm"] != 5.0 {
		t.Errorf("paceMinPerKm = %v, want 5", out["paceMinPerKm"])
	}
	if _, ok := out["speedKmPerH"]; ok {
		t.Error("running payload carries speedKmPerH")
	}
	if _, ok := out["elevationGainM"]; ok {
		t.Error("running payload carries elevationGainM")
	}
	if out["description"] != w.Description() {
		t.Errorf("description = %v, want %q", out["description"], w.Description())
	}
}

// TestEncodeWorkoutCycling verifies the cycling payload mirror-image.
func TestEncodeWorkoutCycling(t *testing.T) {
	w, err := workout.NewCycling(workout.Coords{Lat: 48, Lng: 11}, 20, 60, 150)
	if err != nil {
		t.Fatal(err)
	}
	out := encodeWorkout(w)

	if out["speedKmPerH"] != 20.0 {
		t.Errorf("speedKmPerH = %v, want 20", out["speedKmPerH"])
	}
	if _, ok := out["cadenceSpm"]; ok {
		t.Error("cycling payload carries cadenceSpm")
	}
}

// TestSummaryResource verifies the aggregate resource: counts and distance
// totals per kind.
func TestSummaryResource(t *testing.T) {
	run := mustRunning(t)
	ride, err := workout.NewCycling(workout.Coords{Lat: 48, Lng: 11}, 20, 60, 150)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := testHandlers(t, run, ride)

	contents, err := h.summary(context.Background(), readResourceRequest("waymark://summary"))
	if err != nil {
		t.Fatalf("summary error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	text := resourceText(t, contents[0])
	for _, want := range []string{`"totalWorkouts":2`, `"running"`, `"cycling"`} {
		if !strings.Contains(text, want) {
			t.Errorf("summary %q missing %q", text, want)
		}
	}
}

// TestWorkoutLogResourceEmpty verifies the log resource serializes an empty
// store as an empty array, not null.
func TestWorkoutLogResourceEmpty(t *testing.T) {
	h, _ := testHandlers(t)

	contents, err := h.workoutLog(context.Background(), readResourceRequest("waymark://workouts"))
	if err != nil {
		t.Fatalf("workoutLog error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	if got := resourceText(t, contents[0]); got != "[]" {
		t.Errorf("empty log = %q, want []", got)
	}
}

// TestListWorkoutsEmptyArray verifies the list tool returns [] on an empty
// store, matching the HTTP list endpoint.
func TestListWorkoutsEmptyArray(t *testing.T) {
	h, _ := testHandlers(t)

	res, err := h.listWorkouts(context.Background(), callToolRequest(nil))
	if err != nil {
		t.Fatalf("listWorkouts error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %v", res.Content)
	}
	if got := toolResultText(t, res); got != "[]" {
		t.Errorf("empty list = %q, want []", got)
	}
}

// TestLogWorkoutRequiresKindMetric verifies that the kind-specific metric
// cannot be omitted: a cycling call without elevation_gain_m (or a running
// call without cadence_spm) is refused instead of defaulting to zero.
func TestLogWorkoutRequiresKindMetric(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"cycling without elevation", map[string]any{
			"kind": "cycling", "lat": 48.0, "lng": 11.0,
			"distance_km": 20.0, "duration_min": 60.0,
		}},
		{"running without cadence", map[string]any{
			"kind": "running", "lat": 40.0, "lng": -73.0,
			"distance_km": 5.0, "duration_min": 25.0,
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, src := testHandlers(t)

			res, err := h.logWorkout(context.Background(), callToolRequest(tc.args))
			if err != nil {
				t.Fatalf("logWorkout error: %v", err)
			}
			if !res.IsError {
				t.Error("call succeeded without the kind-specific metric")
			}
			if len(src.logged) != 0 {
				t.Errorf("logged %d workouts, want 0", len(src.logged))
			}
		})
	}
}

func readResourceRequest(uri string) mcp.ReadResourceRequest {
	var req mcp.ReadResourceRequest
	req.Params.URI = uri
	return req
}

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func toolResultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func resourceText(t *testing.T, c mcp.ResourceContents) string {
	t.Helper()
	tc, ok := c.(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents type = %T, want TextResourceContents", c)
	}
	return tc.Text
}
