package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/waymark/internal/app"
	"github.com/claude/waymark/internal/snapshot"
	"github.com/google/uuid"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	medium, err := snapshot.OpenFileMedium(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { medium.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewViewHub()
	coord := app.New(snapshot.NewAdapter(medium, log), hub, hub, 13, log)
	return New(coord, hub, 13, log)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestListWorkoutsEmpty verifies the list endpoint returns an empty JSON
// array, not null, on a fresh store.
func TestListWorkoutsEmpty(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/workouts", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

// TestClickThenSubmitFlow walks the browser flow: map click, then a running
// submission, and checks the created workout's derived pace.
func TestClickThenSubmitFlow(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/map/click", `{"lat":40,"lng":-73}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("click status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/workouts",
		`{"kind":"running","distanceKm":5,"durationMin":25,"cadenceSpm":180}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var wj WorkoutJSON
	if err := json.NewDecoder(rec.Body).Decode(&wj); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if wj.Kind != "running" {
		t.Errorf("kind = %q, want running", wj.Kind)
	}
	if wj.PaceMinPerKm == nil || *wj.PaceMinPerKm != 5 {
		t.Errorf("pace = %v, want 5", wj.PaceMinPerKm)
	}
	if wj.Coordinates != [2]float64{40, -73} {
		t.Errorf("coordinates = %v, want [40 -73]", wj.Coordinates)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/v1/workouts", "")
	var all []WorkoutJSON
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("list has %d workouts, want 1", len(all))
	}
}

// TestSubmitWithoutClickConflicts verifies that a submit with no pending map
// click is refused with 409 and creates nothing.
func TestSubmitWithoutClickConflicts(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/workouts",
		`{"kind":"running","distanceKm":5,"durationMin":25,"cadenceSpm":180}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

// TestSubmitInvalidRejected verifies that validation failures surface as 422
// with the form error message, leaving the store unchanged.
func TestSubmitInvalidRejected(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/v1/map/click", `{"lat":40,"lng":-73}`)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/workouts",
		`{"kind":"running","distanceKm":0,"durationMin":25,"cadenceSpm":180}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/v1/workouts", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("store not empty after rejected submission: %s", got)
	}
}

// TestSelectUnknownIsNoOp verifies that selecting an unknown id returns 204:
// a stray click is indistinguishable from a hit, per the not-found taxonomy.
func TestSelectUnknownIsNoOp(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/workouts/"+uuid.NewString()+"/select", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

// TestSelectMalformedID verifies that a non-UUID id is a 400, not a no-op —
// it can only come from a broken client.
func TestSelectMalformedID(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/workouts/not-a-uuid/select", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// TestDeleteNotAllowed verifies that deletion is refused — workouts are
// append-only in this feature set.
func TestDeleteNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodDelete, "/api/v1/workouts/"+uuid.NewString(), "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

// TestConfigEndpoint verifies the frontend bootstrap config.
func TestConfigEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var cfg map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if cfg["defaultZoom"] != float64(13) {
		t.Errorf("defaultZoom = %v, want 13", cfg["defaultZoom"])
	}
}
