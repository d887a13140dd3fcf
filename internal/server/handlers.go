package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/waymark/internal/app"
	"github.com/claude/waymark/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts := s.coord.Workouts()
	out := make([]WorkoutJSON, 0, len(workouts))
	for _, wk := range workouts {
		out = append(out, encodeWorkout(&wk))
	}
	writeJSON(w, http.StatusOK, out)
}

type mapClickRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var req mapClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	s.coord.MapClicked(workout.Coords{Lat: req.Lat, Lng: req.Lng})
	w.WriteHeader(http.StatusNoContent)
}

type submitRequest struct {
	Kind           string  `json:"kind"`
	DistanceKm     float64 `json:"distanceKm"`
	DurationMin    float64 `json:"durationMin"`
	CadenceSpm     float64 `json:"cadenceSpm"`
	ElevationGainM float64 `json:"elevationGainM"`
}

func (s *Server) handleSubmitWorkout(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	wk, err := s.coord.Submit(r.Context(), app.SubmitPayload{
		Kind:           req.Kind,
		DistanceKm:     req.DistanceKm,
		DurationMin:    req.DurationMin,
		CadenceSpm:     req.CadenceSpm,
		ElevationGainM: req.ElevationGainM,
	})
	switch {
	case errors.Is(err, app.ErrNoLocation):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "click the map before submitting"})
		return
	case errors.Is(err, workout.ErrInvalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	case err != nil:
		s.log.Error("submit failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, encodeWorkout(&wk))
}

func (s *Server) handleSelectWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	// An unknown id is deliberately indistinguishable from a hit: stray
	// clicks are a no-op, not an error.
	s.coord.SelectWorkout(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"defaultZoom": s.zoom})
}

func (s *Server) handleNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "workouts cannot be edited or deleted"})
}

// handleEvents streams view events to the browser as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel := s.hub.Subscribe()
	defer cancel()

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				s.log.Error("encoding view event", "error", err)
				continue
			}
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing useful left to do.
		return
	}
}
