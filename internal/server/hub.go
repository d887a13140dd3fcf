package server

import (
	"sync"
	"time"

	"github.com/claude/waymark/internal/workout"
)

// ViewEvent is one rendering or navigation request carried to the browser
// over the event stream.
type ViewEvent struct {
	Type       string       `json:"type"` // list_item | marker | show_form | hide_form | pan
	Workout    *WorkoutJSON `json:"workout,omitempty"`
	Coords     *[2]float64  `json:"coords,omitempty"`
	Zoom       int          `json:"zoom,omitempty"`
	PopupText  string       `json:"popupText,omitempty"`
	PopupClass string       `json:"popupClass,omitempty"`
}

// ViewHub implements the coordinator's View and Map interfaces by
// broadcasting view events to every connected browser. Slow subscribers are
// skipped rather than blocking the coordinator.
type ViewHub struct {
	mu   sync.Mutex
	subs map[chan ViewEvent]struct{}
}

// NewViewHub creates an empty hub.
func NewViewHub() *ViewHub {
	return &ViewHub{subs: make(map[chan ViewEvent]struct{})}
}

// Subscribe registers a new event channel. The returned cancel func must be
// called when the subscriber disconnects.
func (h *ViewHub) Subscribe() (<-chan ViewEvent, func()) {
	ch := make(chan ViewEvent, 64)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *ViewHub) broadcast(ev ViewEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ShowForm implements app.View.
func (h *ViewHub) ShowForm() {
	h.broadcast(ViewEvent{Type: "show_form"})
}

// HideForm implements app.View.
func (h *ViewHub) HideForm() {
	h.broadcast(ViewEvent{Type: "hide_form"})
}

// RenderListItem implements app.View.
func (h *ViewHub) RenderListItem(w *workout.Workout) {
	wj := encodeWorkout(w)
	h.broadcast(ViewEvent{Type: "list_item", Workout: &wj})
}

// RenderMarker implements app.View. The popup text and style class mirror
// the list entry so markers stay recognizable per kind.
func (h *ViewHub) RenderMarker(w *workout.Workout) {
	wj := encodeWorkout(w)
	h.broadcast(ViewEvent{
		Type:       "marker",
		Workout:    &wj,
		PopupText:  w.Description(),
		PopupClass: string(w.Kind) + "-popup",
	})
}

// PanTo implements app.Map.
func (h *ViewHub) PanTo(c workout.Coords, zoom int) {
	coords := [2]float64{c.Lat, c.Lng}
	h.broadcast(ViewEvent{Type: "pan", Coords: &coords, Zoom: zoom})
}

// WorkoutJSON is the API representation of a workout, including the derived
// metric appropriate to its kind and the display description.
type WorkoutJSON struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	Coordinates    [2]float64 `json:"coordinates"`
	DistanceKm     float64    `json:"distanceKm"`
	DurationMin    float64    `json:"durationMin"`
	Kind           string     `json:"kind"`
	CadenceSpm     *float64   `json:"cadenceSpm,omitempty"`
	ElevationGainM *float64   `json:"elevationGainM,omitempty"`
	Clicks         int        `json:"interactionCount"`
	PaceMinPerKm   *float64   `json:"paceMinPerKm,omitempty"`
	SpeedKmPerH    *float64   `json:"speedKmPerH,omitempty"`
	Description    string     `json:"description"`
}

func encodeWorkout(w *workout.Workout) WorkoutJSON {
	wj := WorkoutJSON{
		ID:          w.ID.String(),
		CreatedAt:   w.CreatedAt,
		Coordinates: [2]float64{w.Coords.Lat, w.Coords.Lng},
		DistanceKm:  w.DistanceKm,
		DurationMin: w.DurationMin,
		Kind:        string(w.Kind),
		Clicks:      w.Clicks,
		Description: w.Description(),
	}
	switch w.Kind {
	case workout.Running:
		cadence := w.CadenceSpm
		pace := w.PaceMinPerKm()
		wj.CadenceSpm = &cadence
		wj.PaceMinPerKm = &pace
	case workout.Cycling:
		gain := w.ElevationGainM
		speed := w.SpeedKmPerH()
		wj.ElevationGainM = &gain
		wj.SpeedKmPerH = &speed
	}
	return wj
}
