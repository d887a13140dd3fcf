// Package app contains the sync coordinator: the component that keeps the
// in-memory store, the persisted snapshot, and the attached view mutually
// consistent as workouts are logged, selected, and reloaded.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/waymark/internal/snapshot"
	"github.com/claude/waymark/internal/store"
	"github.com/claude/waymark/internal/workout"
	"github.com/google/uuid"
)

// ErrNoLocation is returned by Submit when no map click preceded it. A stale
// or duplicate submit must not create a workout.
var ErrNoLocation = errors.New("no pending map location")

// View receives rendering requests from the coordinator. Implementations are
// thin: they carry the request to whatever is drawing the UI.
type View interface {
	ShowForm()
	HideForm()
	RenderListItem(w *workout.Workout)
	RenderMarker(w *workout.Workout)
}

// Map receives navigation requests.
type Map interface {
	PanTo(c workout.Coords, zoom int)
}

// SubmitPayload is the raw form submission.
type SubmitPayload struct {
	Kind           string
	DistanceKm     float64
	DurationMin    float64
	CadenceSpm     float64
	ElevationGainM float64
}

// Coordinator orchestrates the store, the persistence adapter, and the view.
// All entry points serialize behind one mutex, preserving the
// run-to-completion model even though HTTP and MCP calls arrive on separate
// goroutines.
type Coordinator struct {
	mu      sync.Mutex
	pending *workout.Coords

	store *store.Store
	snaps *snapshot.Adapter
	view  View
	mapw  Map
	zoom  int
	log   *slog.Logger
}

// New creates a coordinator with an empty store and no pending location.
func New(snaps *snapshot.Adapter, view View, mapw Map, zoom int, log *slog.Logger) *Coordinator {
	return &Coordinator{
		store: store.New(),
		snaps: snaps,
		view:  view,
		mapw:  mapw,
		zoom:  zoom,
		log:   log,
	}
}

// Start loads the persisted snapshot into the store and replays a render
// request for every stored workout, in stored order.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	workouts, err := c.snaps.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading workouts: %w", err)
	}
	for _, w := range workouts {
		c.store.Append(w)
		c.view.RenderListItem(w)
		c.view.RenderMarker(w)
	}
	c.log.Info("workouts loaded", "count", c.store.Len())
	return nil
}

// MapClicked records the clicked coordinates as the pending location for the
// next submission and asks the view to show the input form.
func (c *Coordinator) MapClicked(coords workout.Coords) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = &coords
	c.view.ShowForm()
}

// Submit turns the pending location plus the form payload into a workout.
// On success the workout is appended, persisted, and rendered, and the
// pending slot is cleared. Validation failures leave the store and the
// pending slot untouched. The returned workout is a detached copy; the
// store keeps the only live entity.
func (c *Coordinator) Submit(ctx context.Context, p SubmitPayload) (workout.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return workout.Workout{}, ErrNoLocation
	}

	w, err := build(*c.pending, p)
	if err != nil {
		return workout.Workout{}, err
	}

	c.store.Append(w)
	c.persist(ctx)
	c.view.RenderListItem(w)
	c.view.RenderMarker(w)
	c.pending = nil
	c.view.HideForm()

	c.log.Info("workout logged", "id", w.ID, "kind", w.Kind)
	return *w, nil
}

// LogWorkoutAt is the one-shot path used by transports that already carry
// coordinates (MCP). It does not touch the pending slot, so it cannot
// disturb an in-flight map interaction.
func (c *Coordinator) LogWorkoutAt(ctx context.Context, coords workout.Coords, p SubmitPayload) (workout.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, err := build(coords, p)
	if err != nil {
		return workout.Workout{}, err
	}

	c.store.Append(w)
	c.persist(ctx)
	c.view.RenderListItem(w)
	c.view.RenderMarker(w)

	c.log.Info("workout logged", "id", w.ID, "kind", w.Kind)
	return *w, nil
}

// SelectWorkout resolves the id, bumps the workout's click counter,
// re-persists, and pans the map to the workout. An unknown id is a silent
// no-op.
func (c *Coordinator) SelectWorkout(ctx context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.store.FindByID(id)
	if !ok {
		return
	}
	w.Select()
	c.persist(ctx)
	c.mapw.PanTo(w.Coords, c.zoom)
}

// Workouts returns the current workout list in insertion order. Entries are
// value copies taken under the lock: live entities never escape the
// coordinator, so transports can read them on their own goroutines while
// SelectWorkout mutates the originals.
func (c *Coordinator) Workouts() []workout.Workout {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := c.store.All()
	out := make([]workout.Workout, 0, len(all))
	for _, w := range all {
		out = append(out, *w)
	}
	return out
}

// FindWorkout looks up a workout by id, returning a detached copy.
func (c *Coordinator) FindWorkout(id uuid.UUID) (workout.Workout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.store.FindByID(id)
	if !ok {
		return workout.Workout{}, false
	}
	return *w, true
}

// HasPending reports whether a map click is awaiting a submission.
func (c *Coordinator) HasPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// persist writes the snapshot. A write failure is degraded to a warning: the
// in-memory store stays authoritative for the session.
func (c *Coordinator) persist(ctx context.Context) {
	if err := c.snaps.Save(ctx, c.store); err != nil {
		c.log.Warn("snapshot save failed", "error", err)
	}
}

func build(coords workout.Coords, p SubmitPayload) (*workout.Workout, error) {
	kind, err := workout.ParseKind(p.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case workout.Running:
		return workout.NewRunning(coords, p.DistanceKm, p.DurationMin, p.CadenceSpm)
	default:
		return workout.NewCycling(coords, p.DistanceKm, p.DurationMin, p.ElevationGainM)
	}
}
