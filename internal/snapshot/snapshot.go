// Package snapshot persists the workout store as a full-replace JSON snapshot
// in a named storage slot, and reconstructs typed workout entities from it on
// startup.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/waymark/internal/store"
	"github.com/claude/waymark/internal/workout"
	"github.com/google/uuid"
)

// slotKey is the single named slot holding the workout snapshot.
const slotKey = "workouts"

// envelopeVersion is bumped when the record layout changes incompatibly.
// Unknown versions are treated as corrupt and load as empty.
const envelopeVersion = 1

// envelope is the stored snapshot format.
type envelope struct {
	Version  int      `json:"version"`
	Workouts []record `json:"workouts"`
}

// record is the wire form of one workout. Derived metrics and the description
// are recomputable and never stored. Kind-specific extras are pointers so a
// genuine zero elevation gain survives the round trip.
type record struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	Coordinates    [2]float64 `json:"coordinates"`
	DistanceKm     float64    `json:"distanceKm"`
	DurationMin    float64    `json:"durationMin"`
	Kind           string     `json:"kind"`
	CadenceSpm     *float64   `json:"cadenceSpm,omitempty"`
	ElevationGainM *float64   `json:"elevationGainM,omitempty"`
	Clicks         int        `json:"interactionCount"`
}

// Adapter serializes the store through a Medium. It never retains workout
// state of its own.
type Adapter struct {
	medium Medium
	log    *slog.Logger
}

// NewAdapter creates an adapter over the given medium.
func NewAdapter(medium Medium, log *slog.Logger) *Adapter {
	return &Adapter{medium: medium, log: log}
}

// Save writes the full ordered workout list, replacing any prior snapshot.
func (a *Adapter) Save(ctx context.Context, s *store.Store) error {
	workouts := s.All()
	env := envelope{
		Version:  envelopeVersion,
		Workouts: make([]record, 0, len(workouts)),
	}
	for _, w := range workouts {
		env.Workouts = append(env.Workouts, encode(w))
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := a.medium.Write(ctx, slotKey, string(data)); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot and rebuilds typed workout entities in stored
// order. An absent, unparsable, or unknown-version snapshot loads as an
// empty list with no error — storage trouble is never fatal. Individual
// records that fail reconstruction are skipped with a warning.
func (a *Adapter) Load(ctx context.Context) ([]*workout.Workout, error) {
	body, ok, err := a.medium.Read(ctx, slotKey)
	if err != nil {
		a.log.Warn("snapshot read failed, starting empty", "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		a.log.Warn("snapshot unparsable, starting empty", "error", err)
		return nil, nil
	}
	if env.Version != envelopeVersion {
		a.log.Warn("snapshot version unknown, starting empty", "version", env.Version)
		return nil, nil
	}

	workouts := make([]*workout.Workout, 0, len(env.Workouts))
	for i, rec := range env.Workouts {
		w, err := decode(rec)
		if err != nil {
			a.log.Warn("skipping stored workout", "index", i, "error", err)
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}

func encode(w *workout.Workout) record {
	rec := record{
		ID:          w.ID.String(),
		CreatedAt:   w.CreatedAt,
		Coordinates: [2]float64{w.Coords.Lat, w.Coords.Lng},
		DistanceKm:  w.DistanceKm,
		DurationMin: w.DurationMin,
		Kind:        string(w.Kind),
		Clicks:      w.Clicks,
	}
	switch w.Kind {
	case workout.Running:
		cadence := w.CadenceSpm
		rec.CadenceSpm = &cadence
	case workout.Cycling:
		gain := w.ElevationGainM
		rec.ElevationGainM = &gain
	}
	return rec
}

func decode(rec record) (*workout.Workout, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing workout id %q: %w", rec.ID, err)
	}
	kind, err := workout.ParseKind(rec.Kind)
	if err != nil {
		return nil, err
	}

	stored := workout.Stored{
		ID:          id,
		CreatedAt:   rec.CreatedAt,
		Coords:      workout.Coords{Lat: rec.Coordinates[0], Lng: rec.Coordinates[1]},
		DistanceKm:  rec.DistanceKm,
		DurationMin: rec.DurationMin,
		Kind:        kind,
		Clicks:      rec.Clicks,
	}
	switch kind {
	case workout.Running:
		if rec.CadenceSpm == nil {
			return nil, fmt.Errorf("%w: running record missing cadence", workout.ErrInvalid)
		}
		stored.CadenceSpm = *rec.CadenceSpm
	case workout.Cycling:
		if rec.ElevationGainM == nil {
			return nil, fmt.Errorf("%w: cycling record missing elevation gain", workout.ErrInvalid)
		}
		stored.ElevationGainM = *rec.ElevationGainM
	}
	return workout.Restore(stored)
}
