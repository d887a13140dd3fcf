// Package workout defines the workout entity model: a tagged-variant record
// covering running and cycling sessions, their construction-time validation,
// and the derived metrics computed from distance and duration.
package workout

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the two workout variants.
type Kind string

const (
	Running Kind = "running"
	Cycling Kind = "cycling"
)

// ParseKind converts a wire-format kind string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Running, Cycling:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalid, s)
}

// ErrInvalid is wrapped by all construction-time validation failures.
var ErrInvalid = errors.New("invalid workout")

// Coords is a latitude/longitude pair, immutable after construction.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Workout is a single logged session. Exactly one of CadenceSpm or
// ElevationGainM is meaningful, selected by Kind. Pace and speed are never
// stored; they are recomputed from DistanceKm and DurationMin on demand.
type Workout struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Coords      Coords
	DistanceKm  float64
	DurationMin float64
	Kind        Kind

	// Running only.
	CadenceSpm float64
	// Cycling only. Zero and negative gains are valid.
	ElevationGainM float64

	// Clicks counts explicit select actions on this workout.
	Clicks int
}

// NewRunning constructs a running workout, assigning a fresh ID and timestamp.
func NewRunning(coords Coords, distanceKm, durationMin, cadenceSpm float64) (*Workout, error) {
	w := &Workout{
		ID:          uuid.New(),
		CreatedAt:   time.Now(),
		Coords:      coords,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Kind:        Running,
		CadenceSpm:  cadenceSpm,
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// NewCycling constructs a cycling workout, assigning a fresh ID and timestamp.
func NewCycling(coords Coords, distanceKm, durationMin, elevationGainM float64) (*Workout, error) {
	w := &Workout{
		ID:             uuid.New(),
		CreatedAt:      time.Now(),
		Coords:         coords,
		DistanceKm:     distanceKm,
		DurationMin:    durationMin,
		Kind:           Cycling,
		ElevationGainM: elevationGainM,
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Stored carries every persisted field of a workout. Derived metrics are
// deliberately absent: the stored form is never trusted for them.
type Stored struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Coords         Coords
	DistanceKm     float64
	DurationMin    float64
	Kind           Kind
	CadenceSpm     float64
	ElevationGainM float64
	Clicks         int
}

// Restore rebuilds a concrete workout from its stored fields, preserving
// identity, creation time and click count. The same validation as fresh
// construction applies, so corrupt stored records are rejected rather than
// revived.
func Restore(s Stored) (*Workout, error) {
	w := &Workout{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		Coords:      s.Coords,
		DistanceKm:  s.DistanceKm,
		DurationMin: s.DurationMin,
		Kind:        s.Kind,
		Clicks:      s.Clicks,
	}
	switch s.Kind {
	case Running:
		w.CadenceSpm = s.CadenceSpm
	case Cycling:
		w.ElevationGainM = s.ElevationGainM
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalid, s.Kind)
	}
	if w.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if s.Clicks < 0 {
		return nil, fmt.Errorf("%w: negative interaction count", ErrInvalid)
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workout) validate() error {
	if !isFinite(w.DistanceKm) || w.DistanceKm <= 0 {
		return fmt.Errorf("%w: distance must be a positive number, got %v", ErrInvalid, w.DistanceKm)
	}
	if !isFinite(w.DurationMin) || w.DurationMin <= 0 {
		return fmt.Errorf("%w: duration must be a positive number, got %v", ErrInvalid, w.DurationMin)
	}
	switch w.Kind {
	case Running:
		if !isFinite(w.CadenceSpm) || w.CadenceSpm <= 0 {
			return fmt.Errorf("%w: cadence must be a positive number, got %v", ErrInvalid, w.CadenceSpm)
		}
	case Cycling:
		if !isFinite(w.ElevationGainM) {
			return fmt.Errorf("%w: elevation gain must be a finite number, got %v", ErrInvalid, w.ElevationGainM)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, w.Kind)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// PaceMinPerKm returns the running pace. Only meaningful for Kind == Running.
func (w *Workout) PaceMinPerKm() float64 {
	return w.DurationMin / w.DistanceKm
}

// SpeedKmPerH returns the cycling speed. Only meaningful for Kind == Cycling.
func (w *Workout) SpeedKmPerH() float64 {
	return w.DistanceKm / (w.DurationMin / 60)
}

// Select records one explicit selection of this workout. It touches nothing
// but the click counter.
func (w *Workout) Select() {
	w.Clicks++
}

const (
	runningEmoji = "🏃‍♂️"
	cyclingEmoji = "🚴‍♀️"
)

// Emoji returns the glyph shown next to this workout's kind.
func (w *Workout) Emoji() string {
	if w.Kind == Cycling {
		return cyclingEmoji
	}
	return runningEmoji
}

// Description returns the human-readable label, e.g. "🏃‍♂️ Running on April 05".
// It is a pure function of Kind and CreatedAt so that a reloaded workout
// describes itself byte-identically to the freshly created one. Month names
// are fixed English long form.
func (w *Workout) Description() string {
	kind := string(w.Kind)
	capitalized := string(kind[0]-'a'+'A') + kind[1:]
	return fmt.Sprintf("%s %s on %s %02d",
		w.Emoji(), capitalized, w.CreatedAt.Month().String(), w.CreatedAt.Day())
}
