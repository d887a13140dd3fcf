// Package store holds the in-memory workout collection: the single source of
// truth for the session, ordered by insertion.
package store

import (
	"github.com/claude/waymark/internal/workout"
	"github.com/google/uuid"
)

// Store is an append-only ordered collection of workouts. Insertion order is
// display order is persisted order. The sync coordinator is the only writer.
type Store struct {
	workouts []*workout.Workout
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Append adds a workout to the end. Duplicate IDs are a caller error and are
// not policed here.
func (s *Store) Append(w *workout.Workout) {
	s.workouts = append(s.workouts, w)
}

// All returns the workouts in insertion order. The returned slice is a copy;
// the workouts themselves are shared.
func (s *Store) All() []*workout.Workout {
	out := make([]*workout.Workout, len(s.workouts))
	copy(out, s.workouts)
	return out
}

// FindByID returns the workout with the given ID, or (nil, false). A miss is
// a normal condition — stray clicks resolve against IDs that may be gone.
func (s *Store) FindByID(id uuid.UUID) (*workout.Workout, bool) {
	for _, w := range s.workouts {
		if w.ID == id {
			return w, true
		}
	}
	return nil, false
}

// Len reports the number of stored workouts.
func (s *Store) Len() int {
	return len(s.workouts)
}
