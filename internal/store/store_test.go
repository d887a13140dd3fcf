package store

import (
	"testing"

	"github.com/claude/waymark/internal/workout"
	"github.com/google/uuid"
)

func mustRunning(t *testing.T) *workout.Workout {
	t.Helper()
	w, err := workout.NewRunning(workout.Coords{Lat: 40, Lng: -73}, 5, 25, 180)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// TestAppendPreservesOrder verifies that All returns workouts in insertion
// order, which is also display and persisted order.
func TestAppendPreservesOrder(t *testing.T) {
	s := New()
	first := mustRunning(t)
	second := mustRunning(t)
	s.Append(first)
	s.Append(second)

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID {
		t.Error("All returned workouts out of insertion order")
	}
}

// TestAllReturnsCopy verifies that mutating the returned slice does not
// affect the store's ordering.
func TestAllReturnsCopy(t *testing.T) {
	s := New()
	w := mustRunning(t)
	s.Append(w)

	all := s.All()
	all[0] = nil

	if got, ok := s.FindByID(w.ID); !ok || got == nil {
		t.Error("mutating All() result affected the store")
	}
}

// TestFindByID verifies lookup hits and that a miss reports not-found
// without raising — stray clicks are a recoverable no-op.
func TestFindByID(t *testing.T) {
	s := New()

	if _, ok := s.FindByID(uuid.New()); ok {
		t.Error("FindByID on empty store reported a hit")
	}

	w := mustRunning(t)
	s.Append(w)

	got, ok := s.FindByID(w.ID)
	if !ok {
		t.Fatal("FindByID missed an appended workout")
	}
	if got.ID != w.ID {
		t.Errorf("id = %v, want %v", got.ID, w.ID)
	}

	if _, ok := s.FindByID(uuid.New()); ok {
		t.Error("FindByID reported a hit for an unknown id")
	}
}
