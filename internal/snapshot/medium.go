package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Medium is the storage slot abstraction the adapter writes snapshots
// through: named text slots with whole-value replace semantics.
type Medium interface {
	// Read returns the slot body, or ok=false if the slot has never been
	// written. Absence is a normal first-run state, not an error.
	Read(ctx context.Context, key string) (body string, ok bool, err error)
	// Write replaces the slot body.
	Write(ctx context.Context, key, body string) error
	Close() error
}

// FileMedium stores each slot as a file under a directory. It backs
// zero-config runs and tests.
type FileMedium struct {
	dir string
}

// OpenFileMedium creates the directory if needed and returns a medium over it.
func OpenFileMedium(dir string) (*FileMedium, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}
	return &FileMedium{dir: dir}, nil
}

func (m *FileMedium) Read(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(m.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return string(data), true, nil
}

func (m *FileMedium) Write(_ context.Context, key, body string) error {
	// Write-then-rename so a crash mid-write never truncates the snapshot.
	tmp := m.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	if err := os.Rename(tmp, m.path(key)); err != nil {
		return fmt.Errorf("replacing slot %s: %w", key, err)
	}
	return nil
}

func (m *FileMedium) Close() error { return nil }

func (m *FileMedium) path(key string) string {
	return filepath.Join(m.dir, key+".json")
}
