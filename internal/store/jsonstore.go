// Package store persists per-stage provider records: one pretty-printed
// JSON object per stage mapping provider_id to record, written atomically,
// plus an append-only SQLite audit log of stage transitions.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Stage is a crash-safe key-value store for one pipeline stage's records,
// keyed by provider id. Writes replace the whole file via temp + fsync +
// rename so readers never observe a partial file; the read-modify-write
// critical section is serialized process-wide so concurrent workers cannot
// lose each other's updates.
type Stage[T any] struct {
	path string
	mu   sync.Mutex
}

// NewStage creates a stage store backed by the given file path.
func NewStage[T any](path string) *Stage[T] {
	return &Stage[T]{path: path}
}

// Path returns the backing file path.
func (s *Stage[T]) Path() string { return s.path }

// Load reads the full provider map. A missing or corrupt file yields an
// empty map rather than an error: store-load failures reset to empty.
func (s *Stage[T]) Load() (map[string]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns one provider's record.
func (s *Stage[T]) Get(providerID string) (T, bool, error) {
	var zero T
	all, err := s.Load()
	if err != nil {
		return zero, false, err
	}
	rec, ok := all[providerID]
	return rec, ok, nil
}

// Put merges one provider's record into the store and persists atomically.
func (s *Stage[T]) Put(providerID string, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	all[providerID] = rec
	return s.write(all)
}

// PutAll replaces the entire stage mapping.
func (s *Stage[T]) PutAll(all map[string]T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(all)
}

func (s *Stage[T]) load() (map[string]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]T{}, nil
		}
		return nil, eris.Wrapf(err, "store: read %s", s.path)
	}

	var all map[string]T
	if err := json.Unmarshal(data, &all); err != nil {
		zap.L().Warn("store: corrupt stage file, starting fresh",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return map[string]T{}, nil
	}
	if all == nil {
		all = map[string]T{}
	}
	return all, nil
}

// write performs the atomic replace. Any failure here is surfaced to the
// caller: silent data loss is unacceptable.
func (s *Stage[T]) write(all map[string]T) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "store: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "tmp_stage_*")
	if err != nil {
		return eris.Wrap(err, "store: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(all); err != nil {
		tmp.Close()
		return eris.Wrap(err, "store: encode records")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return eris.Wrap(err, "store: fsync temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "store: close temp file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return eris.Wrapf(err, "store: rename into %s", s.path)
	}
	return nil
}
