// Package history keeps a bounded, most-recent-first log of derivations in
// a pluggable byte store.
package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Key is the single KV key the log lives under.
const Key = "AI_HQD_history_v1"

// Store reads and writes the log as one serialized blob. Reads never fail:
// a missing, unreadable or corrupt blob is an empty history.
type Store struct {
	mu       sync.Mutex
	kv       KV
	capacity int
	logger   *slog.Logger
}

// NewStore wraps kv. A non-positive capacity means DefaultCapacity; a nil
// logger discards.
func NewStore(kv KV, capacity int, logger *slog.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{kv: kv, capacity: capacity, logger: logger}
}

// Save pushes rec as the newest record. The error is for logging only; the
// in-memory state of callers is unaffected either way.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ring := s.load(ctx)
	ring.Push(rec)
	data, err := ring.Marshal()
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}
	if err := s.kv.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("history: save: %w", err)
	}
	return nil
}

// List returns every record, most recent first.
func (s *Store) List(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx).Records()
}

// Latest returns the most recent record.
func (s *Store) Latest(ctx context.Context) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx).Latest()
}

// Clear removes the whole log.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) *Ring {
	data, err := s.kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("history unreadable, starting empty", "error", err)
		}
		return NewRing(s.capacity)
	}
	return UnmarshalRing(data, s.capacity)
}
