package suggest

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultCapacity bounds the store when no capacity is configured.
const DefaultCapacity = 10

// Store holds accepted suggestions, rejects semantic duplicates and bounds
// the total count. FIFO: when full, accepting a new suggestion evicts the
// oldest one.
type Store struct {
	mu       sync.RWMutex
	capacity int
	items    []Suggestion // append order, oldest first
	logger   zerolog.Logger
}

// NewStore creates a Store bounded to the given capacity.
// Panics if capacity < 1.
func NewStore(capacity int, logger zerolog.Logger) *Store {
	if capacity < 1 {
		panic("suggest: capacity must be >= 1")
	}
	return &Store{
		capacity: capacity,
		logger:   logger.With().Str("component", "suggestion_store").Logger(),
	}
}

// Submit offers a candidate to the store. A candidate sharing the
// (DetectorType, DetectorKey) of a live suggestion is rejected, so repeated
// detection of the same pattern does not spam suggestions. On accept, the
// store assigns the ID and creation timestamp and returns the stored copy.
func (s *Store) Submit(candidate Suggestion) (Suggestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.DetectorType == candidate.DetectorType && existing.DetectorKey == candidate.DetectorKey {
			return Suggestion{}, false
		}
	}

	candidate.ID = uuid.New().String()
	candidate.CreatedAt = time.Now()
	s.items = append(s.items, candidate)

	if len(s.items) > s.capacity {
		evicted := s.items[0]
		s.items = s.items[1:]
		s.logger.Debug().
			Str("detector", evicted.DetectorType).
			Str("key", evicted.DetectorKey).
			Msg("suggestion evicted")
	}

	s.logger.Info().
		Str("detector", candidate.DetectorType).
		Str("key", candidate.DetectorKey).
		Float64("confidence", candidate.Confidence).
		Msg("suggestion accepted")

	return candidate, true
}

// List returns the live suggestions oldest first (append order).
func (s *Store) List() []Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Suggestion, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of live suggestions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
