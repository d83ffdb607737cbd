package identifier

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/spec-kit/complaint-engine/pkg/util/errorutil"
)

// Prefixes for the two identifier families.
const (
	PrefixComplaint  = "CMP"
	PrefixSuggestion = "SUG"
)

// maxSequence is the last identifier the 6-digit space can represent.
// Crossing it within a year is an operational failure, never a wrap.
const maxSequence = 999999

// Sequence reserves monotonically increasing values per scope. Next must be
// atomic: two concurrent callers never receive the same value for a scope.
type Sequence interface {
	Next(ctx context.Context, scope string) (uint64, error)
}

// Minter produces ticket and suggestion identifiers of the form
// <PREFIX>-<year>-<zero-padded 6-digit sequence>, monotonic per prefix
// per year. The sequence counter is injected, never a package global.
type Minter struct {
	seq Sequence
}

// NewMinter builds a minter on top of the given sequence source.
func NewMinter(seq Sequence) *Minter {
	return &Minter{seq: seq}
}

// Mint reserves the next identifier for the prefix in now's year.
func (m *Minter) Mint(ctx context.Context, prefix string, now time.Time) (string, error) {
	scope := fmt.Sprintf("%s-%d", prefix, now.Year())
	n, err := m.seq.Next(ctx, scope)
	if err != nil {
		return "", err
	}
	if n > maxSequence {
		return "", apperrors.NewSequenceExhausted(scope)
	}
	return fmt.Sprintf("%s-%06d", scope, n), nil
}

// MemorySequence keeps per-scope counters in process memory. Counters are
// created on first use and incremented atomically.
type MemorySequence struct {
	mu       sync.Mutex
	counters map[string]*atomic.Uint64
}

// NewMemorySequence builds an empty in-process sequence source.
func NewMemorySequence() *MemorySequence {
	return &MemorySequence{counters: make(map[string]*atomic.Uint64)}
}

// Next reserves the next value for scope.
func (s *MemorySequence) Next(_ context.Context, scope string) (uint64, error) {
	s.mu.Lock()
	counter, ok := s.counters[scope]
	if !ok {
		counter = &atomic.Uint64{}
		s.counters[scope] = counter
	}
	s.mu.Unlock()
	return counter.Add(1), nil
}

// Seed sets the floor for a scope so restarts continue after previously
// issued identifiers.
func (s *MemorySequence) Seed(scope string, last uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counter, ok := s.counters[scope]
	if !ok {
		counter = &atomic.Uint64{}
		s.counters[scope] = counter
	}
	if counter.Load() < last {
		counter.Store(last)
	}
}
