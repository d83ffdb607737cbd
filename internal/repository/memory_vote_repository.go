package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// memoryVoteLedger keeps one voter set per suggestion. The per-suggestion
// mutex is the only serialization point, so voting on distinct suggestions
// never contends.
type memoryVoteLedger struct {
	sets sync.Map // suggestionID -> *voterSet
}

type voterSet struct {
	mu     sync.Mutex
	voters map[string]time.Time
}

// NewMemoryVoteLedger instantiates the in-memory ledger.
func NewMemoryVoteLedger() VoteLedger {
	return &memoryVoteLedger{}
}

func (l *memoryVoteLedger) Insert(_ context.Context, vote domain.Vote) (bool, error) {
	val, _ := l.sets.LoadOrStore(vote.SuggestionID, &voterSet{voters: make(map[string]time.Time)})
	set := val.(*voterSet)
	set.mu.Lock()
	defer set.mu.Unlock()
	if _, exists := set.voters[vote.VoterIdentity]; exists {
		return false, nil
	}
	set.voters[vote.VoterIdentity] = vote.CastAt
	return true, nil
}

func (l *memoryVoteLedger) Count(_ context.Context, suggestionID string) (int, error) {
	val, ok := l.sets.Load(suggestionID)
	if !ok {
		return 0, nil
	}
	set := val.(*voterSet)
	set.mu.Lock()
	defer set.mu.Unlock()
	return len(set.voters), nil
}
