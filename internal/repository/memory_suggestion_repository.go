package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// memorySuggestionRepository mirrors the ticket store: per-entry locks,
// atomic insert-if-absent on the entry map.
type memorySuggestionRepository struct {
	entries sync.Map // id -> *suggestionEntry
}

type suggestionEntry struct {
	mu         sync.Mutex
	suggestion *domain.Suggestion
}

// NewMemorySuggestionRepository instantiates the in-memory repository.
func NewMemorySuggestionRepository() SuggestionRepository {
	return &memorySuggestionRepository{}
}

func (r *memorySuggestionRepository) Insert(_ context.Context, suggestion *domain.Suggestion) error {
	entry := &suggestionEntry{suggestion: suggestion.Clone()}
	if _, loaded := r.entries.LoadOrStore(suggestion.ID, entry); loaded {
		return ErrDuplicateID
	}
	return nil
}

func (r *memorySuggestionRepository) GetByID(_ context.Context, id string) (*domain.Suggestion, error) {
	val, ok := r.entries.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	entry := val.(*suggestionEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.suggestion.Clone(), nil
}

func (r *memorySuggestionRepository) Update(_ context.Context, suggestion *domain.Suggestion, expected domain.SuggestionStatus) error {
	val, ok := r.entries.Load(suggestion.ID)
	if !ok {
		return ErrNotFound
	}
	entry := val.(*suggestionEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.suggestion.Status != expected {
		return ErrStatusConflict
	}
	entry.suggestion = suggestion.Clone()
	return nil
}

func (r *memorySuggestionRepository) List(_ context.Context, limit, offset int) ([]domain.Suggestion, error) {
	suggestions := []domain.Suggestion{}
	r.entries.Range(func(_, val any) bool {
		entry := val.(*suggestionEntry)
		entry.mu.Lock()
		suggestions = append(suggestions, *entry.suggestion.Clone())
		entry.mu.Unlock()
		return true
	})

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].CreatedAt.After(suggestions[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(suggestions) {
			return []domain.Suggestion{}, nil
		}
		suggestions = suggestions[offset:]
	}
	if limit > 0 && limit < len(suggestions) {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func (r *memorySuggestionRepository) LastSequence(_ context.Context, _ int) (uint64, error) {
	return 0, nil
}
