package service

import (
	"context"
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
	"github.com/spec-kit/complaint-engine/internal/repository"
)

// LifecycleEngine is the sole mutation entry point for complaints,
// suggestions and votes. It composes the two lifecycle services; each
// operation is atomic with respect to concurrent operations on the same
// entity, and distinct entities never contend. Mutating operations return
// a warnings slice carrying notification-dispatch failures that did not
// affect the state change itself.
type LifecycleEngine struct {
	complaints  *ComplaintService
	suggestions *SuggestionService
}

// NewLifecycleEngine composes the facade.
func NewLifecycleEngine(complaints *ComplaintService, suggestions *SuggestionService) *LifecycleEngine {
	return &LifecycleEngine{complaints: complaints, suggestions: suggestions}
}

// CreateTicket files a new complaint.
func (e *LifecycleEngine) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, []string, error) {
	return e.complaints.CreateTicket(ctx, input)
}

// TransitionTicket moves a complaint along its state machine.
func (e *LifecycleEngine) TransitionTicket(ctx context.Context, ticketID string, target domain.TicketStatus, note string) (*domain.Ticket, []string, error) {
	return e.complaints.Transition(ctx, ticketID, target, note)
}

// IsBreached reports SLA breach state at now.
func (e *LifecycleEngine) IsBreached(ctx context.Context, ticketID string, now time.Time) (bool, error) {
	return e.complaints.IsBreached(ctx, ticketID, now)
}

// GetTicket fetches a complaint by public identifier.
func (e *LifecycleEngine) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return e.complaints.GetTicket(ctx, ticketID)
}

// ListTickets returns complaints matching the filter.
func (e *LifecycleEngine) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return e.complaints.ListTickets(ctx, filter)
}

// CreateSuggestion files a new community idea.
func (e *LifecycleEngine) CreateSuggestion(ctx context.Context, input SuggestionCreateInput) (*domain.Suggestion, []string, error) {
	return e.suggestions.CreateSuggestion(ctx, input)
}

// OpenVoting opens the voting window after review.
func (e *LifecycleEngine) OpenVoting(ctx context.Context, suggestionID string, durationDays int) (*domain.Suggestion, []string, error) {
	return e.suggestions.OpenVoting(ctx, suggestionID, durationDays)
}

// CloseVoting records the final outcome once the window has elapsed.
func (e *LifecycleEngine) CloseVoting(ctx context.Context, suggestionID string, outcome domain.SuggestionStatus) (*domain.Suggestion, []string, error) {
	return e.suggestions.CloseVoting(ctx, suggestionID, outcome)
}

// CastVote records one voter's support, idempotently.
func (e *LifecycleEngine) CastVote(ctx context.Context, suggestionID, voterIdentity string) (domain.VoteOutcome, []string, error) {
	return e.suggestions.CastVote(ctx, suggestionID, voterIdentity)
}

// Tally returns the distinct-voter count for a suggestion.
func (e *LifecycleEngine) Tally(ctx context.Context, suggestionID string) (int, error) {
	return e.suggestions.Tally(ctx, suggestionID)
}

// GetSuggestion fetches a suggestion with its tally.
func (e *LifecycleEngine) GetSuggestion(ctx context.Context, suggestionID string) (*SuggestionWithTally, error) {
	return e.suggestions.GetSuggestion(ctx, suggestionID)
}

// ListSuggestions returns suggestions with tallies, most-voted first.
func (e *LifecycleEngine) ListSuggestions(ctx context.Context, limit, offset int) ([]SuggestionWithTally, error) {
	return e.suggestions.ListSuggestions(ctx, limit, offset)
}
