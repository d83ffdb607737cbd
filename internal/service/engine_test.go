package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

func newTestEngine(clock Clock) *LifecycleEngine {
	return NewLifecycleEngine(
		newTestComplaintService(clock, nil),
		newTestSuggestionService(clock, nil),
	)
}

// TestEngineEndToEnd drives both lifecycles through the facade the way the
// HTTP layer does.
func TestEngineEndToEnd(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	engine := newTestEngine(clock)
	ctx := context.Background()

	ticket, _, err := engine.CreateTicket(ctx, validTicketInput())
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	for _, status := range []domain.TicketStatus{
		domain.TicketStatusVerified, domain.TicketStatusAssigned,
		domain.TicketStatusInProgress, domain.TicketStatusResolved,
	} {
		if _, _, err := engine.TransitionTicket(ctx, ticket.ID, status, ""); err != nil {
			t.Fatalf("TransitionTicket(%s): %v", status, err)
		}
	}
	if breached, err := engine.IsBreached(ctx, ticket.ID, clock.Now().Add(72*time.Hour)); err != nil || breached {
		t.Fatalf("IsBreached = (%v, %v), want resolved ticket never breached", breached, err)
	}

	suggestion, _, err := engine.CreateSuggestion(ctx, validSuggestionInput())
	if err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	if _, _, err := engine.OpenVoting(ctx, suggestion.ID, 5); err != nil {
		t.Fatalf("OpenVoting: %v", err)
	}
	if outcome, _, err := engine.CastVote(ctx, suggestion.ID, "voter-a"); err != nil || outcome != domain.VoteAccepted {
		t.Fatalf("CastVote = (%v, %v), want ACCEPTED", outcome, err)
	}

	clock.Advance(6 * 24 * time.Hour)
	closed, _, err := engine.CloseVoting(ctx, suggestion.ID, domain.SuggestionStatusImplemented)
	if err != nil {
		t.Fatalf("CloseVoting: %v", err)
	}
	if closed.Status != domain.SuggestionStatusImplemented {
		t.Fatalf("Status = %s, want IMPLEMENTED", closed.Status)
	}
	if tally, err := engine.Tally(ctx, suggestion.ID); err != nil || tally != 1 {
		t.Fatalf("Tally = (%d, %v), want 1", tally, err)
	}
}
