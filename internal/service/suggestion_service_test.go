package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
	"github.com/spec-kit/complaint-engine/internal/events"
	"github.com/spec-kit/complaint-engine/internal/identifier"
	"github.com/spec-kit/complaint-engine/internal/repository"
	apperrors "github.com/spec-kit/complaint-engine/pkg/util/errorutil"
)

func newTestSuggestionService(clock Clock, dispatcher events.Dispatcher) *SuggestionService {
	return NewSuggestionService(SuggestionDependencies{
		SuggestionRepo: repository.NewMemorySuggestionRepository(),
		VoteLedger:     repository.NewMemoryVoteLedger(),
		Minter:         identifier.NewMinter(identifier.NewMemorySequence()),
		Policy:         testPolicy,
		Clock:          clock,
		Dispatcher:     dispatcher,
	})
}

func validSuggestionInput() SuggestionCreateInput {
	return SuggestionCreateInput{
		AuthorName:  "Ravi Kumar",
		AuthorEmail: "ravi@example.com",
		Title:       "Solar panels on substation roofs",
		Description: "Unused roof area could offset auxiliary consumption",
		Category:    "INFRASTRUCTURE",
	}
}

func mustCreateSuggestion(t *testing.T, svc *SuggestionService) *domain.Suggestion {
	t.Helper()
	suggestion, _, err := svc.CreateSuggestion(context.Background(), validSuggestionInput())
	if err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	return suggestion
}

func mustOpenVoting(t *testing.T, svc *SuggestionService, id string, days int) *domain.Suggestion {
	t.Helper()
	suggestion, _, err := svc.OpenVoting(context.Background(), id, days)
	if err != nil {
		t.Fatalf("OpenVoting: %v", err)
	}
	return suggestion
}

func TestCreateSuggestion(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)

	suggestion := mustCreateSuggestion(t, svc)
	if suggestion.ID != "SUG-2025-000001" {
		t.Fatalf("ID = %q, want SUG-2025-000001", suggestion.ID)
	}
	if suggestion.Status != domain.SuggestionStatusPendingReview {
		t.Fatalf("Status = %s, want PENDING_REVIEW", suggestion.Status)
	}
	if suggestion.VotingOpensAt != nil || suggestion.VotingClosesAt != nil {
		t.Fatal("voting window set before review completed")
	}
}

func TestCreateSuggestionValidation(t *testing.T) {
	svc := newTestSuggestionService(newFakeClock(time.Now()), nil)

	cases := []struct {
		name   string
		mutate func(*SuggestionCreateInput)
	}{
		{"missing author name", func(in *SuggestionCreateInput) { in.AuthorName = "" }},
		{"missing author email", func(in *SuggestionCreateInput) { in.AuthorEmail = " " }},
		{"missing title", func(in *SuggestionCreateInput) { in.Title = "" }},
		{"missing description", func(in *SuggestionCreateInput) { in.Description = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validSuggestionInput()
			tc.mutate(&input)
			_, _, err := svc.CreateSuggestion(context.Background(), input)
			if !apperrors.HasCode(err, apperrors.CodeValidationFailed) {
				t.Fatalf("err = %v, want VALIDATION_FAILED", err)
			}
		})
	}
}

func TestOpenVotingDurationBounds(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)
	suggestion := mustCreateSuggestion(t, svc)

	for _, days := range []int{0, 3, 4, 11, 30} {
		_, _, err := svc.OpenVoting(context.Background(), suggestion.ID, days)
		if !apperrors.HasCode(err, apperrors.CodePolicyViolation) {
			t.Fatalf("days=%d: err = %v, want POLICY_VIOLATION", days, err)
		}
	}

	got, err := svc.GetSuggestion(context.Background(), suggestion.ID)
	if err != nil {
		t.Fatalf("GetSuggestion: %v", err)
	}
	if got.Suggestion.Status != domain.SuggestionStatusPendingReview {
		t.Fatalf("rejected open mutated status: %s", got.Suggestion.Status)
	}

	opened := mustOpenVoting(t, svc, suggestion.ID, 7)
	if opened.Status != domain.SuggestionStatusVotingOpen {
		t.Fatalf("Status = %s, want VOTING_OPEN", opened.Status)
	}
	wantClose := clock.Now().Add(7 * 24 * time.Hour)
	if opened.VotingClosesAt == nil || !opened.VotingClosesAt.Equal(wantClose) {
		t.Fatalf("VotingClosesAt = %v, want %v", opened.VotingClosesAt, wantClose)
	}
}

func TestOpenVotingBoundaryDurations(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)

	for _, days := range []int{5, 10} {
		suggestion := mustCreateSuggestion(t, svc)
		mustOpenVoting(t, svc, suggestion.ID, days)
	}
}

func TestOpenVotingWrongState(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)
	suggestion := mustCreateSuggestion(t, svc)
	mustOpenVoting(t, svc, suggestion.ID, 5)

	_, _, err := svc.OpenVoting(context.Background(), suggestion.ID, 5)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}
}

func TestCloseVotingEarly(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)
	suggestion := mustCreateSuggestion(t, svc)
	mustOpenVoting(t, svc, suggestion.ID, 5)

	clock.Advance(4 * 24 * time.Hour)
	_, _, err := svc.CloseVoting(context.Background(), suggestion.ID, domain.SuggestionStatusImplemented)
	if !apperrors.HasCode(err, apperrors.CodeVotingStillOpen) {
		t.Fatalf("err = %v, want VOTING_STILL_OPEN", err)
	}
}

func TestCloseVotingAfterWindow(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)
	suggestion := mustCreateSuggestion(t, svc)
	mustOpenVoting(t, svc, suggestion.ID, 5)

	clock.Advance(5*24*time.Hour + time.Minute)
	closed, _, err := svc.CloseVoting(context.Background(), suggestion.ID, domain.SuggestionStatusImplemented)
	if err != nil {
		t.Fatalf("CloseVoting: %v", err)
	}
	if closed.Status != domain.SuggestionStatusImplemented {
		t.Fatalf("Status = %s, want IMPLEMENTED", closed.Status)
	}

	// Terminal state rejects further moves.
	_, _, err = svc.CloseVoting(context.Background(), suggestion.ID, domain.SuggestionStatusRejected)
	if !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("err = %v, want INVALID_TRANSITION", err)
	}
}

func TestCloseVotingInvalidOutcome(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)
	suggestion := mustCreateSuggestion(t, svc)

	_, _, err := svc.CloseVoting(context.Background(), suggestion.ID, domain.SuggestionStatusPendingReview)
	if !apperrors.HasCode(err, apperrors.CodeValidationFailed) {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestCastVoteLifecycle(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)
	suggestion := mustCreateSuggestion(t, svc)

	// Voting not open yet.
	_, _, err := svc.CastVote(context.Background(), suggestion.ID, "voter-a")
	if !apperrors.HasCode(err, apperrors.CodeVotingClosed) {
		t.Fatalf("err = %v, want VOTING_CLOSED", err)
	}

	mustOpenVoting(t, svc, suggestion.ID, 5)

	outcome, _, err := svc.CastVote(context.Background(), suggestion.ID, "voter-a")
	if err != nil || outcome != domain.VoteAccepted {
		t.Fatalf("first cast = (%v, %v), want ACCEPTED", outcome, err)
	}

	// Network retry of the same cast.
	outcome, _, err = svc.CastVote(context.Background(), suggestion.ID, "voter-a")
	if err != nil || outcome != domain.VoteAlreadyVoted {
		t.Fatalf("repeat cast = (%v, %v), want ALREADY_VOTED", outcome, err)
	}

	outcome, _, err = svc.CastVote(context.Background(), suggestion.ID, "voter-b")
	if err != nil || outcome != domain.VoteAccepted {
		t.Fatalf("second voter = (%v, %v), want ACCEPTED", outcome, err)
	}

	tally, err := svc.Tally(context.Background(), suggestion.ID)
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}
	if tally != 2 {
		t.Fatalf("tally = %d, want 2", tally)
	}

	// Window elapsed: the ledger closes with the window.
	clock.Advance(5*24*time.Hour + time.Second)
	_, _, err = svc.CastVote(context.Background(), suggestion.ID, "voter-c")
	if !apperrors.HasCode(err, apperrors.CodeVotingClosed) {
		t.Fatalf("err = %v, want VOTING_CLOSED after window", err)
	}
}

func TestCastVoteMissingIdentity(t *testing.T) {
	svc := newTestSuggestionService(newFakeClock(time.Now()), nil)
	_, _, err := svc.CastVote(context.Background(), "SUG-2025-000001", "  ")
	if !apperrors.HasCode(err, apperrors.CodeValidationFailed) {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
}

func TestCastVoteConcurrentSameIdentity(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)
	suggestion := mustCreateSuggestion(t, svc)
	mustOpenVoting(t, svc, suggestion.ID, 5)

	const workers = 16
	accepted := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, _, err := svc.CastVote(context.Background(), suggestion.ID, "voter-a")
			if err == nil && outcome == domain.VoteAccepted {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	if got := len(accepted); got != 1 {
		t.Fatalf("accepted casts = %d, want exactly 1", got)
	}
	tally, err := svc.Tally(context.Background(), suggestion.ID)
	if err != nil {
		t.Fatalf("Tally: %v", err)
	}
	if tally != 1 {
		t.Fatalf("tally = %d, want 1", tally)
	}
}

func TestTallyScopedPerSuggestion(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)

	first := mustCreateSuggestion(t, svc)
	second := mustCreateSuggestion(t, svc)
	mustOpenVoting(t, svc, first.ID, 5)
	mustOpenVoting(t, svc, second.ID, 5)

	// The same person may vote once per suggestion.
	for _, id := range []string{first.ID, second.ID} {
		if outcome, _, err := svc.CastVote(context.Background(), id, "voter-a"); err != nil || outcome != domain.VoteAccepted {
			t.Fatalf("cast on %s = (%v, %v), want ACCEPTED", id, outcome, err)
		}
	}
	for _, id := range []string{first.ID, second.ID} {
		tally, err := svc.Tally(context.Background(), id)
		if err != nil || tally != 1 {
			t.Fatalf("tally(%s) = (%d, %v), want 1", id, tally, err)
		}
	}
}

func TestTallyUnknownSuggestion(t *testing.T) {
	svc := newTestSuggestionService(newFakeClock(time.Now()), nil)
	_, err := svc.Tally(context.Background(), "SUG-2025-404404")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestListSuggestionsMostVotedFirst(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newTestSuggestionService(clock, nil)

	quiet := mustCreateSuggestion(t, svc)
	popular := mustCreateSuggestion(t, svc)
	mustOpenVoting(t, svc, quiet.ID, 5)
	mustOpenVoting(t, svc, popular.ID, 5)

	for i := 0; i < 3; i++ {
		if _, _, err := svc.CastVote(context.Background(), popular.ID, fmt.Sprintf("voter-%d", i)); err != nil {
			t.Fatalf("CastVote: %v", err)
		}
	}
	if _, _, err := svc.CastVote(context.Background(), quiet.ID, "voter-0"); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	items, err := svc.ListSuggestions(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListSuggestions: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Suggestion.ID != popular.ID || items[0].Votes != 3 {
		t.Fatalf("first = %s with %d votes, want %s with 3", items[0].Suggestion.ID, items[0].Votes, popular.ID)
	}
}

func TestVotingClosedEventCarriesFinalTally(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	dispatcher := events.NewInMemoryDispatcher()
	var captured events.VotingClosedPayload
	dispatcher.Subscribe(events.EventVotingClosed, func(_ context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.VotingClosedPayload)
		if !ok {
			return errors.New("unexpected payload type")
		}
		captured = payload
		return nil
	})
	svc := newTestSuggestionService(clock, dispatcher)

	suggestion := mustCreateSuggestion(t, svc)
	mustOpenVoting(t, svc, suggestion.ID, 5)
	if _, _, err := svc.CastVote(context.Background(), suggestion.ID, "voter-a"); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	clock.Advance(6 * 24 * time.Hour)
	if _, _, err := svc.CloseVoting(context.Background(), suggestion.ID, domain.SuggestionStatusRejected); err != nil {
		t.Fatalf("CloseVoting: %v", err)
	}
	if captured.Outcome != domain.SuggestionStatusRejected || captured.FinalTally != 1 {
		t.Fatalf("payload = %+v, want REJECTED with tally 1", captured)
	}
}
