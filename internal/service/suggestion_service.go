package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-engine/internal/config"
	"github.com/spec-kit/complaint-engine/internal/domain"
	"github.com/spec-kit/complaint-engine/internal/events"
	"github.com/spec-kit/complaint-engine/internal/identifier"
	"github.com/spec-kit/complaint-engine/internal/repository"
	apperrors "github.com/spec-kit/complaint-engine/pkg/util/errorutil"
)

// SuggestionService owns the suggestion review/voting workflow and the
// vote ledger.
type SuggestionService struct {
	suggestions repository.SuggestionRepository
	votes       repository.VoteLedger
	minter      *identifier.Minter
	policy      config.PolicyConfig
	clock       Clock
	dispatcher  events.Dispatcher
}

// SuggestionDependencies bundles collaborators for the service.
type SuggestionDependencies struct {
	SuggestionRepo repository.SuggestionRepository
	VoteLedger     repository.VoteLedger
	Minter         *identifier.Minter
	Policy         config.PolicyConfig
	Clock          Clock
	Dispatcher     events.Dispatcher
}

// NewSuggestionService constructs the service.
func NewSuggestionService(deps SuggestionDependencies) *SuggestionService {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &SuggestionService{
		suggestions: deps.SuggestionRepo,
		votes:       deps.VoteLedger,
		minter:      deps.Minter,
		policy:      deps.Policy,
		clock:       clock,
		dispatcher:  deps.Dispatcher,
	}
}

// SuggestionCreateInput describes the submission payload.
type SuggestionCreateInput struct {
	AuthorName  string
	AuthorEmail string
	Title       string
	Description string
	Category    string
}

// SuggestionWithTally pairs a suggestion with its current vote count.
type SuggestionWithTally struct {
	Suggestion domain.Suggestion
	Votes      int
}

// CreateSuggestion validates and records a new idea in PendingReview.
func (s *SuggestionService) CreateSuggestion(ctx context.Context, input SuggestionCreateInput) (*domain.Suggestion, []string, error) {
	if strings.TrimSpace(input.AuthorName) == "" {
		return nil, nil, fieldError("name", "author name is required")
	}
	if strings.TrimSpace(input.AuthorEmail) == "" {
		return nil, nil, fieldError("email", "author email is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, nil, fieldError("title", "title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, nil, fieldError("description", "description is required")
	}

	now := s.clock.Now()
	id, err := s.minter.Mint(ctx, identifier.PrefixSuggestion, now)
	if err != nil {
		return nil, nil, err
	}

	suggestion := &domain.Suggestion{
		ID: id,
		Author: domain.Author{
			Name:  strings.TrimSpace(input.AuthorName),
			Email: strings.TrimSpace(input.AuthorEmail),
		},
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Status:      domain.SuggestionStatusPendingReview,
		CreatedAt:   now,
	}

	if err := s.suggestions.Insert(ctx, suggestion); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	warnings := s.publish(ctx, events.Event{
		Type:      events.EventSuggestionCreated,
		EntityID:  suggestion.ID,
		Recipient: suggestionRecipient(suggestion),
		Payload: events.SuggestionCreatedPayload{
			Title:    suggestion.Title,
			Category: suggestion.Category,
		},
	})
	return suggestion, warnings, nil
}

// OpenVoting completes review and opens the time-boxed voting window.
// Legal only from PendingReview; durationDays must stay inside the
// configured policy bounds.
func (s *SuggestionService) OpenVoting(ctx context.Context, suggestionID string, durationDays int) (*domain.Suggestion, []string, error) {
	if durationDays < s.policy.VotingMinDays || durationDays > s.policy.VotingMaxDays {
		return nil, nil, apperrors.NewPolicyViolation("voting duration outside allowed range",
			map[string]any{
				"duration_days": durationDays,
				"min_days":      s.policy.VotingMinDays,
				"max_days":      s.policy.VotingMaxDays,
			})
	}

	suggestion, err := s.getSuggestion(ctx, suggestionID)
	if err != nil {
		return nil, nil, err
	}
	if suggestion.Status != domain.SuggestionStatusPendingReview {
		return nil, nil, apperrors.NewInvalidTransition(string(suggestion.Status), string(domain.SuggestionStatusVotingOpen))
	}

	now := s.clock.Now()
	closes := now.Add(time.Duration(durationDays) * 24 * time.Hour)
	suggestion.Status = domain.SuggestionStatusVotingOpen
	suggestion.VotingOpensAt = &now
	suggestion.VotingClosesAt = &closes

	if err := s.suggestions.Update(ctx, suggestion, domain.SuggestionStatusPendingReview); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			// Someone else moved it out of review first.
			return nil, nil, apperrors.NewInvalidTransition(string(domain.SuggestionStatusPendingReview), string(domain.SuggestionStatusVotingOpen))
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("suggestion", map[string]any{"suggestion_id": suggestionID})
		}
		return nil, nil, apperrors.MapError(err)
	}

	warnings := s.publish(ctx, events.Event{
		Type:      events.EventVotingOpened,
		EntityID:  suggestion.ID,
		Recipient: suggestionRecipient(suggestion),
		Payload: events.VotingOpenedPayload{
			OpensAt:  now,
			ClosesAt: closes,
		},
	})
	return suggestion, warnings, nil
}

// CloseVoting records the review outcome once the window has elapsed.
// There is no forced early close.
func (s *SuggestionService) CloseVoting(ctx context.Context, suggestionID string, outcome domain.SuggestionStatus) (*domain.Suggestion, []string, error) {
	if outcome != domain.SuggestionStatusImplemented && outcome != domain.SuggestionStatusRejected {
		return nil, nil, fieldError("outcome", "outcome must be IMPLEMENTED or REJECTED")
	}

	suggestion, err := s.getSuggestion(ctx, suggestionID)
	if err != nil {
		return nil, nil, err
	}
	if suggestion.Status != domain.SuggestionStatusVotingOpen {
		return nil, nil, apperrors.NewInvalidTransition(string(suggestion.Status), string(outcome))
	}
	if now := s.clock.Now(); suggestion.VotingClosesAt != nil && now.Before(*suggestion.VotingClosesAt) {
		return nil, nil, apperrors.NewVotingStillOpen("voting window has not elapsed yet")
	}

	suggestion.Status = outcome
	if err := s.suggestions.Update(ctx, suggestion, domain.SuggestionStatusVotingOpen); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, nil, apperrors.NewInvalidTransition(string(domain.SuggestionStatusVotingOpen), string(outcome))
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("suggestion", map[string]any{"suggestion_id": suggestionID})
		}
		return nil, nil, apperrors.MapError(err)
	}

	tally, err := s.votes.Count(ctx, suggestion.ID)
	if err != nil {
		tally = 0
	}
	warnings := s.publish(ctx, events.Event{
		Type:      events.EventVotingClosed,
		EntityID:  suggestion.ID,
		Recipient: suggestionRecipient(suggestion),
		Payload: events.VotingClosedPayload{
			Outcome:    outcome,
			FinalTally: tally,
		},
	})
	return suggestion, warnings, nil
}

// CastVote records one voter's support. Casting is idempotent: a repeat
// from the same identity reports AlreadyVoted and never double-counts.
// Votes are accepted only while the suggestion is VotingOpen and now falls
// inside the window.
func (s *SuggestionService) CastVote(ctx context.Context, suggestionID, voterIdentity string) (domain.VoteOutcome, []string, error) {
	if strings.TrimSpace(voterIdentity) == "" {
		return "", nil, fieldError("voter", "voter identity is required")
	}

	suggestion, err := s.getSuggestion(ctx, suggestionID)
	if err != nil {
		return "", nil, err
	}
	now := s.clock.Now()
	if suggestion.Status != domain.SuggestionStatusVotingOpen || !suggestion.VotingWindowContains(now) {
		return "", nil, apperrors.NewVotingClosed("voting is not open for this suggestion")
	}

	inserted, err := s.votes.Insert(ctx, domain.Vote{
		SuggestionID:  suggestionID,
		VoterIdentity: voterIdentity,
		CastAt:        now,
	})
	if err != nil {
		return "", nil, apperrors.MapError(err)
	}
	if !inserted {
		return domain.VoteAlreadyVoted, nil, nil
	}

	warnings := s.publish(ctx, events.Event{
		Type:      events.EventVoteCast,
		EntityID:  suggestion.ID,
		Recipient: suggestionRecipient(suggestion),
		Payload:   events.VoteCastPayload{Outcome: domain.VoteAccepted},
	})
	return domain.VoteAccepted, warnings, nil
}

// Tally returns the number of distinct voters recorded for the suggestion.
// Read-only.
func (s *SuggestionService) Tally(ctx context.Context, suggestionID string) (int, error) {
	if _, err := s.getSuggestion(ctx, suggestionID); err != nil {
		return 0, err
	}
	count, err := s.votes.Count(ctx, suggestionID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// GetSuggestion fetches a suggestion with its current tally.
func (s *SuggestionService) GetSuggestion(ctx context.Context, suggestionID string) (*SuggestionWithTally, error) {
	suggestion, err := s.getSuggestion(ctx, suggestionID)
	if err != nil {
		return nil, err
	}
	count, err := s.votes.Count(ctx, suggestionID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &SuggestionWithTally{Suggestion: *suggestion, Votes: count}, nil
}

// ListSuggestions returns suggestions with tallies, most-voted first.
func (s *SuggestionService) ListSuggestions(ctx context.Context, limit, offset int) ([]SuggestionWithTally, error) {
	suggestions, err := s.suggestions.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	items := make([]SuggestionWithTally, 0, len(suggestions))
	for i := range suggestions {
		count, err := s.votes.Count(ctx, suggestions[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		items = append(items, SuggestionWithTally{Suggestion: suggestions[i], Votes: count})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Votes > items[j].Votes
	})
	return items, nil
}

func (s *SuggestionService) getSuggestion(ctx context.Context, suggestionID string) (*domain.Suggestion, error) {
	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("suggestion", map[string]any{"suggestion_id": suggestionID})
		}
		return nil, apperrors.MapError(err)
	}
	return suggestion, nil
}

func (s *SuggestionService) publish(ctx context.Context, event events.Event) []string {
	if s.dispatcher == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		return []string{"notification dispatch failed: " + err.Error()}
	}
	return nil
}

func suggestionRecipient(suggestion *domain.Suggestion) events.Recipient {
	return events.Recipient{
		Name:  suggestion.Author.Name,
		Email: suggestion.Author.Email,
	}
}
