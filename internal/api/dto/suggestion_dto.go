package dto

import (
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// CreateSuggestionRequest payload.
type CreateSuggestionRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// OpenVotingRequest payload.
type OpenVotingRequest struct {
	DurationDays int `json:"duration_days"`
}

// CloseVotingRequest payload.
type CloseVotingRequest struct {
	Outcome domain.SuggestionStatus `json:"outcome"`
}

// CastVoteRequest payload. The email is hashed into an opaque voter
// identity and never stored alongside the vote.
type CastVoteRequest struct {
	Email string `json:"email"`
}

// CastVoteResponse reports the idempotent outcome.
type CastVoteResponse struct {
	Outcome domain.VoteOutcome `json:"outcome"`
	Votes   int                `json:"votes"`
}

// SuggestionResponse provides suggestion details with the live tally.
type SuggestionResponse struct {
	ID             string                  `json:"id"`
	AuthorName     string                  `json:"author_name"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Category       string                  `json:"category,omitempty"`
	Status         domain.SuggestionStatus `json:"status"`
	CreatedAt      time.Time               `json:"created_at"`
	VotingOpensAt  *time.Time              `json:"voting_opens_at,omitempty"`
	VotingClosesAt *time.Time              `json:"voting_closes_at,omitempty"`
	Votes          int                     `json:"votes"`
	DaysLeft       *int                    `json:"days_left,omitempty"`
}
