package domain

import "time"

// SuggestionStatus enumerates the suggestion review workflow states.
// Implemented and Rejected are terminal.
type SuggestionStatus string

const (
	SuggestionStatusPendingReview SuggestionStatus = "PENDING_REVIEW"
	SuggestionStatusVotingOpen    SuggestionStatus = "VOTING_OPEN"
	SuggestionStatusImplemented   SuggestionStatus = "IMPLEMENTED"
	SuggestionStatusRejected      SuggestionStatus = "REJECTED"
)

// Terminal reports whether no further workflow moves are possible.
func (s SuggestionStatus) Terminal() bool {
	return s == SuggestionStatusImplemented || s == SuggestionStatusRejected
}

// Author identifies who submitted a suggestion.
type Author struct {
	Name  string
	Email string
}

// Suggestion is a community improvement idea subject to review and a
// time-boxed public vote. VotingOpensAt/VotingClosesAt are nil until review
// completes. Vote counts live in the vote ledger only and are never cached
// on the suggestion itself.
type Suggestion struct {
	ID             string
	Author         Author
	Title          string
	Description    string
	Category       string
	Status         SuggestionStatus
	CreatedAt      time.Time
	VotingOpensAt  *time.Time
	VotingClosesAt *time.Time
}

// VotingWindowContains reports whether now falls inside the voting window.
func (s *Suggestion) VotingWindowContains(now time.Time) bool {
	if s.VotingOpensAt == nil || s.VotingClosesAt == nil {
		return false
	}
	return !now.Before(*s.VotingOpensAt) && !now.After(*s.VotingClosesAt)
}

// Clone returns a copy with its own timestamp pointers.
func (s *Suggestion) Clone() *Suggestion {
	cp := *s
	if s.VotingOpensAt != nil {
		opens := *s.VotingOpensAt
		cp.VotingOpensAt = &opens
	}
	if s.VotingClosesAt != nil {
		closes := *s.VotingClosesAt
		cp.VotingClosesAt = &closes
	}
	return &cp
}
