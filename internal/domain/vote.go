package domain

import "time"

// VoteOutcome is the result of a cast attempt. A repeat vote from the same
// identity is reported as AlreadyVoted, not an error.
type VoteOutcome string

const (
	VoteAccepted     VoteOutcome = "ACCEPTED"
	VoteAlreadyVoted VoteOutcome = "ALREADY_VOTED"
)

// Vote records one voter's support for a suggestion. At most one vote may
// exist per (SuggestionID, VoterIdentity) pair; the ledger enforces this.
type Vote struct {
	SuggestionID  string
	VoterIdentity string
	CastAt        time.Time
}
