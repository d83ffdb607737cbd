package events

import (
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventSuggestionCreated   EventType = "suggestion_created"
	EventVotingOpened        EventType = "voting_opened"
	EventVotingClosed        EventType = "voting_closed"
	EventVoteCast            EventType = "vote_cast"
)

// Recipient carries the contact the notification should reach.
type Recipient struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Event represents a domain event emitted by the engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Recipient Recipient   `json:"recipient"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	SLADeadline time.Time             `json:"sla_deadline"`
	District    string                `json:"district,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// SuggestionCreatedPayload payload.
type SuggestionCreatedPayload struct {
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// VotingOpenedPayload payload.
type VotingOpenedPayload struct {
	OpensAt  time.Time `json:"opens_at"`
	ClosesAt time.Time `json:"closes_at"`
}

// VotingClosedPayload payload.
type VotingClosedPayload struct {
	Outcome    domain.SuggestionStatus `json:"outcome"`
	FinalTally int                     `json:"final_tally"`
}

// VoteCastPayload payload.
type VoteCastPayload struct {
	Outcome domain.VoteOutcome `json:"outcome"`
}
