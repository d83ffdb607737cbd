package service

import (
	"context"
	"errors"
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

// casRetries bounds compare-and-swap loops. A conflict means another
// transition landed first; each retry re-reads and re-evaluates legality
// against the new state.
const casRetries = 3

// legalTicketEdges is the complaint state machine's edge table.
var legalTicketEdges = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusSubmitted:  {domain.TicketStatusVerified},
	domain.TicketStatusVerified:   {domain.TicketStatusAssigned},
	domain.TicketStatusAssigned:   {domain.TicketStatusInProgress},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved},
	domain.TicketStatusResolved:   {domain.TicketStatusReopened},
	domain.TicketStatusReopened:   {domain.TicketStatusVerified},
}

func isLegalTicketEdge(from, to domain.TicketStatus) bool {
	for _, candidate := range legalTicketEdges[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ComplaintService owns the complaint ticket state machine.
type ComplaintService struct {
	tickets    repository.TicketRepository
	minter     *identifier.Minter
	sla        *SLAPolicy
	policy     config.PolicyConfig
	clock      Clock
	dispatcher events.Dispatcher
}

// ComplaintDependencies bundles collaborators for the service.
type ComplaintDependencies struct {
	TicketRepo repository.TicketRepository
	Minter     *identifier.Minter
	SLA        *SLAPolicy
	Policy     config.PolicyConfig
	Clock      Clock
	Dispatcher events.Dispatcher
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &ComplaintService{
		tickets:    deps.TicketRepo,
		minter:     deps.Minter,
		sla:        deps.SLA,
		policy:     deps.Policy,
		clock:      clock,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes the complaint intake payload.
type TicketCreateInput struct {
	ReporterName  string
	ReporterPhone string
	ReporterEmail string
	Category      domain.TicketCategory
	Priority      domain.TicketPriority
	Description   string
	Location      *domain.Location
}

// CreateTicket validates the intake payload, mints an identifier, computes
// the SLA deadline and records the initial Submitted event atomically.
func (s *ComplaintService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, []string, error) {
	if err := validateTicketInput(input); err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	id, err := s.minter.Mint(ctx, identifier.PrefixComplaint, now)
	if err != nil {
		return nil, nil, err
	}

	ticket := &domain.Ticket{
		ID:       id,
		Category: input.Category,
		Priority: input.Priority,
		Reporter: domain.Reporter{
			Name:  strings.TrimSpace(input.ReporterName),
			Phone: strings.TrimSpace(input.ReporterPhone),
			Email: strings.TrimSpace(input.ReporterEmail),
		},
		Location:    *input.Location,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		SLADeadline: s.sla.Deadline(input.Priority, now),
	}
	ticket.AppendEvent(domain.TicketStatusSubmitted, now, "Complaint registered")

	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	warnings := s.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		EntityID:  ticket.ID,
		Recipient: ticketRecipient(ticket),
		Payload: events.TicketCreatedPayload{
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			SLADeadline: ticket.SLADeadline,
			District:    ticket.Location.District,
		},
	})
	return ticket, warnings, nil
}

// Transition moves a ticket along a legal edge and appends the timeline
// event. Requesting the status the ticket is already in is a no-op, so
// at-least-once callers can retry safely. Concurrent transitions on the
// same ticket serialize through the store's status-keyed compare-and-swap:
// the loser re-reads and either succeeds against the new state or fails
// with an invalid-transition error.
func (s *ComplaintService) Transition(ctx context.Context, ticketID string, target domain.TicketStatus, note string) (*domain.Ticket, []string, error) {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		ticket, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return nil, nil, apperrors.MapError(err)
		}

		if ticket.Status == target {
			// Duplicate delivery of the same transition: same state, no
			// extra timeline event.
			return ticket, nil, nil
		}
		if !isLegalTicketEdge(ticket.Status, target) {
			return nil, nil, apperrors.NewInvalidTransition(string(ticket.Status), string(target))
		}

		now := s.clock.Now()
		if target == domain.TicketStatusReopened {
			if err := s.checkReopenWindow(ticket, now); err != nil {
				return nil, nil, err
			}
		}
		// Timeline stays non-decreasing even if the clock jumps backwards.
		if last := ticket.Timeline[len(ticket.Timeline)-1].Timestamp; now.Before(last) {
			now = last
		}

		previous := ticket.Status
		ticket.AppendEvent(target, now, note)

		err = s.tickets.UpdateStatus(ctx, ticket, previous)
		if err == nil {
			warnings := s.publish(ctx, events.Event{
				Type:      events.EventTicketStatusChanged,
				EntityID:  ticket.ID,
				Recipient: ticketRecipient(ticket),
				Payload: events.TicketStatusChangedPayload{
					OldStatus: previous,
					NewStatus: target,
					Note:      note,
				},
			})
			return ticket, warnings, nil
		}
		if errors.Is(err, repository.ErrStatusConflict) {
			lastErr = err
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	return nil, nil, apperrors.NewConflict("ticket is being updated concurrently", map[string]any{"ticket_id": ticketID, "cause": lastErr.Error()})
}

// IsBreached reports whether the ticket missed its SLA deadline at now.
// Read-only.
func (s *ComplaintService) IsBreached(ctx context.Context, ticketID string, now time.Time) (bool, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return false, apperrors.MapError(err)
	}
	return ticket.Breached(now), nil
}

// GetTicket fetches a ticket by its public identifier.
func (s *ComplaintService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the dashboard filter.
func (s *ComplaintService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// checkReopenWindow allows Resolved -> Reopened only within the configured
// window after the resolving event.
func (s *ComplaintService) checkReopenWindow(ticket *domain.Ticket, now time.Time) error {
	var resolvedAt time.Time
	for i := len(ticket.Timeline) - 1; i >= 0; i-- {
		if ticket.Timeline[i].Status == domain.TicketStatusResolved {
			resolvedAt = ticket.Timeline[i].Timestamp
			break
		}
	}
	if resolvedAt.IsZero() {
		return apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusReopened))
	}
	if now.After(resolvedAt.Add(s.policy.ReopenWindow())) {
		return apperrors.NewTransitionExpired("reopen window has expired")
	}
	return nil
}

func (s *ComplaintService) publish(ctx context.Context, event events.Event) []string {
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

func ticketRecipient(ticket *domain.Ticket) events.Recipient {
	return events.Recipient{
		Name:  ticket.Reporter.Name,
		Phone: ticket.Reporter.Phone,
		Email: ticket.Reporter.Email,
	}
}

func validateTicketInput(input TicketCreateInput) error {
	if strings.TrimSpace(input.ReporterName) == "" {
		return fieldError("name", "reporter name is required")
	}
	if strings.TrimSpace(input.ReporterPhone) == "" && strings.TrimSpace(input.ReporterEmail) == "" {
		return fieldError("contact", "phone or email is required")
	}
	if !domain.ValidCategory(input.Category) {
		return fieldError("category", "unknown complaint category")
	}
	if !domain.ValidPriority(input.Priority) {
		return fieldError("priority", "unknown priority tier")
	}
	if strings.TrimSpace(input.Description) == "" {
		return fieldError("description", "description is required")
	}
	if input.Location == nil {
		return fieldError("location", "location is required")
	}
	if !input.Location.InBounds() {
		return fieldError("location", "coordinates out of range")
	}
	return nil
}

func fieldError(field, message string) error {
	return apperrors.NewValidationError(message, map[string]any{"field": field})
}
