package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// memoryTicketRepository keeps tickets in process memory. Each ticket gets
// its own serialization point so transitions on distinct tickets never
// contend; the entry map itself is a sync.Map with atomic insert-if-absent.
type memoryTicketRepository struct {
	entries sync.Map // id -> *ticketEntry
}

type ticketEntry struct {
	mu     sync.Mutex
	ticket *domain.Ticket
}

// NewMemoryTicketRepository instantiates the in-memory repository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{}
}

func (r *memoryTicketRepository) Insert(_ context.Context, ticket *domain.Ticket) error {
	entry := &ticketEntry{ticket: ticket.Clone()}
	if _, loaded := r.entries.LoadOrStore(ticket.ID, entry); loaded {
		return ErrDuplicateID
	}
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	val, ok := r.entries.Load(id)
	if !ok {
		return nil, ErrNotFound
	}
	entry := val.(*ticketEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.ticket.Clone(), nil
}

func (r *memoryTicketRepository) UpdateStatus(_ context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	val, ok := r.entries.Load(ticket.ID)
	if !ok {
		return ErrNotFound
	}
	entry := val.(*ticketEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.ticket.Status != expected {
		return ErrStatusConflict
	}
	entry.ticket = ticket.Clone()
	return nil
}

func (r *memoryTicketRepository) ListWithFilter(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	tickets := []domain.Ticket{}
	r.entries.Range(func(_, val any) bool {
		entry := val.(*ticketEntry)
		entry.mu.Lock()
		ticket := entry.ticket.Clone()
		entry.mu.Unlock()
		if matchesTicketFilter(ticket, filter) {
			tickets = append(tickets, *ticket)
		}
		return true
	})

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(tickets) {
			return []domain.Ticket{}, nil
		}
		tickets = tickets[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tickets) {
		tickets = tickets[:filter.Limit]
	}
	return tickets, nil
}

func (r *memoryTicketRepository) LastSequence(_ context.Context, _ int) (uint64, error) {
	return 0, nil
}

func matchesTicketFilter(ticket *domain.Ticket, filter TicketFilter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
		return false
	}
	if len(filter.Categories) > 0 && !containsCategory(filter.Categories, ticket.Category) {
		return false
	}
	if filter.District != nil && ticket.Location.District != *filter.District {
		return false
	}
	if filter.BreachedBy != nil && !ticket.Breached(*filter.BreachedBy) {
		return false
	}
	if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

func containsStatus(values []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsPriority(values []domain.TicketPriority, v domain.TicketPriority) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsCategory(values []domain.TicketCategory, v domain.TicketCategory) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
