package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

func newStoredTicket(id string, status domain.TicketStatus, createdAt time.Time) *domain.Ticket {
	ticket := &domain.Ticket{
		ID:          id,
		Category:    domain.CategoryPowerOutage,
		Priority:    domain.TicketPriorityHigh,
		Reporter:    domain.Reporter{Name: "Asha", Phone: "9876543210"},
		Location:    domain.Location{Latitude: 28.6, Longitude: 77.2, District: "Central"},
		Description: "outage",
		CreatedAt:   createdAt,
		SLADeadline: createdAt.Add(2 * time.Hour),
	}
	ticket.AppendEvent(domain.TicketStatusSubmitted, createdAt, "")
	if status != domain.TicketStatusSubmitted {
		ticket.AppendEvent(status, createdAt.Add(time.Minute), "")
	}
	return ticket
}

func TestMemoryTicketInsertDuplicate(t *testing.T) {
	repo := NewMemoryTicketRepository()
	created := time.Date(2024, 12, 20, 10, 30, 0, 0, time.UTC)

	if err := repo.Insert(context.Background(), newStoredTicket("CMP-2024-000001", domain.TicketStatusSubmitted, created)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := repo.Insert(context.Background(), newStoredTicket("CMP-2024-000001", domain.TicketStatusSubmitted, created))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

func TestMemoryTicketUpdateStatusCAS(t *testing.T) {
	repo := NewMemoryTicketRepository()
	created := time.Date(2024, 12, 20, 10, 30, 0, 0, time.UTC)
	if err := repo.Insert(context.Background(), newStoredTicket("CMP-2024-000001", domain.TicketStatusSubmitted, created)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ticket, err := repo.GetByID(context.Background(), "CMP-2024-000001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	ticket.AppendEvent(domain.TicketStatusVerified, created.Add(time.Minute), "")
	if err := repo.UpdateStatus(context.Background(), ticket, domain.TicketStatusSubmitted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// A writer holding the stale pre-update snapshot must lose.
	stale := newStoredTicket("CMP-2024-000001", domain.TicketStatusSubmitted, created)
	stale.AppendEvent(domain.TicketStatusVerified, created.Add(2*time.Minute), "")
	err = repo.UpdateStatus(context.Background(), stale, domain.TicketStatusSubmitted)
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("err = %v, want ErrStatusConflict", err)
	}

	err = repo.UpdateStatus(context.Background(), stale, domain.TicketStatusResolved)
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("err = %v, want ErrStatusConflict on wrong expectation", err)
	}
}

func TestMemoryTicketUpdateStatusNotFound(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ticket := newStoredTicket("CMP-2024-000009", domain.TicketStatusSubmitted, time.Now())
	if err := repo.UpdateStatus(context.Background(), ticket, domain.TicketStatusSubmitted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryTicketGetReturnsCopy(t *testing.T) {
	repo := NewMemoryTicketRepository()
	created := time.Date(2024, 12, 20, 10, 30, 0, 0, time.UTC)
	if err := repo.Insert(context.Background(), newStoredTicket("CMP-2024-000001", domain.TicketStatusSubmitted, created)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	first, _ := repo.GetByID(context.Background(), "CMP-2024-000001")
	first.Status = domain.TicketStatusResolved
	first.Timeline[0].Note = "tampered"

	second, _ := repo.GetByID(context.Background(), "CMP-2024-000001")
	if second.Status != domain.TicketStatusSubmitted || second.Timeline[0].Note != "" {
		t.Fatal("mutating a returned ticket leaked into the store")
	}
}

func TestMemoryTicketListFilterAndPagination(t *testing.T) {
	repo := NewMemoryTicketRepository()
	base := time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC)

	ids := []string{"CMP-2024-000001", "CMP-2024-000002", "CMP-2024-000003"}
	for i, id := range ids {
		ticket := newStoredTicket(id, domain.TicketStatusSubmitted, base.Add(time.Duration(i)*time.Hour))
		if i == 2 {
			ticket.Location.District = "Northern"
			ticket.Priority = domain.TicketPriorityLow
			ticket.SLADeadline = ticket.CreatedAt.Add(48 * time.Hour)
		}
		if err := repo.Insert(context.Background(), ticket); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	all, err := repo.ListWithFilter(context.Background(), TicketFilter{})
	if err != nil {
		t.Fatalf("ListWithFilter: %v", err)
	}
	if len(all) != 3 || all[0].ID != "CMP-2024-000003" {
		t.Fatalf("unfiltered list = %+v, want newest first", all)
	}

	district := "Northern"
	byDistrict, _ := repo.ListWithFilter(context.Background(), TicketFilter{District: &district})
	if len(byDistrict) != 1 || byDistrict[0].ID != "CMP-2024-000003" {
		t.Fatalf("district filter = %+v", byDistrict)
	}

	// Only the two HIGH tickets have passed their 2h deadline by base+5h.
	breachedAt := base.Add(5 * time.Hour)
	breached, _ := repo.ListWithFilter(context.Background(), TicketFilter{BreachedBy: &breachedAt})
	if len(breached) != 2 {
		t.Fatalf("breached = %d tickets, want 2", len(breached))
	}

	page, _ := repo.ListWithFilter(context.Background(), TicketFilter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].ID != "CMP-2024-000002" {
		t.Fatalf("page = %+v, want CMP-2024-000002", page)
	}

	empty, _ := repo.ListWithFilter(context.Background(), TicketFilter{Offset: 10})
	if len(empty) != 0 {
		t.Fatalf("out-of-range offset = %+v, want empty", empty)
	}
}
