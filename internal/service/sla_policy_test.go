package service

import (
	"testing"
	"time"

	"github.com/spec-kit/complaint-engine/internal/config"
	"github.com/spec-kit/complaint-engine/internal/domain"
)

func TestSLADeadlines(t *testing.T) {
	policy := NewSLAPolicy(config.SLAConfig{HighHours: 2, MediumHours: 24, LowHours: 48})
	submitted := time.Date(2024, 12, 20, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		priority domain.TicketPriority
		want     time.Time
	}{
		{domain.TicketPriorityHigh, time.Date(2024, 12, 20, 12, 30, 0, 0, time.UTC)},
		{domain.TicketPriorityMedium, time.Date(2024, 12, 21, 10, 30, 0, 0, time.UTC)},
		{domain.TicketPriorityLow, time.Date(2024, 12, 22, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := policy.Deadline(tc.priority, submitted); !got.Equal(tc.want) {
			t.Errorf("Deadline(%s) = %v, want %v", tc.priority, got, tc.want)
		}
	}
}

func TestSLADeadlineIsPure(t *testing.T) {
	policy := NewSLAPolicy(config.SLAConfig{HighHours: 2, MediumHours: 24, LowHours: 48})
	submitted := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	first := policy.Deadline(domain.TicketPriorityMedium, submitted)
	second := policy.Deadline(domain.TicketPriorityMedium, submitted)
	if !first.Equal(second) {
		t.Fatalf("repeated computation differs: %v vs %v", first, second)
	}
}

func TestSLAConfigDefaults(t *testing.T) {
	policy := NewSLAPolicy(config.SLAConfig{})

	if got := policy.Window(domain.TicketPriorityHigh); got != 2*time.Hour {
		t.Errorf("HIGH window = %v, want 2h", got)
	}
	if got := policy.Window(domain.TicketPriorityMedium); got != 24*time.Hour {
		t.Errorf("MEDIUM window = %v, want 24h", got)
	}
	if got := policy.Window(domain.TicketPriorityLow); got != 48*time.Hour {
		t.Errorf("LOW window = %v, want 48h", got)
	}
}

func TestBreachBoundary(t *testing.T) {
	deadline := time.Date(2024, 12, 20, 12, 30, 0, 0, time.UTC)
	ticket := &domain.Ticket{Status: domain.TicketStatusInProgress, SLADeadline: deadline}

	if ticket.Breached(deadline) {
		t.Error("breached exactly at deadline, want false")
	}
	if !ticket.Breached(deadline.Add(time.Second)) {
		t.Error("not breached past deadline, want true")
	}

	ticket.Status = domain.TicketStatusResolved
	if ticket.Breached(deadline.Add(time.Hour)) {
		t.Error("resolved ticket breached, want false")
	}
}
