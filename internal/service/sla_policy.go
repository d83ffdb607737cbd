package service

import (
	"time"

	"github.com/spec-kit/complaint-engine/internal/config"
	"github.com/spec-kit/complaint-engine/internal/domain"
)

// SLAPolicy maps a ticket's priority tier to its target resolution
// deadline. Pure: identical inputs always yield identical deadlines.
type SLAPolicy struct {
	windows map[domain.TicketPriority]time.Duration
}

// NewSLAPolicy builds a policy from configured window hours. Zero or
// negative values fall back to the published 2/24/48 hour commitments.
func NewSLAPolicy(cfg config.SLAConfig) *SLAPolicy {
	high := hoursOrDefault(cfg.HighHours, 2)
	medium := hoursOrDefault(cfg.MediumHours, 24)
	low := hoursOrDefault(cfg.LowHours, 48)
	return &SLAPolicy{
		windows: map[domain.TicketPriority]time.Duration{
			domain.TicketPriorityHigh:   high,
			domain.TicketPriorityMedium: medium,
			domain.TicketPriorityLow:    low,
		},
	}
}

// Window returns the resolution window for the priority tier.
func (p *SLAPolicy) Window(priority domain.TicketPriority) time.Duration {
	return p.windows[priority]
}

// Deadline computes the target resolution time for a ticket submitted at
// submittedAt with the given priority.
func (p *SLAPolicy) Deadline(priority domain.TicketPriority, submittedAt time.Time) time.Time {
	return submittedAt.Add(p.windows[priority])
}

func hoursOrDefault(hours, fallback int) time.Duration {
	if hours <= 0 {
		hours = fallback
	}
	return time.Duration(hours) * time.Hour
}
