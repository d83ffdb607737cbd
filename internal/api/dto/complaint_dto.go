package dto

import (
	"time"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// LocationPayload carries complaint coordinates and optional address parts.
type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	District  string  `json:"district,omitempty"`
	Pincode   string  `json:"pincode,omitempty"`
}

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Name        string                `json:"name"`
	Phone       string                `json:"phone"`
	Email       string                `json:"email"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Description string                `json:"description"`
	Location    *LocationPayload      `json:"location"`
}

// TransitionRequest payload for staff-driven status moves.
type TransitionRequest struct {
	Status domain.TicketStatus `json:"status"`
	Note   string              `json:"note"`
}

// StatusEventResponse is one timeline entry.
type StatusEventResponse struct {
	Status    domain.TicketStatus `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Note      string              `json:"note,omitempty"`
}

// ComplaintResponse provides full ticket info for tracking.
type ComplaintResponse struct {
	ID          string                `json:"id"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	Description string                `json:"description"`
	Location    LocationPayload       `json:"location"`
	CreatedAt   time.Time             `json:"created_at"`
	SLADeadline time.Time             `json:"sla_deadline"`
	Breached    bool                  `json:"breached"`
	Timeline    []StatusEventResponse `json:"timeline"`
}

// ComplaintSummary is the staff list row.
type ComplaintSummary struct {
	ID          string                `json:"id"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	District    string                `json:"district,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	SLADeadline time.Time             `json:"sla_deadline"`
	Breached    bool                  `json:"breached"`
}
