package domain

import "time"

// TicketStatus enumerates lifecycle states for complaint tickets.
type TicketStatus string

const (
	TicketStatusSubmitted  TicketStatus = "SUBMITTED"
	TicketStatusVerified   TicketStatus = "VERIFIED"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusReopened   TicketStatus = "REOPENED"
)

// TicketPriority enumerates SLA urgency tiers.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityLow    TicketPriority = "LOW"
)

// TicketCategory enumerates complaint categories from the intake form.
type TicketCategory string

const (
	CategoryPowerOutage        TicketCategory = "POWER_OUTAGE"
	CategoryVoltageFluctuation TicketCategory = "VOLTAGE_FLUCTUATION"
	CategoryDamagedPole        TicketCategory = "DAMAGED_POLE"
	CategoryBrokenWire         TicketCategory = "BROKEN_WIRE"
	CategoryTransformerIssue   TicketCategory = "TRANSFORMER_ISSUE"
	CategoryMeterProblem       TicketCategory = "METER_PROBLEM"
	CategoryBillingIssue       TicketCategory = "BILLING_ISSUE"
	CategoryOther              TicketCategory = "OTHER"
)

// ValidCategory reports whether the value is a known category.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case CategoryPowerOutage, CategoryVoltageFluctuation, CategoryDamagedPole,
		CategoryBrokenWire, CategoryTransformerIssue, CategoryMeterProblem,
		CategoryBillingIssue, CategoryOther:
		return true
	}
	return false
}

// ValidPriority reports whether the value is a known priority tier.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// Reporter holds contact details of the person who filed the complaint.
type Reporter struct {
	Name  string
	Phone string
	Email string
}

// Location pinpoints where the issue was observed. Latitude and longitude
// come from the device; address fields are optional refinements.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
	City      string
	District  string
	Pincode   string
}

// InBounds reports whether coordinates are within valid ranges.
func (l Location) InBounds() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// StatusEvent is one immutable entry in a ticket's timeline. Entries are
// created once per transition and never mutated or removed.
type StatusEvent struct {
	Status    TicketStatus
	Timestamp time.Time
	Note      string
}

// Ticket is the aggregate for a filed complaint. Category and Priority are
// immutable after creation. Status always equals the status of the last
// timeline entry; the timeline is append-only and sorted by time ascending.
type Ticket struct {
	ID          string
	Category    TicketCategory
	Priority    TicketPriority
	Reporter    Reporter
	Location    Location
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	SLADeadline time.Time
	Timeline    []StatusEvent
}

// AppendEvent records a transition on the timeline and keeps Status in sync
// with the last entry.
func (t *Ticket) AppendEvent(status TicketStatus, at time.Time, note string) {
	t.Timeline = append(t.Timeline, StatusEvent{Status: status, Timestamp: at, Note: note})
	t.Status = status
}

// Breached reports whether the ticket missed its SLA deadline: unresolved
// and past the deadline.
func (t *Ticket) Breached(now time.Time) bool {
	return t.Status != TicketStatusResolved && now.After(t.SLADeadline)
}

// Clone returns a deep copy so callers never share timeline backing arrays
// with the store.
func (t *Ticket) Clone() *Ticket {
	cp := *t
	cp.Timeline = make([]StatusEvent, len(t.Timeline))
	copy(cp.Timeline, t.Timeline)
	return &cp
}
