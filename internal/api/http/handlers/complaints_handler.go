package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-engine/internal/api/dto"
	"github.com/spec-kit/complaint-engine/internal/domain"
	"github.com/spec-kit/complaint-engine/internal/repository"
	"github.com/spec-kit/complaint-engine/internal/service"
	apperrors "github.com/spec-kit/complaint-engine/pkg/util/errorutil"
)

// ComplaintsHandler exposes complaint intake, tracking and staff
// transition endpoints.
type ComplaintsHandler struct {
	engine *service.LifecycleEngine
	clock  service.Clock
}

// NewComplaintsHandler constructs the handler.
func NewComplaintsHandler(engine *service.LifecycleEngine, clock service.Clock) *ComplaintsHandler {
	if clock == nil {
		clock = service.SystemClock{}
	}
	return &ComplaintsHandler{engine: engine, clock: clock}
}

// CreateComplaint POST /complaints.
func (h *ComplaintsHandler) CreateComplaint(c *fiber.Ctx) error {
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		ReporterName:  req.Name,
		ReporterPhone: req.Phone,
		ReporterEmail: req.Email,
		Category:      req.Category,
		Priority:      req.Priority,
		Description:   req.Description,
	}
	if req.Location != nil {
		input.Location = &domain.Location{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
			Address:   req.Location.Address,
			City:      req.Location.City,
			District:  req.Location.District,
			Pincode:   req.Location.Pincode,
		}
	}

	ticket, warnings, err := h.engine.CreateTicket(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(envelope(complaintResponse(ticket, h.clock.Now().After(ticket.SLADeadline) && ticket.Status != domain.TicketStatusResolved), warnings))
}

// GetComplaint GET /complaints/:id.
func (h *ComplaintsHandler) GetComplaint(c *fiber.Ctx) error {
	ticket, err := h.engine.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(envelope(complaintResponse(ticket, ticket.Breached(h.clock.Now())), nil))
}

// ListComplaints GET /complaints (staff dashboard).
func (h *ComplaintsHandler) ListComplaints(c *fiber.Ctx) error {
	filter := h.parseFilter(c)
	tickets, err := h.engine.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	now := h.clock.Now()
	items := make([]dto.ComplaintSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, complaintSummary(&tickets[i], tickets[i].Breached(now)))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Transition POST /complaints/:id/transition (staff only).
func (h *ComplaintsHandler) Transition(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, warnings, err := h.engine.TransitionTicket(c.Context(), c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(envelope(complaintResponse(ticket, ticket.Breached(h.clock.Now())), warnings))
}

func (h *ComplaintsHandler) parseFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	for _, raw := range splitQuery(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(raw))
	}
	for _, raw := range splitQuery(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(raw))
	}
	for _, raw := range splitQuery(c.Query("category")) {
		filter.Categories = append(filter.Categories, domain.TicketCategory(raw))
	}
	if district := c.Query("district"); district != "" {
		filter.District = &district
	}
	if c.Query("breached") == "true" {
		now := h.clock.Now()
		filter.BreachedBy = &now
	}
	return filter
}

func complaintResponse(ticket *domain.Ticket, breached bool) dto.ComplaintResponse {
	timeline := make([]dto.StatusEventResponse, 0, len(ticket.Timeline))
	for _, event := range ticket.Timeline {
		timeline = append(timeline, dto.StatusEventResponse{
			Status:    event.Status,
			Timestamp: event.Timestamp,
			Note:      event.Note,
		})
	}
	return dto.ComplaintResponse{
		ID:          ticket.ID,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		Description: ticket.Description,
		Location: dto.LocationPayload{
			Latitude:  ticket.Location.Latitude,
			Longitude: ticket.Location.Longitude,
			Address:   ticket.Location.Address,
			City:      ticket.Location.City,
			District:  ticket.Location.District,
			Pincode:   ticket.Location.Pincode,
		},
		CreatedAt:   ticket.CreatedAt,
		SLADeadline: ticket.SLADeadline,
		Breached:    breached,
		Timeline:    timeline,
	}
}

func complaintSummary(ticket *domain.Ticket, breached bool) dto.ComplaintSummary {
	return dto.ComplaintSummary{
		ID:          ticket.ID,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		District:    ticket.Location.District,
		CreatedAt:   ticket.CreatedAt,
		SLADeadline: ticket.SLADeadline,
		Breached:    breached,
	}
}

func envelope(data any, warnings []string) fiber.Map {
	response := fiber.Map{"data": data}
	if len(warnings) > 0 {
		response["warnings"] = warnings
	}
	return response
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
