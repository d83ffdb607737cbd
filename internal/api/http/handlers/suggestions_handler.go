package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-engine/internal/api/dto"
	"github.com/spec-kit/complaint-engine/internal/auth"
	"github.com/spec-kit/complaint-engine/internal/domain"
	"github.com/spec-kit/complaint-engine/internal/service"
	apperrors "github.com/spec-kit/complaint-engine/pkg/util/errorutil"
)

// SuggestionsHandler exposes suggestion submission, listing, voting and
// staff review endpoints.
type SuggestionsHandler struct {
	engine *service.LifecycleEngine
	voters *auth.VoterIdentityDeriver
	clock  service.Clock
}

// NewSuggestionsHandler constructs the handler.
func NewSuggestionsHandler(engine *service.LifecycleEngine, voters *auth.VoterIdentityDeriver, clock service.Clock) *SuggestionsHandler {
	if clock == nil {
		clock = service.SystemClock{}
	}
	return &SuggestionsHandler{engine: engine, voters: voters, clock: clock}
}

// CreateSuggestion POST /suggestions.
func (h *SuggestionsHandler) CreateSuggestion(c *fiber.Ctx) error {
	var req dto.CreateSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	suggestion, warnings, err := h.engine.CreateSuggestion(c.Context(), service.SuggestionCreateInput{
		AuthorName:  req.Name,
		AuthorEmail: req.Email,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(envelope(h.suggestionResponse(suggestion, 0), warnings))
}

// ListSuggestions GET /suggestions, most-voted first.
func (h *SuggestionsHandler) ListSuggestions(c *fiber.Ctx) error {
	items, err := h.engine.ListSuggestions(c.Context(), parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	responses := make([]dto.SuggestionResponse, 0, len(items))
	for i := range items {
		responses = append(responses, h.suggestionResponse(&items[i].Suggestion, items[i].Votes))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// GetSuggestion GET /suggestions/:id.
func (h *SuggestionsHandler) GetSuggestion(c *fiber.Ctx) error {
	item, err := h.engine.GetSuggestion(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(envelope(h.suggestionResponse(&item.Suggestion, item.Votes), nil))
}

// CastVote POST /suggestions/:id/votes.
func (h *SuggestionsHandler) CastVote(c *fiber.Ctx) error {
	var req dto.CastVoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	voterIdentity := h.voters.Derive(req.Email)
	if voterIdentity == "" {
		return apperrors.NewValidationError("email required", map[string]any{"field": "email"})
	}

	suggestionID := c.Params("id")
	outcome, warnings, err := h.engine.CastVote(c.Context(), suggestionID, voterIdentity)
	if err != nil {
		return err
	}
	votes, err := h.engine.Tally(c.Context(), suggestionID)
	if err != nil {
		return err
	}
	return c.JSON(envelope(dto.CastVoteResponse{Outcome: outcome, Votes: votes}, warnings))
}

// OpenVoting POST /suggestions/:id/voting/open (staff only).
func (h *SuggestionsHandler) OpenVoting(c *fiber.Ctx) error {
	var req dto.OpenVotingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	suggestion, warnings, err := h.engine.OpenVoting(c.Context(), c.Params("id"), req.DurationDays)
	if err != nil {
		return err
	}
	return c.JSON(envelope(h.suggestionResponse(suggestion, 0), warnings))
}

// CloseVoting POST /suggestions/:id/voting/close (staff only).
func (h *SuggestionsHandler) CloseVoting(c *fiber.Ctx) error {
	var req dto.CloseVotingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	suggestion, warnings, err := h.engine.CloseVoting(c.Context(), c.Params("id"), req.Outcome)
	if err != nil {
		return err
	}
	tally, err := h.engine.Tally(c.Context(), suggestion.ID)
	if err != nil {
		return err
	}
	return c.JSON(envelope(h.suggestionResponse(suggestion, tally), warnings))
}

func (h *SuggestionsHandler) suggestionResponse(suggestion *domain.Suggestion, votes int) dto.SuggestionResponse {
	response := dto.SuggestionResponse{
		ID:             suggestion.ID,
		AuthorName:     suggestion.Author.Name,
		Title:          suggestion.Title,
		Description:    suggestion.Description,
		Category:       suggestion.Category,
		Status:         suggestion.Status,
		CreatedAt:      suggestion.CreatedAt,
		VotingOpensAt:  suggestion.VotingOpensAt,
		VotingClosesAt: suggestion.VotingClosesAt,
		Votes:          votes,
	}
	if suggestion.Status == domain.SuggestionStatusVotingOpen && suggestion.VotingClosesAt != nil {
		remaining := suggestion.VotingClosesAt.Sub(h.clock.Now())
		if remaining > 0 {
			days := int(math.Ceil(remaining.Hours() / 24))
			response.DaysLeft = &days
		}
	}
	return response
}
