package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler exposes ticket workflow and search endpoints.
type TicketsHandler struct {
	ticketService *service.TicketService
	searchService *service.SearchService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, searchService *service.SearchService) *TicketsHandler {
	return &TicketsHandler{ticketService: ticketService, searchService: searchService}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.ticketService.CreateTicket(c.UserContext(), principal.User.ID, service.TicketCreateInput{
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Content:        req.Content,
		Type:           domain.TicketType(req.Type),
		Urgency:        domain.Weight(req.Urgency),
		Impact:         domain.Weight(req.Impact),
		Priority:       domain.Weight(req.Priority),
		Via:            domain.ViaWebapp,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Search handles GET /tickets. The q parameter carries the search query;
// when absent the default view shows open tickets.
func (h *TicketsHandler) Search(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}

	rawQuery := c.Query("q")
	if strings.TrimSpace(rawQuery) == "" {
		rawQuery = "status:open"
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return apperrors.NewValidationError("invalid page", map[string]any{"page": raw})
		}
		page = parsed
	}

	result, err := h.searchService.SearchTickets(c.UserContext(), rawQuery, page)
	if err != nil {
		return err
	}

	tickets := make([]dto.TicketSummary, 0, len(result.Tickets))
	for i := range result.Tickets {
		tickets = append(tickets, dto.FromTicket(&result.Tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.SearchResponse{
		Tickets: tickets,
		Total:   result.Total,
		Page:    result.Page,
	}})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}

	ticket, messages, err := h.ticketService.GetTicket(c.UserContext(), ticketID)
	if err != nil {
		return err
	}

	conversation := make([]dto.MessageSummary, 0, len(messages))
	for i := range messages {
		conversation = append(conversation, dto.FromMessage(&messages[i]))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket":   dto.FromTicket(ticket),
		"messages": conversation,
	}})
}

// GetByUID handles GET /tickets/uid/:uid.
func (h *TicketsHandler) GetByUID(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}

	ticket, messages, err := h.ticketService.GetTicketByUID(c.UserContext(), c.Params("uid"))
	if err != nil {
		return err
	}

	conversation := make([]dto.MessageSummary, 0, len(messages))
	for i := range messages {
		conversation = append(conversation, dto.FromMessage(&messages[i]))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"ticket":   dto.FromTicket(ticket),
		"messages": conversation,
	}})
}

// Assign handles POST /tickets/:id/assignee.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}

	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID <= 0 {
		return apperrors.NewValidationError("assignee_id required", nil)
	}

	ticket, err := h.ticketService.AssignTicket(c.UserContext(), principal.User.ID, ticketID, req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Approve handles POST /tickets/:id/approve.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	if err := h.ticketService.ApproveTicket(c.UserContext(), principal.User.ID, ticketID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "approved"}})
}

// PostAnswer handles POST /tickets/:id/messages.
func (h *TicketsHandler) PostAnswer(c *fiber.Ctx) error {
	return h.postMessage(c, h.ticketService.PostAnswer)
}

// PostSolution handles POST /tickets/:id/solution.
func (h *TicketsHandler) PostSolution(c *fiber.Ctx) error {
	return h.postMessage(c, h.ticketService.PostSolution)
}

// ApproveSolution handles POST /tickets/:id/solution/approve.
func (h *TicketsHandler) ApproveSolution(c *fiber.Ctx) error {
	return h.solutionDecision(c, h.ticketService.ApproveSolution)
}

// RefuseSolution handles POST /tickets/:id/solution/refuse.
func (h *TicketsHandler) RefuseSolution(c *fiber.Ctx) error {
	return h.solutionDecision(c, h.ticketService.RefuseSolution)
}

// AddObserver handles PUT /tickets/:id/observers/me.
func (h *TicketsHandler) AddObserver(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.ticketService.AddObserver(c.UserContext(), ticketID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// RemoveObserver handles DELETE /tickets/:id/observers/me.
func (h *TicketsHandler) RemoveObserver(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.ticketService.RemoveObserver(c.UserContext(), ticketID, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// RecordTime handles POST /tickets/:id/time.
func (h *TicketsHandler) RecordTime(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}

	var req dto.RecordTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	entries, err := h.ticketService.RecordTimeSpent(c.UserContext(), ticketID, req.ContractID, req.RealMinutes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": entries})
}

// ListTime handles GET /tickets/:id/time.
func (h *TicketsHandler) ListTime(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	entries, err := h.ticketService.ListTimeSpent(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}

func (h *TicketsHandler) postMessage(c *fiber.Ctx, action func(ctx context.Context, authorID, ticketID int64, input service.MessageInput) (*domain.Message, error)) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}

	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	message, err := action(c.UserContext(), principal.User.ID, ticketID, service.MessageInput{
		Content:        req.Content,
		IsConfidential: req.IsConfidential,
		Via:            domain.ViaWebapp,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromMessage(message)})
}

func (h *TicketsHandler) solutionDecision(c *fiber.Ctx, action func(ctx context.Context, actorID, ticketID int64) error) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	if err := action(c.UserContext(), principal.User.ID, ticketID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "accepted"}})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func ticketIDParam(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": raw})
	}
	return id, nil
}
