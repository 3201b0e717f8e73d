package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// OrganizationsHandler exposes organization and catalog endpoints.
type OrganizationsHandler struct {
	orgService *service.OrganizationService
}

// NewOrganizationsHandler constructs handler.
func NewOrganizationsHandler(orgService *service.OrganizationService) *OrganizationsHandler {
	return &OrganizationsHandler{orgService: orgService}
}

// Create handles POST /organizations.
func (h *OrganizationsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	org, err := h.orgService.CreateOrganization(c.UserContext(), req.Name, req.Domains)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": org})
}

// List handles GET /organizations.
func (h *OrganizationsHandler) List(c *fiber.Ctx) error {
	orgs, err := h.orgService.ListOrganizations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orgs})
}

// ListTickets handles GET /organizations/:id/tickets.
func (h *OrganizationsHandler) ListTickets(c *fiber.Ctx) error {
	orgID, err := idParam(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	tickets, err := h.orgService.ListTickets(c.UserContext(), orgID, limit, offset)
	if err != nil {
		return err
	}

	summaries := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		summaries = append(summaries, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": summaries})
}

// ListContracts handles GET /organizations/:id/contracts.
func (h *OrganizationsHandler) ListContracts(c *fiber.Ctx) error {
	orgID, err := idParam(c)
	if err != nil {
		return err
	}
	contracts, err := h.orgService.ListContracts(c.UserContext(), orgID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contracts})
}

// CreateContract handles POST /organizations/:id/contracts.
func (h *OrganizationsHandler) CreateContract(c *fiber.Ctx) error {
	orgID, err := idParam(c)
	if err != nil {
		return err
	}

	var req dto.CreateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contract, err := h.orgService.CreateContract(c.UserContext(), &domain.Contract{
		OrganizationID:     orgID,
		Name:               req.Name,
		StartAt:            req.StartAt,
		EndAt:              req.EndAt,
		MaxHours:           req.MaxHours,
		TimeAccountingUnit: req.TimeAccountingUnit,
		Notes:              req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": contract})
}

// CreateTeam handles POST /teams.
func (h *OrganizationsHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.orgService.CreateTeam(c.UserContext(), req.Name, req.AgentIDs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": team})
}

// UpdateTeam handles PUT /teams/:id.
func (h *OrganizationsHandler) UpdateTeam(c *fiber.Ctx) error {
	teamID, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, err := h.orgService.UpdateTeam(c.UserContext(), teamID, req.Name, req.AgentIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": team})
}

// ListTeams handles GET /teams.
func (h *OrganizationsHandler) ListTeams(c *fiber.Ctx) error {
	teams, err := h.orgService.ListTeams(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teams})
}

// CreateLabel handles POST /labels.
func (h *OrganizationsHandler) CreateLabel(c *fiber.Ctx) error {
	var req dto.CreateLabelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	label, err := h.orgService.CreateLabel(c.UserContext(), req.Name, req.Description, req.Color)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": label})
}

// ListLabels handles GET /labels.
func (h *OrganizationsHandler) ListLabels(c *fiber.Ctx) error {
	labels, err := h.orgService.ListLabels(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labels})
}

func idParam(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}
