package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// OrganizationService manages organizations and the supporting catalogs
// around them: teams, labels and contracts.
type OrganizationService struct {
	orgs      repository.OrganizationRepository
	teams     repository.TeamRepository
	labels    repository.LabelRepository
	contracts repository.ContractRepository
	tickets   repository.TicketRepository
}

// NewOrganizationService constructs the service.
func NewOrganizationService(orgs repository.OrganizationRepository, teams repository.TeamRepository, labels repository.LabelRepository, contracts repository.ContractRepository, tickets repository.TicketRepository) *OrganizationService {
	return &OrganizationService{
		orgs:      orgs,
		teams:     teams,
		labels:    labels,
		contracts: contracts,
		tickets:   tickets,
	}
}

// CreateOrganization registers an organization.
func (s *OrganizationService) CreateOrganization(ctx context.Context, name string, domains []string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	org := &domain.Organization{Name: name, Domains: domains}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// ListOrganizations returns all organizations.
func (s *OrganizationService) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return orgs, nil
}

// ListTickets returns one page of an organization's tickets.
func (s *OrganizationService) ListTickets(ctx context.Context, organizationID int64, limit, offset int) ([]domain.Ticket, error) {
	if _, err := s.orgs.GetByID(ctx, organizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": organizationID})
		}
		return nil, apperrors.MapError(err)
	}
	tickets, err := s.tickets.ListByOrganization(ctx, organizationID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// CreateContract registers a support contract for an organization.
func (s *OrganizationService) CreateContract(ctx context.Context, contract *domain.Contract) (*domain.Contract, error) {
	if strings.TrimSpace(contract.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if contract.EndAt.Before(contract.StartAt) {
		return nil, apperrors.NewValidationError("end date before start date", nil)
	}
	if _, err := s.orgs.GetByID(ctx, contract.OrganizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": contract.OrganizationID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, apperrors.MapError(err)
	}
	return contract, nil
}

// ListContracts returns an organization's contracts.
func (s *OrganizationService) ListContracts(ctx context.Context, organizationID int64) ([]domain.Contract, error) {
	contracts, err := s.contracts.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return contracts, nil
}

// CreateTeam registers an agent team.
func (s *OrganizationService) CreateTeam(ctx context.Context, name string, agentIDs []int64) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	team := &domain.Team{Name: name, AgentIDs: agentIDs}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// UpdateTeam renames a team or replaces its member list.
func (s *OrganizationService) UpdateTeam(ctx context.Context, teamID int64, name string, agentIDs []int64) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": teamID})
		}
		return nil, apperrors.MapError(err)
	}
	if name = strings.TrimSpace(name); name != "" {
		team.Name = name
	}
	if agentIDs != nil {
		team.AgentIDs = agentIDs
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// ListTeams returns all teams.
func (s *OrganizationService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// CreateLabel registers a label.
func (s *OrganizationService) CreateLabel(ctx context.Context, name, description, color string) (*domain.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if color == "" {
		color = "grey"
	}
	label := &domain.Label{Name: name, Description: description, Color: color}
	if err := s.labels.Create(ctx, label); err != nil {
		return nil, apperrors.MapError(err)
	}
	return label, nil
}

// ListLabels returns all labels.
func (s *OrganizationService) ListLabels(ctx context.Context) ([]domain.Label, error) {
	labels, err := s.labels.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return labels, nil
}
