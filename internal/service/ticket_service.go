package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows. Status mutations are not
// performed here: the service records facts (a ticket was created, a
// message was posted) and publishes the matching event; the lifecycle
// engine reacts to it.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	orgs       repository.OrganizationRepository
	contracts  repository.ContractRepository
	timeSpents repository.TimeSpentRepository
	dispatcher events.Dispatcher
	sanitizer  *bluemonday.Policy
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	MessageRepo   repository.MessageRepository
	OrgRepo       repository.OrganizationRepository
	ContractRepo  repository.ContractRepository
	TimeSpentRepo repository.TimeSpentRepository
	Dispatcher    events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. Content is the body
// of the ticket's first message.
type TicketCreateInput struct {
	OrganizationID int64
	Title          string
	Content        string
	Type           domain.TicketType
	Urgency        domain.Weight
	Impact         domain.Weight
	Priority       domain.Weight
	Via            domain.MessageVia
}

// MessageInput describes a posted message.
type MessageInput struct {
	Content        string
	IsConfidential bool
	Via            domain.MessageVia
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		orgs:       deps.OrgRepo,
		contracts:  deps.ContractRepo,
		timeSpents: deps.TimeSpentRepo,
		dispatcher: deps.Dispatcher,
		sanitizer:  bluemonday.UGCPolicy(),
	}
}

// CreateTicket creates a ticket with its initial message and publishes
// TicketCreated.
func (s *TicketService) CreateTicket(ctx context.Context, requesterID int64, input TicketCreateInput) (*domain.Ticket, error) {
	if _, err := s.orgs.GetByID(ctx, input.OrganizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": input.OrganizationID})
		}
		return nil, apperrors.MapError(err)
	}

	title := strings.TrimSpace(input.Title)
	content := s.sanitizeContent(input.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidationError("title and content required", nil)
	}

	ticket := &domain.Ticket{
		UID:             generateTicketUID(),
		Type:            input.Type,
		Title:           title,
		Status:          domain.TicketStatusNew,
		StatusChangedAt: time.Now(),
		Urgency:         input.Urgency,
		Impact:          input.Impact,
		Priority:        input.Priority,
		RequesterID:     requesterID,
		OrganizationID:  input.OrganizationID,
	}
	if ticket.Type == "" {
		ticket.Type = domain.TicketTypeRequest
	}
	if ticket.Urgency == "" {
		ticket.Urgency = domain.WeightMedium
	}
	if ticket.Impact == "" {
		ticket.Impact = domain.WeightMedium
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.WeightMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	message := &domain.Message{
		TicketID: ticket.ID,
		AuthorID: requesterID,
		Content:  content,
		Via:      defaultVia(input.Via),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketCreated, ticket.ID, nil, requesterID)
	return ticket, nil
}

// GetTicket fetches a ticket with its conversation.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, []domain.Message, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, messages, nil
}

// GetTicketByUID fetches a ticket by its public identifier.
func (s *TicketService) GetTicketByUID(ctx context.Context, uid string) (*domain.Ticket, []domain.Message, error) {
	ticket, err := s.tickets.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"uid": uid})
		}
		return nil, nil, apperrors.MapError(err)
	}
	messages, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, messages, nil
}

// AssignTicket sets the assignee and publishes TicketAssigned.
func (s *TicketService) AssignTicket(ctx context.Context, actorID, ticketID, assigneeID int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.AssigneeID = &assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventTicketAssigned, ticket.ID, nil, actorID)
	return ticket, nil
}

// ApproveTicket publishes TicketApproved; the lifecycle engine closes the
// ticket when it is resolved.
func (s *TicketService) ApproveTicket(ctx context.Context, actorID, ticketID int64) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	s.publish(ctx, events.EventTicketApproved, ticket.ID, nil, actorID)
	return nil
}

// PostAnswer appends an answer to the conversation and publishes
// MessageCreatedAsAnswer.
func (s *TicketService) PostAnswer(ctx context.Context, authorID, ticketID int64, input MessageInput) (*domain.Message, error) {
	message, err := s.createMessage(ctx, authorID, ticketID, input)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventMessageCreatedAsAnswer, ticketID, &message.ID, authorID)
	return message, nil
}

// PostSolution appends a message proposed as the solution and publishes
// MessageCreatedAsSolution. A confidential message can never be a
// solution.
func (s *TicketService) PostSolution(ctx context.Context, authorID, ticketID int64, input MessageInput) (*domain.Message, error) {
	if input.IsConfidential {
		return nil, apperrors.NewValidationError("a confidential message cannot be a solution", nil)
	}
	message, err := s.createMessage(ctx, authorID, ticketID, input)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventMessageCreatedAsSolution, ticketID, &message.ID, authorID)
	return message, nil
}

// ApproveSolution publishes MessageApprovedAsSolution for the ticket's
// current solution.
func (s *TicketService) ApproveSolution(ctx context.Context, actorID, ticketID int64) error {
	return s.publishSolutionEvent(ctx, events.EventMessageApprovedAsSolution, actorID, ticketID)
}

// RefuseSolution publishes MessageRefusedAsSolution for the ticket's
// current solution.
func (s *TicketService) RefuseSolution(ctx context.Context, actorID, ticketID int64) error {
	return s.publishSolutionEvent(ctx, events.EventMessageRefusedAsSolution, actorID, ticketID)
}

// AddObserver subscribes a user to the ticket.
func (s *TicketService) AddObserver(ctx context.Context, ticketID, userID int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	for _, id := range ticket.ObserverIDs {
		if id == userID {
			return ticket, nil
		}
	}
	ticket.ObserverIDs = append(ticket.ObserverIDs, userID)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// RemoveObserver unsubscribes a user from the ticket.
func (s *TicketService) RemoveObserver(ctx context.Context, ticketID, userID int64) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	observers := ticket.ObserverIDs[:0]
	for _, id := range ticket.ObserverIDs {
		if id != userID {
			observers = append(observers, id)
		}
	}
	ticket.ObserverIDs = observers
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// RecordTimeSpent charges worked minutes on the ticket. When a contract is
// given, the charged minutes are rounded up to the contract's accounting
// unit and capped by its remaining budget; the overflow is stored as an
// uncharged entry.
func (s *TicketService) RecordTimeSpent(ctx context.Context, ticketID int64, contractID *int64, realMinutes int) ([]domain.TimeSpent, error) {
	if realMinutes <= 0 {
		return nil, apperrors.NewValidationError("minutes must be positive", nil)
	}
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	if contractID == nil {
		entry := &domain.TimeSpent{TicketID: ticketID, Minutes: realMinutes, RealMinutes: realMinutes}
		if err := s.timeSpents.Create(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
		return []domain.TimeSpent{*entry}, nil
	}

	contract, err := s.contracts.GetByID(ctx, *contractID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contract", map[string]any{"contract_id": *contractID})
		}
		return nil, apperrors.MapError(err)
	}

	minutes := roundUpTo(realMinutes, contract.TimeAccountingUnit)
	used, err := s.timeSpents.SumByContract(ctx, contract.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	remaining := contract.MaxHours*60 - used
	if remaining < 0 {
		remaining = 0
	}

	entries := []domain.TimeSpent{}
	charged := minutes
	if charged > remaining {
		charged = remaining
	}
	if charged > 0 {
		entry := &domain.TimeSpent{
			TicketID:    ticketID,
			ContractID:  &contract.ID,
			Minutes:     charged,
			RealMinutes: realMinutes,
		}
		if err := s.timeSpents.Create(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
		entries = append(entries, *entry)
	}
	if minutes > charged {
		overflow := &domain.TimeSpent{
			TicketID:    ticketID,
			Minutes:     minutes - charged,
			RealMinutes: 0,
		}
		if err := s.timeSpents.Create(ctx, overflow); err != nil {
			return nil, apperrors.MapError(err)
		}
		entries = append(entries, *overflow)
	}
	return entries, nil
}

// ListTimeSpent returns the time entries recorded on a ticket.
func (s *TicketService) ListTimeSpent(ctx context.Context, ticketID int64) ([]domain.TimeSpent, error) {
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.timeSpents.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) createMessage(ctx context.Context, authorID, ticketID int64, input MessageInput) (*domain.Message, error) {
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	content := s.sanitizeContent(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	message := &domain.Message{
		TicketID:       ticketID,
		AuthorID:       authorID,
		Content:        content,
		IsConfidential: input.IsConfidential,
		Via:            defaultVia(input.Via),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, apperrors.MapError(err)
	}
	return message, nil
}

func (s *TicketService) publishSolutionEvent(ctx context.Context, eventType events.EventType, actorID, ticketID int64) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.SolutionMessageID == nil {
		return apperrors.NewConflict("ticket has no solution", map[string]any{"ticket_id": ticketID})
	}
	s.publish(ctx, eventType, ticket.ID, ticket.SolutionMessageID, actorID)
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) sanitizeContent(content string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(content))
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID int64, messageID *int64, actorID int64) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		MessageID: messageID,
		ActorID:   actorID,
		Timestamp: time.Now(),
	})
}

func defaultVia(via domain.MessageVia) domain.MessageVia {
	if via == "" {
		return domain.ViaWebapp
	}
	return via
}

func roundUpTo(minutes, unit int) int {
	if unit <= 1 {
		return minutes
	}
	if minutes%unit == 0 {
		return minutes
	}
	return (minutes/unit + 1) * unit
}

func generateTicketUID() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
