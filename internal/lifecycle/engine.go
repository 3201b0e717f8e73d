// Package lifecycle keeps ticket statuses consistent with business rules.
// The engine only ever reacts to events; it never polls and never initiates
// anything on its own, except the single re-dispatch hops documented on the
// handlers.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// TicketStore loads and persists ticket aggregates. Update must be called
// exactly once per reaction that mutates state.
type TicketStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
}

// MessageStore loads messages referenced by message events.
type MessageStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
}

// AgentFinder lists the users holding a role on the given organizations.
type AgentFinder interface {
	FindByAccessToOrganizations(ctx context.Context, organizationIDs []int64, role domain.RoleType) ([]domain.User, error)
}

// Authorizer answers permission checks for the reopen-on-answer rule.
type Authorizer interface {
	IsUserAgent(ctx context.Context, userID, organizationID int64) (bool, error)
}

// Dependencies bundles the engine's collaborators.
type Dependencies struct {
	Tickets    TicketStore
	Messages   MessageStore
	Agents     AgentFinder
	Authorizer Authorizer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger

	// AutoAssignOnCreate enables the auto-assignment mutation on ticket
	// creation when the organization has exactly one eligible agent. Off
	// by default: the precondition is still checked and logged, but the
	// ticket is left untouched.
	AutoAssignOnCreate bool
}

// Engine is the reactive state machine over ticket statuses.
type Engine struct {
	tickets    TicketStore
	messages   MessageStore
	agents     AgentFinder
	authorizer Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	autoAssign bool
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		tickets:    deps.Tickets,
		messages:   deps.Messages,
		agents:     deps.Agents,
		authorizer: deps.Authorizer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		autoAssign: deps.AutoAssignOnCreate,
	}
}

// RegisterHandlers subscribes the engine to the events it reacts to.
func (e *Engine) RegisterHandlers() {
	if e.dispatcher == nil {
		return
	}
	e.dispatcher.Subscribe(events.EventTicketCreated, e.handleTicketCreated)
	e.dispatcher.Subscribe(events.EventTicketAssigned, e.handleTicketAssigned)
	e.dispatcher.Subscribe(events.EventTicketApproved, e.handleTicketApproved)
	e.dispatcher.Subscribe(events.EventMessageCreatedAsAnswer, e.handleAnswer)
	e.dispatcher.Subscribe(events.EventMessageCreatedAsSolution, e.handleNewSolution)
	e.dispatcher.Subscribe(events.EventMessageApprovedAsSolution, e.handleApprovedSolution)
	e.dispatcher.Subscribe(events.EventMessageRefusedAsSolution, e.handleRefusedSolution)
}

// handleTicketCreated assigns the ticket when the organization has exactly
// one eligible agent. The mutation sits behind AutoAssignOnCreate; when the
// toggle is off the hook only observes.
func (e *Engine) handleTicketCreated(ctx context.Context, event events.Event) error {
	ticket, err := e.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}

	if ticket.AssigneeID != nil {
		return nil
	}

	agents, err := e.agents.FindByAccessToOrganizations(ctx, []int64{ticket.OrganizationID}, domain.RoleTypeAgent)
	if err != nil {
		return err
	}
	if len(agents) != 1 {
		return nil
	}

	if !e.autoAssign {
		e.logger.Debug("single eligible agent found, auto-assign disabled",
			zap.Int64("ticket_id", ticket.ID),
			zap.Int64("agent_id", agents[0].ID))
		return nil
	}

	ticket.AssigneeID = &agents[0].ID
	if err := e.tickets.Update(ctx, ticket); err != nil {
		return err
	}

	e.publish(ctx, events.EventTicketAssigned, ticket.ID, nil, agents[0].ID)
	return nil
}

// handleTicketAssigned passes a "new" ticket to "in progress" once it has
// an assignee.
func (e *Engine) handleTicketAssigned(ctx context.Context, event events.Event) error {
	ticket, err := e.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}

	if ticket.AssigneeID != nil && ticket.Status == domain.TicketStatusNew {
		ticket.SetStatus(domain.TicketStatusInProgress)
		return e.tickets.Update(ctx, ticket)
	}
	return nil
}

// handleTicketApproved closes a resolved ticket, e.g. after the requester
// confirmed the resolution or a delay expired.
func (e *Engine) handleTicketApproved(ctx context.Context, event events.Event) error {
	ticket, err := e.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}

	if ticket.Status != domain.TicketStatusResolved {
		return nil
	}

	ticket.SetStatus(domain.TicketStatusClosed)
	return e.tickets.Update(ctx, ticket)
}

// handleAnswer updates the status when somebody answers on the ticket.
//
// The role-based branch and the reopen rule both evaluate against the
// status captured at entry. The reopen rule runs last: a resolved ticket
// answered by a non-agent always reopens, whatever the first branch did.
func (e *Engine) handleAnswer(ctx context.Context, event events.Event) error {
	message, ticket, err := e.loadMessageEvent(ctx, event)
	if err != nil {
		return err
	}

	status := ticket.Status
	changed := false

	if ticket.AssigneeID != nil && message.AuthorID == *ticket.AssigneeID {
		if status == domain.TicketStatusInProgress && !message.IsConfidential {
			ticket.SetStatus(domain.TicketStatusPending)
			changed = true
		}
	} else if message.AuthorID == ticket.RequesterID {
		if status == domain.TicketStatusPending {
			ticket.SetStatus(domain.TicketStatusInProgress)
			changed = true
		}
	}

	if status == domain.TicketStatusResolved {
		isAgent, err := e.authorizer.IsUserAgent(ctx, message.AuthorID, ticket.OrganizationID)
		if err != nil {
			return err
		}
		if !isAgent {
			ticket.SetStatus(domain.TicketStatusInProgress)
			ticket.ClearSolution()
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return e.tickets.Update(ctx, ticket)
}

// handleNewSolution marks the ticket as resolved when a solution is
// posted. This is the only handler allowed to cascade a further event.
func (e *Engine) handleNewSolution(ctx context.Context, event events.Event) error {
	message, ticket, err := e.loadMessageEvent(ctx, event)
	if err != nil {
		return err
	}

	if ticket.HasSolution() ||
		ticket.Status == domain.TicketStatusClosed ||
		message.IsConfidential {
		return nil
	}

	ticket.SetSolution(message.ID)
	ticket.SetStatus(domain.TicketStatusResolved)
	if err := e.tickets.Update(ctx, ticket); err != nil {
		return err
	}

	e.publish(ctx, events.EventTicketResolved, ticket.ID, &message.ID, message.AuthorID)
	return nil
}

// handleApprovedSolution closes the ticket when its solution is approved.
func (e *Engine) handleApprovedSolution(ctx context.Context, event events.Event) error {
	_, ticket, err := e.loadMessageEvent(ctx, event)
	if err != nil {
		return err
	}

	if ticket.Status != domain.TicketStatusResolved {
		return nil
	}

	ticket.SetStatus(domain.TicketStatusClosed)
	return e.tickets.Update(ctx, ticket)
}

// handleRefusedSolution reopens the ticket when its solution is refused.
func (e *Engine) handleRefusedSolution(ctx context.Context, event events.Event) error {
	_, ticket, err := e.loadMessageEvent(ctx, event)
	if err != nil {
		return err
	}

	if ticket.Status != domain.TicketStatusResolved {
		return nil
	}

	ticket.SetStatus(domain.TicketStatusInProgress)
	ticket.ClearSolution()
	return e.tickets.Update(ctx, ticket)
}

func (e *Engine) loadMessageEvent(ctx context.Context, event events.Event) (*domain.Message, *domain.Ticket, error) {
	if event.MessageID == nil {
		return nil, nil, fmt.Errorf("event %s carries no message id", event.Type)
	}
	message, err := e.messages.GetByID(ctx, *event.MessageID)
	if err != nil {
		return nil, nil, err
	}
	ticket, err := e.tickets.GetByID(ctx, message.TicketID)
	if err != nil {
		return nil, nil, err
	}
	return message, ticket, nil
}

func (e *Engine) publish(ctx context.Context, eventType events.EventType, ticketID int64, messageID *int64, actorID int64) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		MessageID: messageID,
		ActorID:   actorID,
		Timestamp: time.Now(),
	})
}
