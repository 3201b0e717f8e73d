package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

type fakeTicketStore struct {
	tickets map[int64]*domain.Ticket
	updates int
}

func (f *fakeTicketStore) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, context.Canceled
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeTicketStore) Update(_ context.Context, ticket *domain.Ticket) error {
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	f.updates++
	return nil
}

type fakeMessageStore struct {
	messages map[int64]*domain.Message
}

func (f *fakeMessageStore) GetByID(_ context.Context, id int64) (*domain.Message, error) {
	message, ok := f.messages[id]
	if !ok {
		return nil, context.Canceled
	}
	return message, nil
}

type fakeAgentFinder struct {
	agents []domain.User
}

func (f *fakeAgentFinder) FindByAccessToOrganizations(context.Context, []int64, domain.RoleType) ([]domain.User, error) {
	return f.agents, nil
}

type fakeAuthorizer struct {
	agentIDs map[int64]bool
}

func (f *fakeAuthorizer) IsUserAgent(_ context.Context, userID, _ int64) (bool, error) {
	return f.agentIDs[userID], nil
}

type fixture struct {
	engine     *Engine
	tickets    *fakeTicketStore
	messages   *fakeMessageStore
	agents     *fakeAgentFinder
	authorizer *fakeAuthorizer
	dispatcher events.Dispatcher
	published  *[]events.Event
}

func newFixture(t *testing.T, autoAssign bool) *fixture {
	t.Helper()
	tickets := &fakeTicketStore{tickets: map[int64]*domain.Ticket{}}
	messages := &fakeMessageStore{messages: map[int64]*domain.Message{}}
	agents := &fakeAgentFinder{}
	authorizer := &fakeAuthorizer{agentIDs: map[int64]bool{}}
	dispatcher := events.NewInMemoryDispatcher(nil)

	published := &[]events.Event{}
	for _, eventType := range []events.EventType{
		events.EventTicketAssigned,
		events.EventTicketResolved,
	} {
		eventType := eventType
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			*published = append(*published, event)
			return nil
		})
	}

	engine := NewEngine(Dependencies{
		Tickets:            tickets,
		Messages:           messages,
		Agents:             agents,
		Authorizer:         authorizer,
		Dispatcher:         dispatcher,
		AutoAssignOnCreate: autoAssign,
	})
	engine.RegisterHandlers()

	return &fixture{
		engine:     engine,
		tickets:    tickets,
		messages:   messages,
		agents:     agents,
		authorizer: authorizer,
		dispatcher: dispatcher,
		published:  published,
	}
}

func (f *fixture) addTicket(ticket domain.Ticket) {
	copied := ticket
	f.tickets.tickets[ticket.ID] = &copied
}

func (f *fixture) addMessage(message domain.Message) {
	copied := message
	f.messages.messages[message.ID] = &copied
}

func (f *fixture) ticket(id int64) *domain.Ticket {
	return f.tickets.tickets[id]
}

func ptr(v int64) *int64 { return &v }

func messageEvent(eventType events.EventType, ticketID, messageID, actorID int64) events.Event {
	return events.Event{Type: eventType, TicketID: ticketID, MessageID: &messageID, ActorID: actorID}
}

func TestTicketAssignedMovesNewToInProgress(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusNew, AssigneeID: ptr(5)})

	err := f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketAssigned, TicketID: 1})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusInProgress, f.ticket(1).Status)
	assert.Equal(t, 1, f.tickets.updates)
}

func TestTicketAssignedIgnoresOtherStatuses(t *testing.T) {
	for _, status := range []domain.TicketStatus{
		domain.TicketStatusInProgress,
		domain.TicketStatusPending,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	} {
		f := newFixture(t, false)
		f.addTicket(domain.Ticket{ID: 1, Status: status, AssigneeID: ptr(5)})

		require.NoError(t, f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketAssigned, TicketID: 1}))

		assert.Equal(t, status, f.ticket(1).Status, "status %s must not change", status)
		assert.Zero(t, f.tickets.updates)
	}
}

func TestTicketAssignedWithoutAssigneeIsNoop(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusNew})

	require.NoError(t, f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketAssigned, TicketID: 1}))

	assert.Equal(t, domain.TicketStatusNew, f.ticket(1).Status)
	assert.Zero(t, f.tickets.updates)
}

func TestTicketApprovedClosesResolvedTicket(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusResolved})

	require.NoError(t, f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketApproved, TicketID: 1}))

	assert.Equal(t, domain.TicketStatusClosed, f.ticket(1).Status)
}

func TestTicketApprovedIgnoresUnresolvedTicket(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusInProgress})

	require.NoError(t, f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketApproved, TicketID: 1}))

	assert.Equal(t, domain.TicketStatusInProgress, f.ticket(1).Status)
	assert.Zero(t, f.tickets.updates)
}

func TestAnswerFromAssigneeMovesInProgressToPending(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusInProgress, AssigneeID: ptr(5), RequesterID: 2})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsAnswer, 1, 10, 5)))

	assert.Equal(t, domain.TicketStatusPending, f.ticket(1).Status)
	assert.Equal(t, 1, f.tickets.updates)
}

func TestConfidentialAnswerFromAssigneeDoesNotChangeStatus(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusInProgress, AssigneeID: ptr(5), RequesterID: 2})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5, IsConfidential: true})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsAnswer, 1, 10, 5)))

	assert.Equal(t, domain.TicketStatusInProgress, f.ticket(1).Status)
	assert.Zero(t, f.tickets.updates)
}

func TestAnswerFromRequesterMovesPendingToInProgress(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusPending, AssigneeID: ptr(5), RequesterID: 2})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 2})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsAnswer, 1, 10, 2)))

	assert.Equal(t, domain.TicketStatusInProgress, f.ticket(1).Status)
}

func TestAnswerFromNonAgentReopensResolvedTicket(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusResolved, AssigneeID: ptr(5), RequesterID: 2, SolutionMessageID: ptr(9)})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 2})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsAnswer, 1, 10, 2)))

	ticket := f.ticket(1)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Nil(t, ticket.SolutionMessageID)
	assert.Equal(t, 1, f.tickets.updates)
}

func TestAnswerFromAgentDoesNotReopenResolvedTicket(t *testing.T) {
	f := newFixture(t, false)
	f.authorizer.agentIDs[8] = true
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusResolved, AssigneeID: ptr(5), RequesterID: 2, SolutionMessageID: ptr(9)})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 8})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsAnswer, 1, 10, 8)))

	ticket := f.ticket(1)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	assert.NotNil(t, ticket.SolutionMessageID)
	assert.Zero(t, f.tickets.updates)
}

func TestAnswerOnUntouchedStatusIsNoop(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusNew, AssigneeID: ptr(5), RequesterID: 2})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 3})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsAnswer, 1, 10, 3)))

	assert.Equal(t, domain.TicketStatusNew, f.ticket(1).Status)
	assert.Zero(t, f.tickets.updates)
}

func TestNewSolutionResolvesTicketAndCascades(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusInProgress, RequesterID: 2})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsSolution, 1, 10, 5)))

	ticket := f.ticket(1)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	require.NotNil(t, ticket.SolutionMessageID)
	assert.Equal(t, int64(10), *ticket.SolutionMessageID)

	require.Len(t, *f.published, 1)
	resolved := (*f.published)[0]
	assert.Equal(t, events.EventTicketResolved, resolved.Type)
	assert.Equal(t, int64(1), resolved.TicketID)
	require.NotNil(t, resolved.MessageID)
	assert.Equal(t, int64(10), *resolved.MessageID)
	assert.Equal(t, int64(5), resolved.ActorID)
}

func TestNewSolutionIgnoredWhenSolutionExists(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusInProgress, SolutionMessageID: ptr(9)})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsSolution, 1, 10, 5)))

	ticket := f.ticket(1)
	assert.Equal(t, int64(9), *ticket.SolutionMessageID)
	assert.Empty(t, *f.published)
	assert.Zero(t, f.tickets.updates)
}

func TestNewSolutionIgnoredOnClosedTicket(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusClosed})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsSolution, 1, 10, 5)))

	assert.Equal(t, domain.TicketStatusClosed, f.ticket(1).Status)
	assert.Empty(t, *f.published)
}

func TestConfidentialSolutionIgnored(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusInProgress})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5, IsConfidential: true})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageCreatedAsSolution, 1, 10, 5)))

	assert.Equal(t, domain.TicketStatusInProgress, f.ticket(1).Status)
	assert.Empty(t, *f.published)
}

func TestApprovedSolutionClosesResolvedTicket(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusResolved, SolutionMessageID: ptr(10)})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageApprovedAsSolution, 1, 10, 2)))

	ticket := f.ticket(1)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	assert.NotNil(t, ticket.SolutionMessageID)
}

func TestApprovedSolutionIgnoredWhenNotResolved(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusInProgress, SolutionMessageID: ptr(10)})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageApprovedAsSolution, 1, 10, 2)))

	assert.Equal(t, domain.TicketStatusInProgress, f.ticket(1).Status)
	assert.Zero(t, f.tickets.updates)
}

func TestRefusedSolutionReopensResolvedTicket(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusResolved, SolutionMessageID: ptr(10)})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageRefusedAsSolution, 1, 10, 2)))

	ticket := f.ticket(1)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Nil(t, ticket.SolutionMessageID)
}

func TestRefusedSolutionIgnoredWhenNotResolved(t *testing.T) {
	f := newFixture(t, false)
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusPending, SolutionMessageID: ptr(10)})
	f.addMessage(domain.Message{ID: 10, TicketID: 1, AuthorID: 5})

	require.NoError(t, f.dispatcher.Publish(context.Background(), messageEvent(events.EventMessageRefusedAsSolution, 1, 10, 2)))

	assert.Equal(t, domain.TicketStatusPending, f.ticket(1).Status)
	assert.Zero(t, f.tickets.updates)
}

func TestTicketCreatedAutoAssignDisabledByDefault(t *testing.T) {
	f := newFixture(t, false)
	f.agents.agents = []domain.User{{ID: 5}}
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusNew, OrganizationID: 3})

	require.NoError(t, f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, TicketID: 1}))

	assert.Nil(t, f.ticket(1).AssigneeID)
	assert.Empty(t, *f.published)
	assert.Zero(t, f.tickets.updates)
}

func TestTicketCreatedAutoAssignsSoleAgent(t *testing.T) {
	f := newFixture(t, true)
	f.agents.agents = []domain.User{{ID: 5}}
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusNew, OrganizationID: 3})

	require.NoError(t, f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, TicketID: 1}))

	ticket := f.ticket(1)
	require.NotNil(t, ticket.AssigneeID)
	assert.Equal(t, int64(5), *ticket.AssigneeID)
	// The cascaded TicketAssigned moves the ticket forward.
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)

	require.Len(t, *f.published, 1)
	assert.Equal(t, events.EventTicketAssigned, (*f.published)[0].Type)
}

func TestTicketCreatedSkipsAssignmentWithSeveralAgents(t *testing.T) {
	f := newFixture(t, true)
	f.agents.agents = []domain.User{{ID: 5}, {ID: 6}}
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusNew, OrganizationID: 3})

	require.NoError(t, f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, TicketID: 1}))

	assert.Nil(t, f.ticket(1).AssigneeID)
	assert.Zero(t, f.tickets.updates)
}

func TestTicketCreatedSkipsAlreadyAssignedTicket(t *testing.T) {
	f := newFixture(t, true)
	f.agents.agents = []domain.User{{ID: 5}}
	f.addTicket(domain.Ticket{ID: 1, Status: domain.TicketStatusNew, OrganizationID: 3, AssigneeID: ptr(9)})

	require.NoError(t, f.dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, TicketID: 1}))

	assert.Equal(t, int64(9), *f.ticket(1).AssigneeID)
	assert.Zero(t, f.tickets.updates)
}
