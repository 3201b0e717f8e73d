package events

import "time"

// EventType enumerates supported event identifiers. The set is closed: the
// lifecycle engine subscribes to the first seven and publishes at most
// EventTicketResolved.
type EventType string

const (
	EventTicketCreated             EventType = "ticket_created"
	EventTicketAssigned            EventType = "ticket_assigned"
	EventTicketApproved            EventType = "ticket_approved"
	EventTicketResolved            EventType = "ticket_resolved"
	EventMessageCreatedAsAnswer    EventType = "message_created_as_answer"
	EventMessageCreatedAsSolution  EventType = "message_created_as_solution"
	EventMessageApprovedAsSolution EventType = "message_approved_as_solution"
	EventMessageRefusedAsSolution  EventType = "message_refused_as_solution"
)

// Event represents a domain event emitted by services. Ticket events carry
// no MessageID; message events reference both the ticket and the message.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	MessageID *int64    `json:"message_id,omitempty"`
	ActorID   int64     `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}
