package domain

import "time"

// MessageVia identifies the channel a message arrived through.
type MessageVia string

const (
	ViaWebapp MessageVia = "webapp"
	ViaEmail  MessageVia = "email"
	ViaAPI    MessageVia = "api"
)

// Message captures one entry of a ticket's conversation. A ticket
// exclusively owns its messages; a message cannot outlive its ticket.
type Message struct {
	ID             int64
	TicketID       int64
	AuthorID       int64
	Content        string
	IsConfidential bool
	Via            MessageVia
	EmailMessageID *string
	EmailRefs      []string
	CreatedAt      time.Time
}
