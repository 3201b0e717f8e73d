package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest is the payload for opening a ticket.
type CreateTicketRequest struct {
	OrganizationID int64  `json:"organization_id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Type           string `json:"type,omitempty"`
	Urgency        string `json:"urgency,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Priority       string `json:"priority,omitempty"`
}

// AssignTicketRequest names the new assignee.
type AssignTicketRequest struct {
	AssigneeID int64 `json:"assignee_id"`
}

// PostMessageRequest is the payload for answers and solutions.
type PostMessageRequest struct {
	Content        string `json:"content"`
	IsConfidential bool   `json:"is_confidential,omitempty"`
}

// RecordTimeRequest charges worked minutes on a ticket.
type RecordTimeRequest struct {
	ContractID  *int64 `json:"contract_id,omitempty"`
	RealMinutes int    `json:"real_minutes"`
}

// TicketSummary is the wire representation of a ticket.
type TicketSummary struct {
	ID              int64      `json:"id"`
	UID             string     `json:"uid"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Status          string     `json:"status"`
	StatusChangedAt time.Time  `json:"status_changed_at"`
	Urgency         string     `json:"urgency"`
	Impact          string     `json:"impact"`
	Priority        string     `json:"priority"`
	RequesterID     int64      `json:"requester_id"`
	AssigneeID      *int64     `json:"assignee_id,omitempty"`
	OrganizationID  int64      `json:"organization_id"`
	SolutionID      *int64     `json:"solution_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MessageSummary is the wire representation of a message.
type MessageSummary struct {
	ID             int64     `json:"id"`
	TicketID       int64     `json:"ticket_id"`
	AuthorID       int64     `json:"author_id"`
	Content        string    `json:"content"`
	IsConfidential bool      `json:"is_confidential"`
	Via            string    `json:"via"`
	CreatedAt      time.Time `json:"created_at"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Tickets []TicketSummary `json:"tickets"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
}

// FromTicket maps a domain ticket to its wire form.
func FromTicket(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:              ticket.ID,
		UID:             ticket.UID,
		Type:            string(ticket.Type),
		Title:           ticket.Title,
		Status:          string(ticket.Status),
		StatusChangedAt: ticket.StatusChangedAt,
		Urgency:         string(ticket.Urgency),
		Impact:          string(ticket.Impact),
		Priority:        string(ticket.Priority),
		RequesterID:     ticket.RequesterID,
		AssigneeID:      ticket.AssigneeID,
		OrganizationID:  ticket.OrganizationID,
		SolutionID:      ticket.SolutionMessageID,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

// FromMessage maps a domain message to its wire form.
func FromMessage(message *domain.Message) MessageSummary {
	return MessageSummary{
		ID:             message.ID,
		TicketID:       message.TicketID,
		AuthorID:       message.AuthorID,
		Content:        message.Content,
		IsConfidential: message.IsConfidential,
		Via:            string(message.Via),
		CreatedAt:      message.CreatedAt,
	}
}
