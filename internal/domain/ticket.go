package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusPlanned    TicketStatus = "planned"
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// OpenStatuses are the statuses of tickets still being worked on.
func OpenStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusNew,
		TicketStatusInProgress,
		TicketStatusPlanned,
		TicketStatusPending,
	}
}

// FinishedStatuses are the terminal statuses.
func FinishedStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusResolved,
		TicketStatusClosed,
	}
}

// TicketType differentiates incidents from requests.
type TicketType string

const (
	TicketTypeIncident TicketType = "incident"
	TicketTypeRequest  TicketType = "request"
)

// Weight grades urgency, impact and priority.
type Weight string

const (
	WeightLow    Weight = "low"
	WeightMedium Weight = "medium"
	WeightHigh   Weight = "high"
)

// Ticket is the aggregate for support requests and incidents.
type Ticket struct {
	ID                int64
	UID               string
	Type              TicketType
	Title             string
	Status            TicketStatus
	StatusChangedAt   time.Time
	Urgency           Weight
	Impact            Weight
	Priority          Weight
	RequesterID       int64
	AssigneeID        *int64
	TeamID            *int64
	OrganizationID    int64
	SolutionMessageID *int64
	ObserverIDs       []int64
	LabelIDs          []int64
	ContractIDs       []int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SetStatus changes the status and rewrites StatusChangedAt. Status writes
// must go through here so the timestamp never drifts from the status.
func (t *Ticket) SetStatus(status TicketStatus) {
	t.Status = status
	t.StatusChangedAt = time.Now()
}

// IsOpen reports whether the ticket is still being worked on.
func (t *Ticket) IsOpen() bool {
	for _, status := range OpenStatuses() {
		if t.Status == status {
			return true
		}
	}
	return false
}

// IsFinished reports whether the ticket reached a terminal status.
func (t *Ticket) IsFinished() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusClosed
}

// HasSolution reports whether a message is marked as the solution.
func (t *Ticket) HasSolution() bool {
	return t.SolutionMessageID != nil
}

// SetSolution marks the given message as the solution.
func (t *Ticket) SetSolution(messageID int64) {
	t.SolutionMessageID = &messageID
}

// ClearSolution removes the solution mark.
func (t *Ticket) ClearSolution() {
	t.SolutionMessageID = nil
}
