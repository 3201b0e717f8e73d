package domain

import "time"

// Contract represents a support contract tickets can charge time against.
type Contract struct {
	ID                 int64
	OrganizationID     int64
	Name               string
	StartAt            time.Time
	EndAt              time.Time
	MaxHours           int
	TimeAccountingUnit int
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsOngoing reports whether the contract covers the given instant.
func (c *Contract) IsOngoing(at time.Time) bool {
	return !at.Before(c.StartAt) && !at.After(c.EndAt)
}

// TimeSpent records minutes of work charged on a ticket. RealMinutes is
// what was actually worked; Minutes is rounded up to the contract's time
// accounting unit when a contract is attached.
type TimeSpent struct {
	ID          int64
	TicketID    int64
	ContractID  *int64
	Minutes     int
	RealMinutes int
	CreatedAt   time.Time
}

// Label is a free-form tag attached to tickets.
type Label struct {
	ID          int64
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}
