package domain

import "time"

// Organization groups tickets and the users allowed to act on them.
type Organization struct {
	ID        int64
	Name      string
	Domains   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Team is a named group of agents that tickets can be routed to.
type Team struct {
	ID        int64
	Name      string
	AgentIDs  []int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
