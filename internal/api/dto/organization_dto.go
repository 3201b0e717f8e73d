package dto

import "time"

// CreateOrganizationRequest is the payload for registering an organization.
type CreateOrganizationRequest struct {
	Name    string   `json:"name"`
	Domains []string `json:"domains,omitempty"`
}

// CreateContractRequest is the payload for registering a support contract.
type CreateContractRequest struct {
	Name               string    `json:"name"`
	StartAt            time.Time `json:"start_at"`
	EndAt              time.Time `json:"end_at"`
	MaxHours           int       `json:"max_hours"`
	TimeAccountingUnit int       `json:"time_accounting_unit"`
	Notes              string    `json:"notes,omitempty"`
}

// CreateTeamRequest is the payload for registering an agent team.
type CreateTeamRequest struct {
	Name     string  `json:"name"`
	AgentIDs []int64 `json:"agent_ids,omitempty"`
}

// CreateLabelRequest is the payload for registering a label.
type CreateLabelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}
