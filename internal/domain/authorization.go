package domain

import "time"

// RoleType partitions what a user may do inside an organization.
type RoleType string

const (
	RoleTypeUser  RoleType = "user"
	RoleTypeAgent RoleType = "agent"
	RoleTypeAdmin RoleType = "admin"
)

// Authorization grants a role to a user, either globally (OrganizationID
// nil) or scoped to one organization.
type Authorization struct {
	ID             int64
	UserID         int64
	OrganizationID *int64
	Role           RoleType
	CreatedAt      time.Time
}

// AppliesTo reports whether the grant covers the given organization.
func (a *Authorization) AppliesTo(organizationID int64) bool {
	return a.OrganizationID == nil || *a.OrganizationID == organizationID
}
