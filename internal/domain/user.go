package domain

import "time"

// User is the domain model for people interacting with tickets, whether
// requesters or agents; what they may do is decided by role grants.
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	OrganizationID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayName returns the name, falling back to the email address.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
