package auth

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Authorizer answers permission questions from role grants.
type Authorizer struct {
	authorizations repository.AuthorizationRepository
}

// NewAuthorizer constructs the authorizer.
func NewAuthorizer(authorizations repository.AuthorizationRepository) *Authorizer {
	return &Authorizer{authorizations: authorizations}
}

// IsUserAgent reports whether the user holds an agent (or admin) role on
// the organization.
func (a *Authorizer) IsUserAgent(ctx context.Context, userID, organizationID int64) (bool, error) {
	isAgent, err := a.authorizations.HasRole(ctx, userID, organizationID, domain.RoleTypeAgent)
	if err != nil {
		return false, err
	}
	if isAgent {
		return true, nil
	}
	return a.authorizations.HasRole(ctx, userID, organizationID, domain.RoleTypeAdmin)
}
