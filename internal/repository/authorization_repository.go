package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AuthorizationRepository defines persistence access for role grants.
type AuthorizationRepository interface {
	Create(ctx context.Context, authorization *domain.Authorization) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Authorization, error)
	HasRole(ctx context.Context, userID, organizationID int64, role domain.RoleType) (bool, error)
}

type authorizationRepository struct {
	pool *pgxpool.Pool
}

// NewAuthorizationRepository returns a Postgres-backed implementation.
func NewAuthorizationRepository(pool *pgxpool.Pool) AuthorizationRepository {
	return &authorizationRepository{pool: pool}
}

func (r *authorizationRepository) Create(ctx context.Context, authorization *domain.Authorization) error {
	const query = `
        INSERT INTO authorizations (user_id, organization_id, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		authorization.UserID,
		authorization.OrganizationID,
		authorization.Role,
	).Scan(&authorization.ID, &authorization.CreatedAt)
}

func (r *authorizationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Authorization, error) {
	const query = `
        SELECT id, user_id, organization_id, role, created_at
        FROM authorizations WHERE user_id=$1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Authorization
	for rows.Next() {
		var authorization domain.Authorization
		if err := rows.Scan(
			&authorization.ID,
			&authorization.UserID,
			&authorization.OrganizationID,
			&authorization.Role,
			&authorization.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, authorization)
	}
	return result, rows.Err()
}

// HasRole reports whether the user holds the role on the organization,
// either through a global grant or an org-scoped one.
func (r *authorizationRepository) HasRole(ctx context.Context, userID, organizationID int64, role domain.RoleType) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM authorizations
            WHERE user_id=$1 AND role=$2
              AND (organization_id IS NULL OR organization_id=$3)
        )`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, role, organizationID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
