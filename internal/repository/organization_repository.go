package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// OrganizationRepository defines persistence access for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
	FindLike(ctx context.Context, text string) ([]domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository returns a Postgres-backed implementation.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (name, domains)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, org.Name, org.Domains).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

func (r *organizationRepository) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	const query = `
        SELECT id, name, domains, created_at, updated_at
        FROM organizations WHERE id=$1`
	var org domain.Organization
	if err := scanOrganization(r.pool.QueryRow(ctx, query, id), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// FindLike fuzzy-matches organizations on name.
func (r *organizationRepository) FindLike(ctx context.Context, text string) ([]domain.Organization, error) {
	const query = `
        SELECT id, name, domains, created_at, updated_at
        FROM organizations
        WHERE name ILIKE '%' || $1 || '%'
        ORDER BY name ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, text, findLikeLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrganizations(rows)
}

func (r *organizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	const query = `
        SELECT id, name, domains, created_at, updated_at
        FROM organizations ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrganizations(rows)
}

func scanOrganization(row pgx.Row, org *domain.Organization) error {
	return row.Scan(&org.ID, &org.Name, &org.Domains, &org.CreatedAt, &org.UpdatedAt)
}

func scanOrganizations(rows pgx.Rows) ([]domain.Organization, error) {
	var result []domain.Organization
	for rows.Next() {
		var org domain.Organization
		if err := scanOrganization(rows, &org); err != nil {
			return nil, err
		}
		result = append(result, org)
	}
	return result, rows.Err()
}
