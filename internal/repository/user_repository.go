package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const findLikeLimit = 50

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	FindLike(ctx context.Context, text string) ([]domain.User, error)
	FindByAccessToOrganizations(ctx context.Context, organizationIDs []int64, role domain.RoleType) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, organization_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.OrganizationID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, organization_id=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.OrganizationID,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, organization_id, created_at, updated_at
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, organization_id, created_at, updated_at
        FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

// FindLike fuzzy-matches users on name or email. An empty result is a
// normal outcome, not an error.
func (r *userRepository) FindLike(ctx context.Context, text string) ([]domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, organization_id, created_at, updated_at
        FROM users
        WHERE name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
        ORDER BY name ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, text, findLikeLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// FindByAccessToOrganizations lists users granted the given role either
// globally or on one of the organizations.
func (r *userRepository) FindByAccessToOrganizations(ctx context.Context, organizationIDs []int64, role domain.RoleType) ([]domain.User, error) {
	const query = `
        SELECT DISTINCT u.id, u.name, u.email, u.password_hash, u.organization_id, u.created_at, u.updated_at
        FROM users u
        JOIN authorizations a ON a.user_id = u.id
        WHERE a.role = $1 AND (a.organization_id IS NULL OR a.organization_id = ANY($2))
        ORDER BY u.id ASC`
	rows, err := r.pool.Query(ctx, query, role, organizationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := scanUser(r.pool.QueryRow(ctx, query, arg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUser(row pgx.Row, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.OrganizationID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
