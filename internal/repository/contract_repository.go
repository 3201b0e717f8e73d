package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ContractRepository defines persistence access for support contracts.
type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	GetByID(ctx context.Context, id int64) (*domain.Contract, error)
	ListByOrganization(ctx context.Context, organizationID int64) ([]domain.Contract, error)
}

type contractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository returns a Postgres-backed implementation.
func NewContractRepository(pool *pgxpool.Pool) ContractRepository {
	return &contractRepository{pool: pool}
}

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	const query = `
        INSERT INTO contracts (organization_id, name, start_at, end_at, max_hours, time_accounting_unit, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		contract.OrganizationID,
		contract.Name,
		contract.StartAt,
		contract.EndAt,
		contract.MaxHours,
		contract.TimeAccountingUnit,
		contract.Notes,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)
}

func (r *contractRepository) GetByID(ctx context.Context, id int64) (*domain.Contract, error) {
	const query = `
        SELECT id, organization_id, name, start_at, end_at, max_hours, time_accounting_unit, notes, created_at, updated_at
        FROM contracts WHERE id=$1`
	var contract domain.Contract
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&contract.ID,
		&contract.OrganizationID,
		&contract.Name,
		&contract.StartAt,
		&contract.EndAt,
		&contract.MaxHours,
		&contract.TimeAccountingUnit,
		&contract.Notes,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) ListByOrganization(ctx context.Context, organizationID int64) ([]domain.Contract, error) {
	const query = `
        SELECT id, organization_id, name, start_at, end_at, max_hours, time_accounting_unit, notes, created_at, updated_at
        FROM contracts WHERE organization_id=$1 ORDER BY start_at DESC`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contract
	for rows.Next() {
		var contract domain.Contract
		if err := rows.Scan(
			&contract.ID,
			&contract.OrganizationID,
			&contract.Name,
			&contract.StartAt,
			&contract.EndAt,
			&contract.MaxHours,
			&contract.TimeAccountingUnit,
			&contract.Notes,
			&contract.CreatedAt,
			&contract.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, contract)
	}
	return result, rows.Err()
}
