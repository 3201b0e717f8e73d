package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TimeSpentRepository defines persistence access for time tracking entries.
type TimeSpentRepository interface {
	Create(ctx context.Context, entry *domain.TimeSpent) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TimeSpent, error)
	SumByContract(ctx context.Context, contractID int64) (int, error)
}

type timeSpentRepository struct {
	pool *pgxpool.Pool
}

// NewTimeSpentRepository returns a Postgres-backed implementation.
func NewTimeSpentRepository(pool *pgxpool.Pool) TimeSpentRepository {
	return &timeSpentRepository{pool: pool}
}

func (r *timeSpentRepository) Create(ctx context.Context, entry *domain.TimeSpent) error {
	const query = `
        INSERT INTO time_spents (ticket_id, contract_id, minutes, real_minutes)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.ContractID,
		entry.Minutes,
		entry.RealMinutes,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *timeSpentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TimeSpent, error) {
	const query = `
        SELECT id, ticket_id, contract_id, minutes, real_minutes, created_at
        FROM time_spents WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimeSpent
	for rows.Next() {
		var entry domain.TimeSpent
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ContractID,
			&entry.Minutes,
			&entry.RealMinutes,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// SumByContract totals the accounted minutes charged on a contract.
func (r *timeSpentRepository) SumByContract(ctx context.Context, contractID int64) (int, error) {
	const query = `
        SELECT COALESCE(SUM(minutes), 0) FROM time_spents WHERE contract_id=$1`
	var total int
	if err := r.pool.QueryRow(ctx, query, contractID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
