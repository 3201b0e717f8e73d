package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LabelRepository defines persistence access for labels.
type LabelRepository interface {
	Create(ctx context.Context, label *domain.Label) error
	List(ctx context.Context) ([]domain.Label, error)
}

type labelRepository struct {
	pool *pgxpool.Pool
}

// NewLabelRepository returns a Postgres-backed implementation.
func NewLabelRepository(pool *pgxpool.Pool) LabelRepository {
	return &labelRepository{pool: pool}
}

func (r *labelRepository) Create(ctx context.Context, label *domain.Label) error {
	const query = `
        INSERT INTO labels (name, description, color)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, label.Name, label.Description, label.Color).
		Scan(&label.ID, &label.CreatedAt)
}

func (r *labelRepository) List(ctx context.Context) ([]domain.Label, error) {
	const query = `
        SELECT id, name, description, color, created_at
        FROM labels ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Label
	for rows.Next() {
		var label domain.Label
		if err := rows.Scan(
			&label.ID,
			&label.Name,
			&label.Description,
			&label.Color,
			&label.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, label)
	}
	return result, rows.Err()
}
