package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const ticketColumns = `t.id, t.uid, t.type, t.title, t.status, t.status_changed_at,
       t.urgency, t.impact, t.priority, t.requester, t.assignee, t.team_id,
       t.organization, t.solution, t.observer_ids, t.label_ids, t.contract_ids,
       t.created_at, t.updated_at`

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByUID(ctx context.Context, uid string) (*domain.Ticket, error)
	ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]domain.Ticket, error)
	SearchWithQuery(ctx context.Context, where string, params map[string]any, limit, offset int) ([]domain.Ticket, error)
	CountWithQuery(ctx context.Context, where string, params map[string]any) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (uid, type, title, status, status_changed_at, urgency, impact, priority,
            requester, assignee, team_id, organization, solution, observer_ids, label_ids, contract_ids)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.UID,
		ticket.Type,
		ticket.Title,
		ticket.Status,
		ticket.StatusChangedAt,
		ticket.Urgency,
		ticket.Impact,
		ticket.Priority,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.TeamID,
		ticket.OrganizationID,
		ticket.SolutionMessageID,
		ticket.ObserverIDs,
		ticket.LabelIDs,
		ticket.ContractIDs,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET type=$1, title=$2, status=$3, status_changed_at=$4, urgency=$5, impact=$6,
            priority=$7, requester=$8, assignee=$9, team_id=$10, organization=$11, solution=$12,
            observer_ids=$13, label_ids=$14, contract_ids=$15, updated_at=NOW()
        WHERE id=$16`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Type,
		ticket.Title,
		ticket.Status,
		ticket.StatusChangedAt,
		ticket.Urgency,
		ticket.Impact,
		ticket.Priority,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.TeamID,
		ticket.OrganizationID,
		ticket.SolutionMessageID,
		ticket.ObserverIDs,
		ticket.LabelIDs,
		ticket.ContractIDs,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE t.id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByUID(ctx context.Context, uid string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE t.uid=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, uid)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]domain.Ticket, error) {
	limit, offset = clampPage(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE t.organization=$1
        ORDER BY t.updated_at DESC LIMIT %d OFFSET %d`, ticketColumns, limit, offset)
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// SearchWithQuery executes a where clause produced by the search compiler.
// The clause references the tickets table through the t alias and binds its
// values through :qXpY named parameters.
func (r *ticketRepository) SearchWithQuery(ctx context.Context, where string, params map[string]any, limit, offset int) ([]domain.Ticket, error) {
	limit, offset = clampPage(limit, offset)
	bound, args, err := bindNamed(where, params)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE %s
        ORDER BY t.updated_at DESC LIMIT %d OFFSET %d`, ticketColumns, bound, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountWithQuery(ctx context.Context, where string, params map[string]any) (int64, error) {
	bound, args, err := bindNamed(where, params)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets t WHERE %s`, bound)
	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.UID,
		&ticket.Type,
		&ticket.Title,
		&ticket.Status,
		&ticket.StatusChangedAt,
		&ticket.Urgency,
		&ticket.Impact,
		&ticket.Priority,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.TeamID,
		&ticket.OrganizationID,
		&ticket.SolutionMessageID,
		&ticket.ObserverIDs,
		&ticket.LabelIDs,
		&ticket.ContractIDs,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
