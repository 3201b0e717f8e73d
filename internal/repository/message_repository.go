package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// MessageRepository encapsulates message persistence.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository returns a Postgres-backed implementation.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	const query = `
        INSERT INTO messages (ticket_id, author_id, content, is_confidential, via, email_message_id, email_refs)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		message.TicketID,
		message.AuthorID,
		message.Content,
		message.IsConfidential,
		message.Via,
		message.EmailMessageID,
		message.EmailRefs,
	).Scan(&message.ID, &message.CreatedAt)
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, is_confidential, via, email_message_id, email_refs, created_at
        FROM messages WHERE id=$1`
	var message domain.Message
	if err := scanMessage(r.pool.QueryRow(ctx, query, id), &message); err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, is_confidential, via, email_message_id, email_refs, created_at
        FROM messages WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var message domain.Message
		if err := scanMessage(rows, &message); err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	return result, rows.Err()
}

func scanMessage(row pgx.Row, message *domain.Message) error {
	return row.Scan(
		&message.ID,
		&message.TicketID,
		&message.AuthorID,
		&message.Content,
		&message.IsConfidential,
		&message.Via,
		&message.EmailMessageID,
		&message.EmailRefs,
		&message.CreatedAt,
	)
}
