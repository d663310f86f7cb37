package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// MessageRefRepository tracks outbound notification messages per
// ticket so the chat-bot channel can edit them later.
type MessageRefRepository interface {
	Insert(ctx context.Context, ref *domain.MessageRef) error
	ListByTicket(ctx context.Context, ticketNumber string, channel domain.NotificationChannel) ([]domain.MessageRef, error)
}

type messageRefRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRefRepository instantiates repository.
func NewMessageRefRepository(pool *pgxpool.Pool) MessageRefRepository {
	return &messageRefRepository{pool: pool}
}

func (r *messageRefRepository) Insert(ctx context.Context, ref *domain.MessageRef) error {
	const query = `
        INSERT INTO notification_message_refs (ticket_number, channel, chat_id, message_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ref.TicketNumber,
		ref.Channel,
		ref.ChatID,
		ref.MessageID,
	).Scan(&ref.ID, &ref.CreatedAt)
}

func (r *messageRefRepository) ListByTicket(ctx context.Context, ticketNumber string, channel domain.NotificationChannel) ([]domain.MessageRef, error) {
	const query = `
        SELECT id, ticket_number, channel, chat_id, message_id, created_at
        FROM notification_message_refs
        WHERE ticket_number=$1 AND channel=$2
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketNumber, channel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessageRefs(rows)
}

func scanMessageRefs(rows pgx.Rows) ([]domain.MessageRef, error) {
	var result []domain.MessageRef
	for rows.Next() {
		var ref domain.MessageRef
		if err := rows.Scan(
			&ref.ID,
			&ref.TicketNumber,
			&ref.Channel,
			&ref.ChatID,
			&ref.MessageID,
			&ref.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ref)
	}
	return result, rows.Err()
}
