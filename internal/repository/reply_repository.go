package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// ReplyRepository encapsulates ticket reply persistence.
type ReplyRepository interface {
	Create(ctx context.Context, reply *domain.TicketReply) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketReply, error)
}

type replyRepository struct {
	pool *pgxpool.Pool
}

// NewReplyRepository instantiates repository.
func NewReplyRepository(pool *pgxpool.Pool) ReplyRepository {
	return &replyRepository{pool: pool}
}

func (r *replyRepository) Create(ctx context.Context, reply *domain.TicketReply) error {
	const query = `
        INSERT INTO ticket_replies (ticket_id, author_type, author_id, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		reply.TicketID,
		reply.AuthorType,
		reply.AuthorID,
		reply.Body,
	).Scan(&reply.ID, &reply.CreatedAt)
}

func (r *replyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketReply, error) {
	const query = `
        SELECT id, ticket_id, author_type, author_id, body, created_at
        FROM ticket_replies WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketReply
	for rows.Next() {
		var reply domain.TicketReply
		if err := rows.Scan(
			&reply.ID,
			&reply.TicketID,
			&reply.AuthorType,
			&reply.AuthorID,
			&reply.Body,
			&reply.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reply)
	}
	return result, rows.Err()
}
