package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// SubscriberRepository manages newsletter recipients.
type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *domain.Subscriber) error
	ListEmails(ctx context.Context) ([]string, error)
}

type subscriberRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriberRepository instantiates repository.
func NewSubscriberRepository(pool *pgxpool.Pool) SubscriberRepository {
	return &subscriberRepository{pool: pool}
}

func (r *subscriberRepository) Create(ctx context.Context, subscriber *domain.Subscriber) error {
	const query = `
        INSERT INTO subscribers (email)
        VALUES ($1)
        ON CONFLICT (email) DO UPDATE SET email=EXCLUDED.email
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, subscriber.Email).
		Scan(&subscriber.ID, &subscriber.CreatedAt)
}

// ListEmails materializes the full recipient list for one broadcast run.
func (r *subscriberRepository) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT email FROM subscribers ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
