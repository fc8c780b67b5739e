package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// KnowledgeRepository manages FAQ entries.
type KnowledgeRepository interface {
	List(ctx context.Context) ([]domain.KnowledgeEntry, error)
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
	Create(ctx context.Context, entry *domain.KnowledgeEntry) error
	Update(ctx context.Context, entry *domain.KnowledgeEntry) error
	Delete(ctx context.Context, id string) error
}

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository instantiates repository.
func NewKnowledgeRepository(pool *pgxpool.Pool) KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

func (r *knowledgeRepository) List(ctx context.Context) ([]domain.KnowledgeEntry, error) {
	const query = `
        SELECT id, question, answer, category, display_order, created_at, updated_at
        FROM knowledge_entries ORDER BY display_order ASC, created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KnowledgeEntry
	for rows.Next() {
		var entry domain.KnowledgeEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Question,
			&entry.Answer,
			&entry.Category,
			&entry.DisplayOrder,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *knowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	const query = `
        SELECT id, question, answer, category, display_order, created_at, updated_at
        FROM knowledge_entries WHERE id=$1`
	var entry domain.KnowledgeEntry
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.Question,
		&entry.Answer,
		&entry.Category,
		&entry.DisplayOrder,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *knowledgeRepository) Create(ctx context.Context, entry *domain.KnowledgeEntry) error {
	const query = `
        INSERT INTO knowledge_entries (question, answer, category, display_order)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		entry.Question,
		entry.Answer,
		entry.Category,
		entry.DisplayOrder,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
}

func (r *knowledgeRepository) Update(ctx context.Context, entry *domain.KnowledgeEntry) error {
	const query = `
        UPDATE knowledge_entries SET question=$1, answer=$2, category=$3, display_order=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		entry.Question,
		entry.Answer,
		entry.Category,
		entry.DisplayOrder,
		entry.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *knowledgeRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM knowledge_entries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
