package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zetsuserv/support-portal/internal/domain"
)

// AdminRepository defines persistence access for administrators.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Administrator) error
	Update(ctx context.Context, admin *domain.Administrator) error
	GetByID(ctx context.Context, id string) (*domain.Administrator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Administrator, error)
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Administrator) error {
	const query = `
        INSERT INTO administrators (name, email, password_hash, active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Active,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) Update(ctx context.Context, admin *domain.Administrator) error {
	const query = `
        UPDATE administrators SET name=$1, email=$2, password_hash=$3, active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Active,
		admin.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.Administrator, error) {
	const query = `
        SELECT id, name, email, password_hash, active, created_at, updated_at
        FROM administrators WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Administrator, error) {
	const query = `
        SELECT id, name, email, password_hash, active, created_at, updated_at
        FROM administrators WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *adminRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Administrator, error) {
	var admin domain.Administrator
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
