package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pardisbank/statement-registry/internal/domain"
)

// BranchRepository encapsulates branch persistence.
type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	GetByCode(ctx context.Context, code string) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
	Delete(ctx context.Context, id string) error
}

type branchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository returns a Postgres-backed implementation.
func NewBranchRepository(pool *pgxpool.Pool) BranchRepository {
	return &branchRepository{pool: pool}
}

func (r *branchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	const query = `
        INSERT INTO branches (code, name)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query, branch.Code, branch.Name).
		Scan(&branch.ID, &branch.CreatedAt)
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	const query = `SELECT id, code, name, created_at FROM branches WHERE id=$1`

	var branch domain.Branch
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&branch.ID,
		&branch.Code,
		&branch.Name,
		&branch.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) GetByCode(ctx context.Context, code string) (*domain.Branch, error) {
	const query = `SELECT id, code, name, created_at FROM branches WHERE code=$1`

	var branch domain.Branch
	if err := r.pool.QueryRow(ctx, query, code).Scan(
		&branch.ID,
		&branch.Code,
		&branch.Name,
		&branch.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	const query = `SELECT id, code, name, created_at FROM branches ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		var branch domain.Branch
		if err := rows.Scan(&branch.ID, &branch.Code, &branch.Name, &branch.CreatedAt); err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}
	return branches, rows.Err()
}

func (r *branchRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM branches WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
