package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pardisbank/statement-registry/internal/domain"
)

// IssuerRepository encapsulates issuer persistence.
type IssuerRepository interface {
	Create(ctx context.Context, issuer *domain.Issuer) error
	List(ctx context.Context) ([]domain.Issuer, error)
	Delete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (bool, error)
}

type issuerRepository struct {
	pool *pgxpool.Pool
}

// NewIssuerRepository returns a Postgres-backed implementation.
func NewIssuerRepository(pool *pgxpool.Pool) IssuerRepository {
	return &issuerRepository{pool: pool}
}

func (r *issuerRepository) Create(ctx context.Context, issuer *domain.Issuer) error {
	const query = `
        INSERT INTO issuers (name, branch_id, active)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query, issuer.Name, issuer.BranchID, issuer.Active).
		Scan(&issuer.ID, &issuer.CreatedAt)
}

func (r *issuerRepository) List(ctx context.Context) ([]domain.Issuer, error) {
	const query = `
        SELECT i.id, i.name, i.branch_id, i.active, i.created_at
        FROM issuers i
        JOIN branches b ON i.branch_id = b.id
        ORDER BY i.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issuers []domain.Issuer
	for rows.Next() {
		var issuer domain.Issuer
		if err := rows.Scan(&issuer.ID, &issuer.Name, &issuer.BranchID, &issuer.Active, &issuer.CreatedAt); err != nil {
			return nil, err
		}
		issuers = append(issuers, issuer)
	}
	return issuers, rows.Err()
}

func (r *issuerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issuers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issuerRepository) ToggleActive(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE issuers SET active = NOT active
        WHERE id=$1
        RETURNING active`

	var active bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}
