package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pardisbank/statement-registry/internal/domain"
)

// StatementHistoryRepository appends issuance audit rows.
type StatementHistoryRepository interface {
	Create(ctx context.Context, record *domain.StatementRecord) error
	ListByRegistration(ctx context.Context, registrationID string) ([]domain.StatementRecord, error)
}

type statementHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatementHistoryRepository returns a Postgres-backed implementation.
func NewStatementHistoryRepository(pool *pgxpool.Pool) StatementHistoryRepository {
	return &statementHistoryRepository{pool: pool}
}

func (r *statementHistoryRepository) Create(ctx context.Context, record *domain.StatementRecord) error {
	const query = `
        INSERT INTO statement_history (registration_id, issued_by, issue_date)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query, record.RegistrationID, record.IssuedBy, record.IssueDate).
		Scan(&record.ID, &record.CreatedAt)
}

func (r *statementHistoryRepository) ListByRegistration(ctx context.Context, registrationID string) ([]domain.StatementRecord, error) {
	const query = `
        SELECT id, registration_id, issued_by, issue_date, created_at
        FROM statement_history
        WHERE registration_id=$1
        ORDER BY issue_date DESC`

	rows, err := r.pool.Query(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.StatementRecord
	for rows.Next() {
		var record domain.StatementRecord
		if err := rows.Scan(&record.ID, &record.RegistrationID, &record.IssuedBy, &record.IssueDate, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
