package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pardisbank/statement-registry/internal/domain"
)

// RegistrationRepository encapsulates registration persistence. Each method
// executes as a single transactional unit; the unique constraint on
// account_number is the concurrency backstop for duplicate inserts.
type RegistrationRepository interface {
	FindByAccount(ctx context.Context, accountNumber string) (*domain.Registration, error)
	Create(ctx context.Context, reg *domain.Registration) error
	UpdateDetails(ctx context.Context, reg *domain.Registration) error
	MarkIssued(ctx context.Context, id, issuedBy string) (string, error)
	List(ctx context.Context) ([]domain.Registration, error)
	Stats(ctx context.Context) (*domain.RegistrationStats, error)
}

type registrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository returns a Postgres-backed implementation.
func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepository{pool: pool}
}

func (r *registrationRepository) FindByAccount(ctx context.Context, accountNumber string) (*domain.Registration, error) {
	const query = `
        SELECT id, account_number, full_name, phone_number, email, id_number,
               registration_date, created_at, issued_by, is_issued
        FROM registrations WHERE account_number=$1`

	var reg domain.Registration
	if err := r.pool.QueryRow(ctx, query, accountNumber).Scan(
		&reg.ID,
		&reg.AccountNumber,
		&reg.FullName,
		&reg.PhoneNumber,
		&reg.Email,
		&reg.IDNumber,
		&reg.RegistrationDate,
		&reg.CreatedAt,
		&reg.IssuedBy,
		&reg.IsIssued,
	); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (account_number, full_name, phone_number, email, id_number,
                                   registration_date, issued_by, is_issued)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		reg.AccountNumber,
		reg.FullName,
		reg.PhoneNumber,
		reg.Email,
		reg.IDNumber,
		reg.RegistrationDate,
		reg.IssuedBy,
		reg.IsIssued,
	).Scan(&reg.ID, &reg.CreatedAt)
}

func (r *registrationRepository) UpdateDetails(ctx context.Context, reg *domain.Registration) error {
	const query = `
        UPDATE registrations
        SET full_name=$1, phone_number=$2, email=$3, id_number=$4,
            registration_date=$5, issued_by=$6, is_issued=$7
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		reg.FullName,
		reg.PhoneNumber,
		reg.Email,
		reg.IDNumber,
		reg.RegistrationDate,
		reg.IssuedBy,
		reg.IsIssued,
		reg.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkIssued force-flips the issuance flag without checking prior state and
// returns the affected account number. Flipping an already-issued row is a
// no-op effect-wise.
func (r *registrationRepository) MarkIssued(ctx context.Context, id, issuedBy string) (string, error) {
	const query = `
        UPDATE registrations SET is_issued=TRUE, issued_by=$1
        WHERE id=$2
        RETURNING account_number`

	var accountNumber string
	if err := r.pool.QueryRow(ctx, query, issuedBy, id).Scan(&accountNumber); err != nil {
		return "", err
	}
	return accountNumber, nil
}

// IsUniqueViolation reports whether err is the engine's unique-constraint
// violation, the backstop for concurrent first-submissions on one account.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *registrationRepository) List(ctx context.Context) ([]domain.Registration, error) {
	const query = `
        SELECT id, account_number, full_name, phone_number, email, id_number,
               registration_date, created_at, issued_by, is_issued
        FROM registrations
        ORDER BY registration_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registrations []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(
			&reg.ID,
			&reg.AccountNumber,
			&reg.FullName,
			&reg.PhoneNumber,
			&reg.Email,
			&reg.IDNumber,
			&reg.RegistrationDate,
			&reg.CreatedAt,
			&reg.IssuedBy,
			&reg.IsIssued,
		); err != nil {
			return nil, err
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

func (r *registrationRepository) Stats(ctx context.Context) (*domain.RegistrationStats, error) {
	stats := &domain.RegistrationStats{}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&stats.Total); err != nil {
		return nil, err
	}

	const todayQuery = `
        SELECT COUNT(*) FROM registrations
        WHERE registration_date::date = CURRENT_DATE`
	if err := r.pool.QueryRow(ctx, todayQuery).Scan(&stats.Today); err != nil {
		return nil, err
	}

	const issuerQuery = `
        SELECT issued_by, COUNT(*) AS count
        FROM registrations
        GROUP BY issued_by
        ORDER BY count DESC`
	rows, err := r.pool.Query(ctx, issuerQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ic domain.IssuerCount
		if err := rows.Scan(&ic.IssuedBy, &ic.Count); err != nil {
			return nil, err
		}
		stats.IssuerCounts = append(stats.IssuerCounts, ic)
	}
	return stats, rows.Err()
}
