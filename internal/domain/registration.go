package domain

import "time"

// RegistrationState describes where an account sits in the free-statement
// lifecycle. Absent means no row exists for the account.
type RegistrationState string

const (
	RegistrationStateAbsent  RegistrationState = "ABSENT"
	RegistrationStatePending RegistrationState = "PENDING"
	RegistrationStateIssued  RegistrationState = "ISSUED"
)

// Registration records a customer account's claim of a free bank statement.
// account_number is unique across all rows: one registration per account, ever.
type Registration struct {
	ID               string
	AccountNumber    string
	FullName         string
	PhoneNumber      string
	Email            *string
	IDNumber         *string
	RegistrationDate time.Time
	CreatedAt        time.Time
	IssuedBy         string
	IsIssued         bool
}

// State maps the issuance flag onto the lifecycle state. A nil receiver is
// the Absent state so callers can pass through a failed lookup directly.
func (r *Registration) State() RegistrationState {
	if r == nil {
		return RegistrationStateAbsent
	}
	if r.IsIssued {
		return RegistrationStateIssued
	}
	return RegistrationStatePending
}

// IssuerCount is one row of the per-issuer breakdown in RegistrationStats.
type IssuerCount struct {
	IssuedBy string
	Count    int64
}

// RegistrationStats aggregates registration counts for the dashboard.
type RegistrationStats struct {
	Total        int64
	Today        int64
	IssuerCounts []IssuerCount
}
