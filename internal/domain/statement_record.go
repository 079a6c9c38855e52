package domain

import "time"

// StatementRecord is an append-only audit row written whenever a statement
// is issued for a registration.
type StatementRecord struct {
	ID             string
	RegistrationID string
	IssuedBy       string
	IssueDate      time.Time
	CreatedAt      time.Time
}
