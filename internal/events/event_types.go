package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStatementIssued     EventType = "statement_issued"
	EventBulkImportCompleted EventType = "bulk_import_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StatementIssuedPayload payload.
type StatementIssuedPayload struct {
	RegistrationID string    `json:"registration_id"`
	AccountNumber  string    `json:"account_number"`
	IssueDate      time.Time `json:"issue_date"`
}

// BulkImportCompletedPayload payload.
type BulkImportCompletedPayload struct {
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}
