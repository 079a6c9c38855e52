package dto

import (
	"time"

	"github.com/pardisbank/statement-registry/internal/domain"
)

// RegistrationCreateRequest payload for a single registration submission.
type RegistrationCreateRequest struct {
	AccountNumber    string     `json:"account_number"`
	FullName         string     `json:"full_name"`
	PhoneNumber      string     `json:"phone_number"`
	Email            *string    `json:"email,omitempty"`
	IDNumber         *string    `json:"id_number,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
}

// BulkRowRequest is one row of a bulk import; reduced field set.
type BulkRowRequest struct {
	AccountNumber string `json:"account_number"`
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
}

// BulkImportRequest payload for bulk imports.
type BulkImportRequest struct {
	Rows []BulkRowRequest `json:"rows"`
}

// RegistrationResponse is the persisted registration projection.
type RegistrationResponse struct {
	ID               string    `json:"id"`
	AccountNumber    string    `json:"account_number"`
	FullName         string    `json:"full_name"`
	PhoneNumber      string    `json:"phone_number"`
	Email            *string   `json:"email,omitempty"`
	IDNumber         *string   `json:"id_number,omitempty"`
	RegistrationDate time.Time `json:"registration_date"`
	CreatedAt        time.Time `json:"created_at"`
	IssuedBy         string    `json:"issued_by"`
	IsIssued         bool      `json:"is_issued"`
}

// NewRegistrationResponse maps a domain registration.
func NewRegistrationResponse(reg *domain.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:               reg.ID,
		AccountNumber:    reg.AccountNumber,
		FullName:         reg.FullName,
		PhoneNumber:      reg.PhoneNumber,
		Email:            reg.Email,
		IDNumber:         reg.IDNumber,
		RegistrationDate: reg.RegistrationDate,
		CreatedAt:        reg.CreatedAt,
		IssuedBy:         reg.IssuedBy,
		IsIssued:         reg.IsIssued,
	}
}

// StatementRecordResponse is one issuance audit row.
type StatementRecordResponse struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	IssuedBy       string    `json:"issued_by"`
	IssueDate      time.Time `json:"issue_date"`
}

// NewStatementRecordResponse maps a domain statement record.
func NewStatementRecordResponse(record domain.StatementRecord) StatementRecordResponse {
	return StatementRecordResponse{
		ID:             record.ID,
		RegistrationID: record.RegistrationID,
		IssuedBy:       record.IssuedBy,
		IssueDate:      record.IssueDate,
	}
}

// IssuerCountResponse is one row of the per-issuer stats breakdown.
type IssuerCountResponse struct {
	IssuedBy string `json:"issued_by"`
	Count    int64  `json:"count"`
}

// StatsResponse aggregates registration counts.
type StatsResponse struct {
	Total        int64                 `json:"total_registrations"`
	Today        int64                 `json:"todays_registrations"`
	IssuerCounts []IssuerCountResponse `json:"issuer_stats"`
}

// NewStatsResponse maps domain stats.
func NewStatsResponse(stats *domain.RegistrationStats) StatsResponse {
	resp := StatsResponse{Total: stats.Total, Today: stats.Today, IssuerCounts: []IssuerCountResponse{}}
	for _, ic := range stats.IssuerCounts {
		resp.IssuerCounts = append(resp.IssuerCounts, IssuerCountResponse{IssuedBy: ic.IssuedBy, Count: ic.Count})
	}
	return resp
}
