package dto

import (
	"time"

	"github.com/pardisbank/statement-registry/internal/domain"
)

// IssuerCreateRequest payload for new issuers.
type IssuerCreateRequest struct {
	Name     string `json:"name"`
	BranchID string `json:"branch_id"`
}

// IssuerResponse is the issuer projection.
type IssuerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BranchID  string    `json:"branch_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIssuerResponse maps a domain issuer.
func NewIssuerResponse(issuer *domain.Issuer) IssuerResponse {
	return IssuerResponse{
		ID:        issuer.ID,
		Name:      issuer.Name,
		BranchID:  issuer.BranchID,
		Active:    issuer.Active,
		CreatedAt: issuer.CreatedAt,
	}
}
