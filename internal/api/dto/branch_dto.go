package dto

import (
	"time"

	"github.com/pardisbank/statement-registry/internal/domain"
)

// BranchCreateRequest payload for new branches.
type BranchCreateRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// BranchResponse is the branch projection.
type BranchResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBranchResponse maps a domain branch.
func NewBranchResponse(branch *domain.Branch) BranchResponse {
	return BranchResponse{
		ID:        branch.ID,
		Code:      branch.Code,
		Name:      branch.Name,
		CreatedAt: branch.CreatedAt,
	}
}
