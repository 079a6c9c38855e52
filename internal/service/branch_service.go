package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/pardisbank/statement-registry/internal/domain"
	"github.com/pardisbank/statement-registry/internal/repository"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

// BranchService manages bank branches.
type BranchService struct {
	branches repository.BranchRepository
}

// NewBranchService constructs the service.
func NewBranchService(branches repository.BranchRepository) *BranchService {
	return &BranchService{branches: branches}
}

// Create adds a branch after checking the code is unused.
func (s *BranchService) Create(ctx context.Context, code, name string) (*domain.Branch, error) {
	if code == "" || name == "" {
		return nil, apperrors.NewValidationError("code and name are required", nil)
	}

	if _, err := s.branches.GetByCode(ctx, code); err == nil {
		return nil, apperrors.NewConflict("branch code already exists", map[string]any{"code": code})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreError(err)
	}

	branch := &domain.Branch{Code: code, Name: name}
	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return branch, nil
}

// List returns all branches, newest first.
func (s *BranchService) List(ctx context.Context) ([]domain.Branch, error) {
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return branches, nil
}

// Delete removes a branch.
func (s *BranchService) Delete(ctx context.Context, id string) error {
	if err := s.branches.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("branch", map[string]any{"id": id})
		}
		return apperrors.NewStoreError(err)
	}
	return nil
}
