package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/pardisbank/statement-registry/internal/domain"
	"github.com/pardisbank/statement-registry/internal/repository"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

// IssuerService manages which directory accounts may issue statements.
type IssuerService struct {
	issuers  repository.IssuerRepository
	branches repository.BranchRepository
	auth     *AuthService
}

// NewIssuerService constructs the service.
func NewIssuerService(issuers repository.IssuerRepository, branches repository.BranchRepository, authService *AuthService) *IssuerService {
	return &IssuerService{issuers: issuers, branches: branches, auth: authService}
}

// Create adds an issuer after verifying the branch exists and the name
// resolves to a directory account.
func (s *IssuerService) Create(ctx context.Context, name, branchID string) (*domain.Issuer, error) {
	if name == "" || branchID == "" {
		return nil, apperrors.NewValidationError("name and branch_id are required", nil)
	}

	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("branch", map[string]any{"id": branchID})
		}
		return nil, apperrors.NewStoreError(err)
	}

	identities, err := s.auth.ListDirectoryUsers(ctx, name)
	if err != nil {
		return nil, err
	}
	found := false
	for _, identity := range identities {
		if identity.Username == name {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.NewValidationError("user not found in directory", map[string]any{"name": name})
	}

	issuer := &domain.Issuer{Name: name, BranchID: branchID, Active: true}
	if err := s.issuers.Create(ctx, issuer); err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return issuer, nil
}

// List returns all issuers, newest first.
func (s *IssuerService) List(ctx context.Context) ([]domain.Issuer, error) {
	issuers, err := s.issuers.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return issuers, nil
}

// Delete removes an issuer.
func (s *IssuerService) Delete(ctx context.Context, id string) error {
	if err := s.issuers.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("issuer", map[string]any{"id": id})
		}
		return apperrors.NewStoreError(err)
	}
	return nil
}

// ToggleActive flips an issuer's active flag and returns the new value.
func (s *IssuerService) ToggleActive(ctx context.Context, id string) (bool, error) {
	active, err := s.issuers.ToggleActive(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("issuer", map[string]any{"id": id})
		}
		return false, apperrors.NewStoreError(err)
	}
	return active, nil
}
