package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/domain"
	"github.com/pardisbank/statement-registry/internal/events"
	"github.com/pardisbank/statement-registry/internal/observability"
	"github.com/pardisbank/statement-registry/internal/persistence"
	"github.com/pardisbank/statement-registry/internal/repository"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

// RegistrationService is the lifecycle state machine for free-statement
// registrations. States per account: Absent (no row), Pending
// (is_issued=false), Issued (terminal). Each account receives at most one
// free statement, ever.
type RegistrationService struct {
	registrations repository.RegistrationRepository
	history       repository.StatementHistoryRepository
	cache         *persistence.Redis
	cacheTTL      time.Duration
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// RegistrationDependencies bundles collaborators for the service.
type RegistrationDependencies struct {
	RegistrationRepo repository.RegistrationRepository
	HistoryRepo      repository.StatementHistoryRepository
	Cache            *persistence.Redis
	CacheTTL         time.Duration
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewRegistrationService constructs the service.
func NewRegistrationService(deps RegistrationDependencies) *RegistrationService {
	return &RegistrationService{
		registrations: deps.RegistrationRepo,
		history:       deps.HistoryRepo,
		cache:         deps.Cache,
		cacheTTL:      deps.CacheTTL,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
	}
}

// SubmitInput describes a registration submission.
type SubmitInput struct {
	AccountNumber    string
	FullName         string
	PhoneNumber      string
	Email            *string
	IDNumber         *string
	RegistrationDate time.Time
}

// VerifyResult reflects the three-state model for one account.
type VerifyResult struct {
	AccountNumber    string     `json:"account_number"`
	Registered       bool       `json:"registered"`
	Issued           bool       `json:"issued"`
	FullName         string     `json:"full_name,omitempty"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
}

// Submit applies one lifecycle transition for the account:
//   - Absent: insert a new row and issue immediately.
//   - Pending: overwrite the mutable fields and flip to issued.
//   - Issued: reject with AlreadyIssued, row untouched.
//
// Two concurrent first-submissions race on the insert; the unique constraint
// lets exactly one win and the loser gets DuplicateAccount.
func (s *RegistrationService) Submit(ctx context.Context, input SubmitInput, actor string) (*domain.Registration, error) {
	if err := validateSubmit(input); err != nil {
		return nil, err
	}
	registrationDate := input.RegistrationDate
	if registrationDate.IsZero() {
		registrationDate = time.Now().UTC()
	}

	existing, err := s.registrations.FindByAccount(ctx, input.AccountNumber)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreError(err)
	}

	var reg *domain.Registration
	switch existing.State() {
	case domain.RegistrationStateAbsent:
		reg = &domain.Registration{
			AccountNumber:    input.AccountNumber,
			FullName:         input.FullName,
			PhoneNumber:      input.PhoneNumber,
			Email:            input.Email,
			IDNumber:         input.IDNumber,
			RegistrationDate: registrationDate,
			IssuedBy:         actor,
			IsIssued:         true,
		}
		if err := s.registrations.Create(ctx, reg); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, apperrors.NewDuplicateAccount(input.AccountNumber)
			}
			return nil, apperrors.NewStoreError(err)
		}

	case domain.RegistrationStatePending:
		existing.FullName = input.FullName
		existing.PhoneNumber = input.PhoneNumber
		existing.Email = input.Email
		existing.IDNumber = input.IDNumber
		existing.RegistrationDate = registrationDate
		existing.IssuedBy = actor
		existing.IsIssued = true
		if err := s.registrations.UpdateDetails(ctx, existing); err != nil {
			return nil, apperrors.NewStoreError(err)
		}
		reg = existing

	case domain.RegistrationStateIssued:
		return nil, apperrors.NewAlreadyIssued(input.AccountNumber)
	}

	s.invalidateVerify(ctx, input.AccountNumber)
	s.metrics.RecordRegistration()
	s.publishIssued(ctx, reg.ID, reg.AccountNumber, actor)
	s.logger.Info("registration issued",
		zap.String("registration_id", reg.ID),
		zap.String("account_number", reg.AccountNumber),
		zap.String("issued_by", actor))
	return reg, nil
}

// Verify reports whether the account is registered and issued, without
// mutating anything. Snapshots are cached briefly.
func (s *RegistrationService) Verify(ctx context.Context, accountNumber string) (*VerifyResult, error) {
	if accountNumber == "" {
		return nil, apperrors.NewValidationError("account number is required", nil)
	}

	if cached, err := s.cache.Get(ctx, verifyCacheKey(accountNumber)); err == nil && cached != "" {
		var result VerifyResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	existing, err := s.registrations.FindByAccount(ctx, accountNumber)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreError(err)
	}

	result := &VerifyResult{AccountNumber: accountNumber}
	if existing != nil {
		result.Registered = true
		result.Issued = existing.IsIssued
		result.FullName = existing.FullName
		result.PhoneNumber = existing.PhoneNumber
		result.RegistrationDate = &existing.RegistrationDate
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, verifyCacheKey(accountNumber), string(encoded), s.cacheTTL); err != nil {
			s.logger.Warn("verify cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// MarkIssued is the administrative override: it force-flips the issuance
// flag without validating prior state. Idempotent for already-issued rows.
func (s *RegistrationService) MarkIssued(ctx context.Context, id, actor string) error {
	accountNumber, err := s.registrations.MarkIssued(ctx, id, actor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("registration", map[string]any{"id": id})
		}
		return apperrors.NewStoreError(err)
	}

	s.invalidateVerify(ctx, accountNumber)
	s.publishIssued(ctx, id, accountNumber, actor)
	return nil
}

// List returns all registrations, newest first.
func (s *RegistrationService) List(ctx context.Context) ([]domain.Registration, error) {
	registrations, err := s.registrations.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return registrations, nil
}

// Stats aggregates registration counts.
func (s *RegistrationService) Stats(ctx context.Context) (*domain.RegistrationStats, error) {
	stats, err := s.registrations.Stats(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return stats, nil
}

// History lists the issuance audit rows for a registration.
func (s *RegistrationService) History(ctx context.Context, registrationID string) ([]domain.StatementRecord, error) {
	records, err := s.history.ListByRegistration(ctx, registrationID)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return records, nil
}

func (s *RegistrationService) publishIssued(ctx context.Context, registrationID, accountNumber, actor string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventStatementIssued,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload: events.StatementIssuedPayload{
			RegistrationID: registrationID,
			AccountNumber:  accountNumber,
			IssueDate:      time.Now().UTC(),
		},
	})
}

func (s *RegistrationService) invalidateVerify(ctx context.Context, accountNumber string) {
	if err := s.cache.Delete(ctx, verifyCacheKey(accountNumber)); err != nil {
		s.logger.Warn("verify cache invalidation failed",
			zap.String("account_number", accountNumber), zap.Error(err))
	}
}

func validateSubmit(input SubmitInput) error {
	missing := map[string]any{}
	if input.AccountNumber == "" {
		missing["account_number"] = "required"
	}
	if input.FullName == "" {
		missing["full_name"] = "required"
	}
	if input.PhoneNumber == "" {
		missing["phone_number"] = "required"
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", missing)
	}
	return nil
}

func verifyCacheKey(accountNumber string) string {
	return "verify:" + accountNumber
}
