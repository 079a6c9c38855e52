package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/domain"
	"github.com/pardisbank/statement-registry/internal/events"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

type fakeRegistrationRepo struct {
	byAccount map[string]*domain.Registration
	nextID    int
	createErr error
	findErr   error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{byAccount: map[string]*domain.Registration{}}
}

func (r *fakeRegistrationRepo) FindByAccount(_ context.Context, accountNumber string) (*domain.Registration, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	reg, ok := r.byAccount[accountNumber]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *reg
	return &copied, nil
}

func (r *fakeRegistrationRepo) Create(_ context.Context, reg *domain.Registration) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byAccount[reg.AccountNumber]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "registrations_account_number_key"}
	}
	r.nextID++
	reg.ID = fmt.Sprintf("reg-%d", r.nextID)
	reg.CreatedAt = time.Now().UTC()
	copied := *reg
	r.byAccount[reg.AccountNumber] = &copied
	return nil
}

func (r *fakeRegistrationRepo) UpdateDetails(_ context.Context, reg *domain.Registration) error {
	for account, stored := range r.byAccount {
		if stored.ID == reg.ID {
			copied := *reg
			r.byAccount[account] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeRegistrationRepo) MarkIssued(_ context.Context, id, issuedBy string) (string, error) {
	for _, stored := range r.byAccount {
		if stored.ID == id {
			stored.IsIssued = true
			stored.IssuedBy = issuedBy
			return stored.AccountNumber, nil
		}
	}
	return "", pgx.ErrNoRows
}

func (r *fakeRegistrationRepo) List(_ context.Context) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, stored := range r.byAccount {
		out = append(out, *stored)
	}
	return out, nil
}

func (r *fakeRegistrationRepo) Stats(_ context.Context) (*domain.RegistrationStats, error) {
	return &domain.RegistrationStats{Total: int64(len(r.byAccount))}, nil
}

type fakeHistoryRepo struct {
	records []domain.StatementRecord
}

func (r *fakeHistoryRepo) Create(_ context.Context, record *domain.StatementRecord) error {
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeHistoryRepo) ListByRegistration(_ context.Context, registrationID string) ([]domain.StatementRecord, error) {
	var out []domain.StatementRecord
	for _, record := range r.records {
		if record.RegistrationID == registrationID {
			out = append(out, record)
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newLifecycle(repo *fakeRegistrationRepo, history *fakeHistoryRepo, dispatcher events.Dispatcher) *RegistrationService {
	return NewRegistrationService(RegistrationDependencies{
		RegistrationRepo: repo,
		HistoryRepo:      history,
		Dispatcher:       dispatcher,
		Logger:           zap.NewNop(),
	})
}

func submitInput(account string) SubmitInput {
	return SubmitInput{
		AccountNumber: account,
		FullName:      "John Doe",
		PhoneNumber:   "0912345678",
	}
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, code, domainErr.Code)
}

func TestSubmitNewAccountIssuesImmediately(t *testing.T) {
	repo := newFakeRegistrationRepo()
	dispatcher := &recordingDispatcher{}
	svc := newLifecycle(repo, &fakeHistoryRepo{}, dispatcher)

	reg, err := svc.Submit(context.Background(), submitInput("1001001"), "jdoe")
	require.NoError(t, err)
	require.True(t, reg.IsIssued)
	require.Equal(t, domain.RegistrationStateIssued, reg.State())
	require.Equal(t, "jdoe", reg.IssuedBy)
	require.NotEmpty(t, reg.ID)
	require.False(t, reg.RegistrationDate.IsZero())

	issued := dispatcher.ofType(events.EventStatementIssued)
	require.Len(t, issued, 1)
	payload, ok := issued[0].Payload.(events.StatementIssuedPayload)
	require.True(t, ok)
	require.Equal(t, "1001001", payload.AccountNumber)
	require.Equal(t, reg.ID, payload.RegistrationID)
}

func TestSubmitMissingFields(t *testing.T) {
	svc := newLifecycle(newFakeRegistrationRepo(), &fakeHistoryRepo{}, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{AccountNumber: "1001001"}, "jdoe")
	requireDomainCode(t, err, "VALIDATION_FAILED")

	domainErr := apperrors.ToDomainError(err)
	require.Contains(t, domainErr.Details, "full_name")
	require.Contains(t, domainErr.Details, "phone_number")
	require.NotContains(t, domainErr.Details, "account_number")
}

func TestSubmitPendingResubmissionOverwritesAndIssues(t *testing.T) {
	repo := newFakeRegistrationRepo()
	repo.byAccount["1001001"] = &domain.Registration{
		ID:               "reg-seeded",
		AccountNumber:    "1001001",
		FullName:         "Old Name",
		PhoneNumber:      "0900000000",
		RegistrationDate: time.Now().Add(-24 * time.Hour),
		IssuedBy:         "import",
		IsIssued:         false,
	}
	svc := newLifecycle(repo, &fakeHistoryRepo{}, &recordingDispatcher{})

	input := submitInput("1001001")
	input.PhoneNumber = "0998765432"
	reg, err := svc.Submit(context.Background(), input, "jdoe")
	require.NoError(t, err)
	require.Equal(t, "reg-seeded", reg.ID)
	require.True(t, reg.IsIssued)
	require.Equal(t, "John Doe", reg.FullName)
	require.Equal(t, "0998765432", reg.PhoneNumber)

	stored := repo.byAccount["1001001"]
	require.True(t, stored.IsIssued)
	require.Equal(t, "jdoe", stored.IssuedBy)
}

func TestSubmitAfterIssuanceRejected(t *testing.T) {
	repo := newFakeRegistrationRepo()
	svc := newLifecycle(repo, &fakeHistoryRepo{}, nil)

	_, err := svc.Submit(context.Background(), submitInput("1001001"), "jdoe")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), submitInput("1001001"), "jdoe")
	requireDomainCode(t, err, "ALREADY_ISSUED")

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "1001001", domainErr.Details["account_number"])
}

func TestSubmitLifecycleSequence(t *testing.T) {
	repo := newFakeRegistrationRepo()
	repo.byAccount["1001001"] = &domain.Registration{
		ID:            "reg-seeded",
		AccountNumber: "1001001",
		FullName:      "Old Name",
		PhoneNumber:   "0900000000",
		IsIssued:      false,
	}
	svc := newLifecycle(repo, &fakeHistoryRepo{}, nil)

	_, err := svc.Submit(context.Background(), submitInput("1001001"), "jdoe")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), submitInput("1001001"), "jdoe")
	requireDomainCode(t, err, "ALREADY_ISSUED")
}

func TestSubmitConcurrentInsertLoserGetsDuplicate(t *testing.T) {
	repo := newFakeRegistrationRepo()
	repo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "registrations_account_number_key"}
	svc := newLifecycle(repo, &fakeHistoryRepo{}, nil)

	_, err := svc.Submit(context.Background(), submitInput("1001001"), "jdoe")
	requireDomainCode(t, err, "DUPLICATE_ACCOUNT")
}

func TestSubmitStoreFault(t *testing.T) {
	repo := newFakeRegistrationRepo()
	repo.findErr = fmt.Errorf("connection reset")
	svc := newLifecycle(repo, &fakeHistoryRepo{}, nil)

	_, err := svc.Submit(context.Background(), submitInput("1001001"), "jdoe")
	requireDomainCode(t, err, "STORE_ERROR")
}

func TestVerifyUnknownAccount(t *testing.T) {
	svc := newLifecycle(newFakeRegistrationRepo(), &fakeHistoryRepo{}, nil)

	result, err := svc.Verify(context.Background(), "9999999")
	require.NoError(t, err)
	require.Equal(t, "9999999", result.AccountNumber)
	require.False(t, result.Registered)
	require.False(t, result.Issued)
	require.Empty(t, result.FullName)
}

func TestVerifyIssuedAccount(t *testing.T) {
	repo := newFakeRegistrationRepo()
	svc := newLifecycle(repo, &fakeHistoryRepo{}, nil)

	_, err := svc.Submit(context.Background(), submitInput("1001001"), "jdoe")
	require.NoError(t, err)

	result, err := svc.Verify(context.Background(), "1001001")
	require.NoError(t, err)
	require.True(t, result.Registered)
	require.True(t, result.Issued)
	require.Equal(t, "John Doe", result.FullName)
	require.NotNil(t, result.RegistrationDate)
}

func TestVerifyRequiresAccountNumber(t *testing.T) {
	svc := newLifecycle(newFakeRegistrationRepo(), &fakeHistoryRepo{}, nil)

	_, err := svc.Verify(context.Background(), "")
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestMarkIssuedUnknownRegistration(t *testing.T) {
	svc := newLifecycle(newFakeRegistrationRepo(), &fakeHistoryRepo{}, nil)

	err := svc.MarkIssued(context.Background(), "missing-id", "admin")
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestMarkIssuedForceFlipsAndPublishes(t *testing.T) {
	repo := newFakeRegistrationRepo()
	repo.byAccount["1001001"] = &domain.Registration{
		ID:            "reg-seeded",
		AccountNumber: "1001001",
		FullName:      "John Doe",
		PhoneNumber:   "0912345678",
		IsIssued:      false,
	}
	dispatcher := &recordingDispatcher{}
	svc := newLifecycle(repo, &fakeHistoryRepo{}, dispatcher)

	require.NoError(t, svc.MarkIssued(context.Background(), "reg-seeded", "admin"))
	require.True(t, repo.byAccount["1001001"].IsIssued)
	require.Equal(t, "admin", repo.byAccount["1001001"].IssuedBy)

	issued := dispatcher.ofType(events.EventStatementIssued)
	require.Len(t, issued, 1)
	require.Equal(t, "admin", issued[0].Actor)

	// already-issued rows flip again without complaint
	require.NoError(t, svc.MarkIssued(context.Background(), "reg-seeded", "admin"))
}

func TestHistoryListsIssuanceRecords(t *testing.T) {
	history := &fakeHistoryRepo{records: []domain.StatementRecord{
		{ID: "h1", RegistrationID: "reg-1", IssuedBy: "jdoe", IssueDate: time.Now()},
		{ID: "h2", RegistrationID: "reg-2", IssuedBy: "other", IssueDate: time.Now()},
	}}
	svc := newLifecycle(newFakeRegistrationRepo(), history, nil)

	records, err := svc.History(context.Background(), "reg-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "h1", records[0].ID)
}
