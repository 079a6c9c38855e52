package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/events"
	"github.com/pardisbank/statement-registry/internal/observability"
	apperrors "github.com/pardisbank/statement-registry/pkg/util"
)

// BulkRow is one row of a bulk registration import. Bulk rows carry a
// reduced field set: no email, no id number.
type BulkRow struct {
	AccountNumber string
	FullName      string
	PhoneNumber   string
}

// RowFailure records a failed row with its 1-based index.
type RowFailure struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BulkReport summarizes a bulk import.
type BulkReport struct {
	SuccessCount int          `json:"success_count"`
	FailureCount int          `json:"failure_count"`
	Failures     []RowFailure `json:"failures"`
}

// BulkImportService drives the registration lifecycle over a list of rows.
// Rows commit independently, so a fatal store error on a later row cannot
// roll back successes already reported.
type BulkImportService struct {
	lifecycle  *RegistrationService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewBulkImportService constructs the service.
func NewBulkImportService(lifecycle *RegistrationService, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *BulkImportService {
	return &BulkImportService{lifecycle: lifecycle, dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// ImportAll processes every row independently. A row's failure is recorded
// and processing continues; no row's failure aborts the batch.
func (s *BulkImportService) ImportAll(ctx context.Context, rows []BulkRow, actor string) *BulkReport {
	report := &BulkReport{Failures: []RowFailure{}}

	for i, row := range rows {
		rowIndex := i + 1
		_, err := s.lifecycle.Submit(ctx, SubmitInput{
			AccountNumber: row.AccountNumber,
			FullName:      row.FullName,
			PhoneNumber:   row.PhoneNumber,
		}, actor)
		if err != nil {
			report.FailureCount++
			report.Failures = append(report.Failures, RowFailure{
				Row:     rowIndex,
				Message: apperrors.ToDomainError(err).Message,
			})
			s.metrics.RecordBulkRow(false)
			s.logger.Warn("bulk import row failed",
				zap.Int("row", rowIndex),
				zap.String("account_number", row.AccountNumber),
				zap.Error(err))
			continue
		}
		report.SuccessCount++
		s.metrics.RecordBulkRow(true)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventBulkImportCompleted,
			Actor:     actor,
			Timestamp: time.Now().UTC(),
			Payload: events.BulkImportCompletedPayload{
				SuccessCount: report.SuccessCount,
				FailureCount: report.FailureCount,
			},
		})
	}
	return report
}
