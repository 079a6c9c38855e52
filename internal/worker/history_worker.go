package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/pardisbank/statement-registry/internal/domain"
	"github.com/pardisbank/statement-registry/internal/events"
	"github.com/pardisbank/statement-registry/internal/repository"
)

// StartHistoryWorker subscribes to issuance events and appends a
// statement_history audit row for each one. A failed append is logged and
// does not fail the originating request.
func StartHistoryWorker(dispatcher events.Dispatcher, history repository.StatementHistoryRepository, logger *zap.Logger) {
	if dispatcher == nil || history == nil {
		return
	}

	dispatcher.Subscribe(events.EventStatementIssued, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.StatementIssuedPayload)
		if !ok {
			logger.Warn("unexpected payload for statement_issued event", zap.String("event_id", event.ID))
			return nil
		}

		record := &domain.StatementRecord{
			RegistrationID: payload.RegistrationID,
			IssuedBy:       event.Actor,
			IssueDate:      payload.IssueDate,
		}
		if err := history.Create(ctx, record); err != nil {
			logger.Error("failed to append statement history",
				zap.String("registration_id", payload.RegistrationID), zap.Error(err))
		}
		return nil
	})
}
