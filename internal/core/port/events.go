package port

import (
	"context"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

// EventPublisher emits wallet lifecycle events for downstream consumers.
type EventPublisher interface {
	PublishSessionAuthenticated(ctx context.Context, event domain.SessionAuthenticatedEvent) error
	PublishTransferExecuted(ctx context.Context, event domain.TransferExecutedEvent) error
	PublishWithdrawalExecuted(ctx context.Context, event domain.WithdrawalExecutedEvent) error
}

// ActivityRepository tracks per-group wallet activity counters.
type ActivityRepository interface {
	Increment(ctx context.Context, groupID, userID int64) error
	Top(ctx context.Context, groupID int64, n int) ([]domain.ActivityRecord, error)
}
