package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, key domain.UserKey, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_key", key.String()),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishSessionAuthenticated logs squad.session.authenticated events.
func (p *StubPublisher) PublishSessionAuthenticated(_ context.Context, event domain.SessionAuthenticatedEvent) error {
	payload := map[string]any{
		"address":           event.Address,
		"network":           event.Network,
		"valid_until_epoch": event.ValidUntilEpoch,
		"authenticated_at":  event.AuthenticatedAt,
	}
	p.logEvent("squad.session.authenticated", event.UserKey, event.AuthenticatedAt, payload)
	return nil
}

// PublishTransferExecuted logs squad.wallet.sent events.
func (p *StubPublisher) PublishTransferExecuted(_ context.Context, event domain.TransferExecutedEvent) error {
	payload := map[string]any{
		"sender":      event.Sender,
		"recipient":   event.Recipient,
		"amount_mist": event.AmountMist,
		"coin_type":   event.CoinType,
		"digest":      event.Digest,
		"executed_at": event.ExecutedAt,
	}
	p.logEvent("squad.wallet.sent", event.UserKey, event.ExecutedAt, payload)
	return nil
}

// PublishWithdrawalExecuted logs squad.wallet.withdrawn events.
func (p *StubPublisher) PublishWithdrawalExecuted(_ context.Context, event domain.WithdrawalExecutedEvent) error {
	payload := map[string]any{
		"sender":      event.Sender,
		"destination": event.Destination,
		"amount_mist": event.AmountMist,
		"coin_type":   event.CoinType,
		"digest":      event.Digest,
		"executed_at": event.ExecutedAt,
	}
	p.logEvent("squad.wallet.withdrawn", event.UserKey, event.ExecutedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
