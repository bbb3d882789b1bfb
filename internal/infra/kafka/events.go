package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserKey   string           `json:"user_key,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, key domain.UserKey, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserKey:   key.String(),
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(key.String()),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishSessionAuthenticated publishes squad.session.authenticated events.
func (p *EventPublisher) PublishSessionAuthenticated(ctx context.Context, event domain.SessionAuthenticatedEvent) error {
	payload := struct {
		UserID          int64     `json:"user_id"`
		ChatID          int64     `json:"chat_id"`
		Address         string    `json:"address"`
		Network         string    `json:"network"`
		ValidUntilEpoch uint64    `json:"valid_until_epoch"`
		AuthenticatedAt time.Time `json:"authenticated_at"`
	}{
		UserID:          event.UserKey.UserID,
		ChatID:          event.UserKey.ChatID,
		Address:         event.Address,
		Network:         string(event.Network),
		ValidUntilEpoch: event.ValidUntilEpoch,
		AuthenticatedAt: event.AuthenticatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "squad.session.authenticated", event.UserKey, event.AuthenticatedAt, payload)
}

// PublishTransferExecuted publishes squad.wallet.sent events.
func (p *EventPublisher) PublishTransferExecuted(ctx context.Context, event domain.TransferExecutedEvent) error {
	payload := struct {
		UserID     int64     `json:"user_id"`
		ChatID     int64     `json:"chat_id"`
		Sender     string    `json:"sender"`
		Recipient  string    `json:"recipient"`
		AmountMist uint64    `json:"amount_mist"`
		CoinType   string    `json:"coin_type"`
		Digest     string    `json:"digest"`
		ExecutedAt time.Time `json:"executed_at"`
	}{
		UserID:     event.UserKey.UserID,
		ChatID:     event.UserKey.ChatID,
		Sender:     event.Sender,
		Recipient:  event.Recipient,
		AmountMist: event.AmountMist,
		CoinType:   event.CoinType,
		Digest:     event.Digest,
		ExecutedAt: event.ExecutedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "squad.wallet.sent", event.UserKey, event.ExecutedAt, payload)
}

// PublishWithdrawalExecuted publishes squad.wallet.withdrawn events.
func (p *EventPublisher) PublishWithdrawalExecuted(ctx context.Context, event domain.WithdrawalExecutedEvent) error {
	payload := struct {
		UserID      int64     `json:"user_id"`
		ChatID      int64     `json:"chat_id"`
		Sender      string    `json:"sender"`
		Destination string    `json:"destination"`
		AmountMist  uint64    `json:"amount_mist"`
		CoinType    string    `json:"coin_type"`
		Digest      string    `json:"digest"`
		ExecutedAt  time.Time `json:"executed_at"`
	}{
		UserID:      event.UserKey.UserID,
		ChatID:      event.UserKey.ChatID,
		Sender:      event.Sender,
		Destination: event.Destination,
		AmountMist:  event.AmountMist,
		CoinType:    event.CoinType,
		Digest:      event.Digest,
		ExecutedAt:  event.ExecutedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "squad.wallet.withdrawn", event.UserKey, event.ExecutedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
