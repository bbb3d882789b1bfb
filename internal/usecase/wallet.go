package usecase

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/logger"
)

const (
	// SuiCoinType is the canonical SUI coin type tag.
	SuiCoinType = "0x2::sui::SUI"

	mistPerSui = 1_000_000_000
)

// WalletService executes wallet commands against the chain. Every operation
// passes through RequireAuthenticated first; nothing here ever signs with a
// session the state machine has not vouched for.
type WalletService struct {
	sessions  *SessionService
	broker    *IdentityBroker
	chain     port.ChainClient
	activity  port.ActivityRepository
	events    port.EventPublisher
	gasBudget uint64
	logger    *zap.Logger
}

// NewWalletService constructs a WalletService instance. activity may be nil
// when the ledger is not configured.
func NewWalletService(sessions *SessionService, broker *IdentityBroker, chain port.ChainClient, activity port.ActivityRepository, events port.EventPublisher, gasBudget uint64, log *zap.Logger) *WalletService {
	if gasBudget == 0 {
		gasBudget = 10_000_000
	}
	return &WalletService{
		sessions:  sessions,
		broker:    broker,
		chain:     chain,
		activity:  activity,
		events:    events,
		gasBudget: gasBudget,
		logger:    log,
	}
}

// GetBalance returns the aggregate balance for the user's wallet.
func (w *WalletService) GetBalance(ctx context.Context, key domain.UserKey, coinType string) (domain.Balance, error) {
	session, err := w.sessions.RequireAuthenticated(ctx, key)
	if err != nil {
		return domain.Balance{}, err
	}
	if coinType == "" {
		coinType = SuiCoinType
	}

	balance, err := w.chain.GetBalance(ctx, session.Address, coinType)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("%w: get balance: %v", ErrUpstreamUnavailable, err)
	}

	w.recordActivity(ctx, key)
	return balance, nil
}

// GetWallet returns the user's derived wallet address.
func (w *WalletService) GetWallet(ctx context.Context, key domain.UserKey) (string, error) {
	session, err := w.sessions.RequireAuthenticated(ctx, key)
	if err != nil {
		return "", err
	}
	return session.Address, nil
}

// Send transfers coins to a recipient address and returns the transaction
// digest.
func (w *WalletService) Send(ctx context.Context, key domain.UserKey, recipient, amount, coinType string) (string, error) {
	digest, session, amountMist, err := w.transfer(ctx, key, recipient, amount, coinType)
	if err != nil {
		return "", err
	}

	if w.events != nil {
		event := domain.TransferExecutedEvent{
			EventID:    uuid.NewString(),
			UserKey:    key,
			Sender:     session.Address,
			Recipient:  recipient,
			AmountMist: amountMist,
			CoinType:   coinType,
			Digest:     digest,
			ExecutedAt: time.Now().UTC(),
		}
		if err := w.events.PublishTransferExecuted(ctx, event); err != nil {
			w.logger.Warn("publish transfer event", zap.Error(err))
		}
	}

	return digest, nil
}

// Withdraw moves coins to an external address and returns the transaction
// digest.
func (w *WalletService) Withdraw(ctx context.Context, key domain.UserKey, destination, amount, coinType string) (string, error) {
	digest, session, amountMist, err := w.transfer(ctx, key, destination, amount, coinType)
	if err != nil {
		return "", err
	}

	if w.events != nil {
		event := domain.WithdrawalExecutedEvent{
			EventID:     uuid.NewString(),
			UserKey:     key,
			Sender:      session.Address,
			Destination: destination,
			AmountMist:  amountMist,
			CoinType:    coinType,
			Digest:      digest,
			ExecutedAt:  time.Now().UTC(),
		}
		if err := w.events.PublishWithdrawalExecuted(ctx, event); err != nil {
			w.logger.Warn("publish withdrawal event", zap.Error(err))
		}
	}

	return digest, nil
}

// Top returns the group's activity leaderboard.
func (w *WalletService) Top(ctx context.Context, groupID int64, n int) ([]domain.ActivityRecord, error) {
	if w.activity == nil {
		return nil, nil
	}
	return w.activity.Top(ctx, groupID, n)
}

func (w *WalletService) transfer(ctx context.Context, key domain.UserKey, recipient, amount, coinType string) (string, domain.AuthenticatedSession, uint64, error) {
	session, err := w.sessions.RequireAuthenticated(ctx, key)
	if err != nil {
		return "", domain.AuthenticatedSession{}, 0, err
	}

	amountMist, err := ParseSuiAmount(amount)
	if err != nil {
		return "", domain.AuthenticatedSession{}, 0, err
	}
	if coinType == "" {
		coinType = SuiCoinType
	}

	txBytes, err := w.chain.BuildTransfer(ctx, port.TransferRequest{
		Sender:     session.Address,
		Recipient:  recipient,
		AmountMist: amountMist,
		CoinType:   coinType,
		GasBudget:  w.gasBudget,
	})
	if err != nil {
		return "", domain.AuthenticatedSession{}, 0, fmt.Errorf("%w: build transfer: %v", ErrUpstreamUnavailable, err)
	}

	// RequireAuthenticated already confirmed the epoch bound; refetch for the
	// signature check so a session expiring between the two calls is caught.
	epoch, err := w.chain.CurrentEpoch(ctx)
	if err != nil {
		return "", domain.AuthenticatedSession{}, 0, fmt.Errorf("%w: fetch current epoch: %v", ErrUpstreamUnavailable, err)
	}

	signed, err := w.broker.SignTransaction(session, txBytes, epoch)
	if err != nil {
		return "", domain.AuthenticatedSession{}, 0, err
	}

	digest, err := w.chain.ExecuteTransaction(ctx, signed)
	if err != nil {
		return "", domain.AuthenticatedSession{}, 0, fmt.Errorf("%w: execute transaction: %v", ErrUpstreamUnavailable, err)
	}

	w.logger.Info("transfer executed",
		zap.String("user_key", key.String()),
		zap.String("sender", logger.MaskAddress(session.Address)),
		zap.String("digest", digest),
		zap.Uint64("amount_mist", amountMist),
	)

	w.recordActivity(ctx, key)
	return digest, session, amountMist, nil
}

func (w *WalletService) recordActivity(ctx context.Context, key domain.UserKey) {
	if w.activity == nil {
		return
	}
	if err := w.activity.Increment(ctx, key.ChatID, key.UserID); err != nil {
		w.logger.Warn("increment activity", zap.Error(err))
	}
}

// FormatSuiAmount renders a MIST balance as a decimal SUI string with
// trailing zeros trimmed.
func FormatSuiAmount(mist uint64) string {
	whole := mist / mistPerSui
	frac := mist % mistPerSui
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return fmt.Sprintf("%d.%s", whole, fracStr)
}

// ParseSuiAmount converts a decimal SUI amount into MIST.
func ParseSuiAmount(amount string) (uint64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("amount is required")
	}

	value, ok := new(big.Rat).SetString(amount)
	if !ok || value.Sign() <= 0 {
		return 0, fmt.Errorf("amount %q is not a positive number", amount)
	}

	mist := new(big.Rat).Mul(value, big.NewRat(mistPerSui, 1))
	if !mist.IsInt() {
		return 0, fmt.Errorf("amount %q is below 1 MIST precision", amount)
	}
	if !mist.Num().IsUint64() {
		return 0, fmt.Errorf("amount %q overflows", amount)
	}
	return mist.Num().Uint64(), nil
}
