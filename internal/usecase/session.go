package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/repository"
)

// SessionService owns the per-user login state machine:
//
//	Unauthenticated --BeginLogin--> Pending --FinishLogin--> Authenticated
//
// A failed FinishLogin falls back to Unauthenticated with no partial state,
// and expiry is detected lazily at use, never by background refresh. All
// writes to session state happen inside successful transitions here.
type SessionService struct {
	broker   *IdentityBroker
	pending  port.PendingLoginStore
	sessions port.SessionStore
	chain    port.ChainClient
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(broker *IdentityBroker, pending port.PendingLoginStore, sessions port.SessionStore, chain port.ChainClient, events port.EventPublisher, log *zap.Logger) *SessionService {
	return &SessionService{
		broker:   broker,
		pending:  pending,
		sessions: sessions,
		chain:    chain,
		events:   events,
		logger:   log,
	}
}

// BeginLogin issues a login URL and stores the pending attempt, superseding
// any outstanding one for the same user. The superseded attempt becomes
// unredeemable.
func (s *SessionService) BeginLogin(ctx context.Context, key domain.UserKey, network domain.Network) (string, error) {
	loginURL, pendingLogin, err := s.broker.RequestLogin(ctx, key, network)
	if err != nil {
		return "", err
	}

	if err := s.pending.Put(key, pendingLogin); err != nil {
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return "", fmt.Errorf("%w: too many logins in flight, retry shortly", ErrUpstreamUnavailable)
		}
		return "", fmt.Errorf("store pending login: %w", err)
	}

	return loginURL, nil
}

// FinishLogin consumes the pending attempt and promotes it with the callback
// JWT. On any failure the pending login stays consumed, so the user retries
// from a fresh BeginLogin rather than a dangling Pending state.
func (s *SessionService) FinishLogin(ctx context.Context, key domain.UserKey, callbackJWT string) (domain.AuthenticatedSession, error) {
	pendingLogin, ok := s.pending.Take(key)
	if !ok {
		return domain.AuthenticatedSession{}, fmt.Errorf("%w: no login in flight", ErrAuthRequired)
	}

	session, err := s.broker.CompleteLogin(ctx, callbackJWT, pendingLogin)
	if err != nil {
		s.logger.Warn("login completion failed",
			zap.String("user_key", key.String()),
			zap.Error(err),
		)
		return domain.AuthenticatedSession{}, err
	}

	s.sessions.Put(session)

	if s.events != nil {
		event := domain.SessionAuthenticatedEvent{
			EventID:         uuid.NewString(),
			UserKey:         key,
			Address:         session.Address,
			Network:         session.Network,
			ValidUntilEpoch: session.ValidUntilEpoch,
			AuthenticatedAt: time.Now().UTC(),
		}
		if err := s.events.PublishSessionAuthenticated(ctx, event); err != nil {
			s.logger.Warn("publish session authenticated event", zap.Error(err))
		}
	}

	return session, nil
}

// GetState reports the user's current state. Read-only; never mutates,
// never blocks beyond the in-memory lookups.
func (s *SessionService) GetState(key domain.UserKey) domain.SessionState {
	if _, ok := s.sessions.Get(key); ok {
		return domain.StateAuthenticated
	}
	if s.pending.Has(key) {
		return domain.StatePending
	}
	return domain.StateUnauthenticated
}

// RequireAuthenticated gates wallet-affecting commands. It distinguishes
// "never logged in" (ErrAuthRequired) from "session expired"
// (ErrSessionExpired); an expired session is deleted so a stale proof can
// never be used to sign. The epoch check happens outside any store lock.
func (s *SessionService) RequireAuthenticated(ctx context.Context, key domain.UserKey) (domain.AuthenticatedSession, error) {
	session, ok := s.sessions.Get(key)
	if !ok {
		return domain.AuthenticatedSession{}, ErrAuthRequired
	}

	epoch, err := s.chain.CurrentEpoch(ctx)
	if err != nil {
		return domain.AuthenticatedSession{}, fmt.Errorf("%w: fetch current epoch: %v", ErrUpstreamUnavailable, err)
	}
	if session.ExpiredAt(epoch) {
		s.sessions.Delete(key)
		s.logger.Info("session expired at use",
			zap.String("user_key", key.String()),
			zap.Uint64("epoch", epoch),
			zap.Uint64("valid_until_epoch", session.ValidUntilEpoch),
		)
		return domain.AuthenticatedSession{}, ErrSessionExpired
	}

	return session, nil
}

// Logout drops both pending and authenticated state for the user.
func (s *SessionService) Logout(key domain.UserKey) {
	s.pending.Delete(key)
	s.sessions.Delete(key)
}
