package usecase

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/config"
	"github.com/Singularity-Shift/sui-squad/internal/infra/logger"
	"github.com/Singularity-Shift/sui-squad/internal/infra/security"
	"github.com/Singularity-Shift/sui-squad/internal/infra/telemetry"
)

var (
	// ErrConfiguration indicates required OAuth or chain settings are absent.
	ErrConfiguration = errors.New("identity: missing configuration")
	// ErrInvalidProof indicates a nonce mismatch or a proving-service rejection.
	ErrInvalidProof = errors.New("identity: invalid proof")
	// ErrUpstreamUnavailable indicates a network failure or timeout talking to
	// the OAuth provider, proving service, or chain.
	ErrUpstreamUnavailable = errors.New("identity: upstream unavailable")
	// ErrSessionExpired indicates the session's epoch bound has passed.
	ErrSessionExpired = errors.New("identity: session expired")
	// ErrAuthRequired indicates the user has never authenticated.
	ErrAuthRequired = errors.New("identity: authentication required")
)

const defaultProverTimeout = 30 * time.Second

// LoginState is the payload carried through the OAuth state parameter so the
// callback can correlate the response with the requesting chat user.
type LoginState struct {
	UserID  int64  `json:"user_id"`
	ChatID  int64  `json:"chat_id"`
	Network string `json:"network"`
}

// EncodeLoginState renders the state parameter for a login URL.
func EncodeLoginState(key domain.UserKey, network domain.Network) string {
	payload, _ := json.Marshal(LoginState{
		UserID:  key.UserID,
		ChatID:  key.ChatID,
		Network: string(network),
	})
	return base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeLoginState parses the state parameter delivered with the callback.
func DecodeLoginState(raw string) (domain.UserKey, domain.Network, error) {
	payload, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return domain.UserKey{}, "", fmt.Errorf("decode state: %w", err)
	}
	var state LoginState
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.UserKey{}, "", fmt.Errorf("unmarshal state: %w", err)
	}
	network, err := domain.ParseNetwork(state.Network)
	if err != nil {
		return domain.UserKey{}, "", err
	}
	key := domain.UserKey{UserID: state.UserID, ChatID: state.ChatID}
	if key.IsZero() {
		return domain.UserKey{}, "", fmt.Errorf("state carries no user identity")
	}
	return key, network, nil
}

// IdentityBroker mediates the OAuth-to-blockchain-identity handshake: it
// issues login URLs bound to fresh ephemeral keys, exchanges callback JWTs
// for zero-knowledge proofs, and signs transactions with the resulting
// session. The broker performs no store lookups itself; callers own the
// pending-login lifecycle.
type IdentityBroker struct {
	oauth   config.OAuthSettings
	sui     config.SuiSettings
	prover  config.ProverSettings
	chain   port.ChainClient
	prove   port.ZkProver
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

// NewIdentityBroker constructs an IdentityBroker instance.
func NewIdentityBroker(cfg *config.AppConfig, chain port.ChainClient, prover port.ZkProver, metrics *telemetry.Metrics, log *zap.Logger) *IdentityBroker {
	return &IdentityBroker{
		oauth:   cfg.OAuth,
		sui:     cfg.Sui,
		prover:  cfg.Prover,
		chain:   chain,
		prove:   prover,
		metrics: metrics,
		logger:  log,
	}
}

// RequestLogin generates fresh ephemeral material for one login attempt and
// builds the OAuth authorization URL the user must visit. The returned
// PendingLogin must be stored keyed by user, superseding any prior attempt.
func (b *IdentityBroker) RequestLogin(ctx context.Context, key domain.UserKey, network domain.Network) (string, domain.PendingLogin, error) {
	if b.oauth.ClientID == "" || b.oauth.RedirectHost == "" {
		return "", domain.PendingLogin{}, fmt.Errorf("%w: oauth client_id and redirect_host are required", ErrConfiguration)
	}

	epoch, err := b.chain.CurrentEpoch(ctx)
	if err != nil {
		return "", domain.PendingLogin{}, fmt.Errorf("%w: fetch current epoch: %v", ErrUpstreamUnavailable, err)
	}

	pub, priv, err := security.GenerateEphemeralKeypair()
	if err != nil {
		return "", domain.PendingLogin{}, err
	}
	randomness, err := security.GenerateRandomness()
	if err != nil {
		return "", domain.PendingLogin{}, err
	}

	lookahead := b.sui.EpochLookahead
	if lookahead == 0 {
		lookahead = 2
	}
	maxEpoch := epoch + lookahead
	nonce := security.ZkLoginNonce(pub, maxEpoch, randomness)

	redirectURI := fmt.Sprintf("https://%s/webhook/token", b.oauth.RedirectHost)
	query := url.Values{}
	query.Set("client_id", b.oauth.ClientID)
	query.Set("response_type", "id_token")
	query.Set("redirect_uri", redirectURI)
	query.Set("scope", "openid")
	query.Set("nonce", nonce)
	query.Set("state", EncodeLoginState(key, network))
	loginURL := b.oauth.AuthEndpoint + "?" + query.Encode()

	pending := domain.PendingLogin{
		Key:                 key,
		EphemeralPublicKey:  pub,
		EphemeralPrivateKey: priv,
		Randomness:          randomness,
		Nonce:               nonce,
		MaxEpoch:            maxEpoch,
		Network:             network,
		CreatedAt:           time.Now().UTC(),
	}

	if b.metrics != nil {
		b.metrics.LoginRequests.Inc()
	}
	b.logger.Info("login requested",
		zap.String("user_key", key.String()),
		zap.String("network", string(network)),
		zap.Uint64("max_epoch", maxEpoch),
	)

	return loginURL, pending, nil
}

// CompleteLogin exchanges the callback JWT and its pending login for an
// authenticated session: it verifies the nonce binding, obtains a
// zero-knowledge proof from the proving service, and derives the wallet
// address. Side-effect free; the caller stores the result.
func (b *IdentityBroker) CompleteLogin(ctx context.Context, callbackJWT string, pending domain.PendingLogin) (domain.AuthenticatedSession, error) {
	claims, err := parseJWTClaims(callbackJWT)
	if err != nil {
		return domain.AuthenticatedSession{}, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if claims.Nonce != pending.Nonce {
		b.logger.Warn("jwt nonce does not match pending login",
			zap.String("user_key", pending.Key.String()),
		)
		b.observeCompletion("nonce_mismatch")
		return domain.AuthenticatedSession{}, fmt.Errorf("%w: nonce mismatch", ErrInvalidProof)
	}
	if claims.Subject == "" {
		b.observeCompletion("missing_subject")
		return domain.AuthenticatedSession{}, fmt.Errorf("%w: jwt has no subject claim", ErrInvalidProof)
	}

	timeout := b.prover.Timeout
	if timeout <= 0 {
		timeout = defaultProverTimeout
	}
	proveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	proof, err := b.prove.Prove(proveCtx, port.ProofRequest{
		JWT:                callbackJWT,
		EphemeralPublicKey: pending.EphemeralPublicKey,
		MaxEpoch:           pending.MaxEpoch,
		Randomness:         pending.Randomness,
		Salt:               b.prover.Salt,
	})
	if b.metrics != nil {
		b.metrics.ProverLatency.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		if errors.Is(err, port.ErrProofRejected) {
			b.observeCompletion("proof_rejected")
			return domain.AuthenticatedSession{}, fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}
		b.observeCompletion("prover_unavailable")
		return domain.AuthenticatedSession{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if proof.Issuer == "" {
		proof.Issuer = claims.Issuer
	}
	address, err := security.ZkLoginAddress(proof.AddressSeed, proof.Issuer)
	if err != nil {
		b.observeCompletion("address_derivation_failed")
		return domain.AuthenticatedSession{}, fmt.Errorf("%w: derive address: %v", ErrInvalidProof, err)
	}

	b.observeCompletion("success")
	b.logger.Info("login completed",
		zap.String("user_key", pending.Key.String()),
		zap.String("address", logger.MaskAddress(address)),
		zap.Uint64("valid_until_epoch", pending.MaxEpoch),
	)

	return domain.AuthenticatedSession{
		Key:                 pending.Key,
		Proof:               proof,
		Address:             address,
		EphemeralPublicKey:  pending.EphemeralPublicKey,
		EphemeralPrivateKey: pending.EphemeralPrivateKey,
		ValidUntilEpoch:     pending.MaxEpoch,
		Network:             pending.Network,
		CreatedAt:           time.Now().UTC(),
	}, nil
}

// SignTransaction signs the transaction bytes with the session's ephemeral
// key and wraps the signature with the zk proof into the authenticator the
// chain expects. Local computation only; currentEpoch is supplied by the
// caller so an expired signature is never produced, let alone submitted.
func (b *IdentityBroker) SignTransaction(session domain.AuthenticatedSession, txBytesB64 string, currentEpoch uint64) (domain.SignedTransaction, error) {
	if session.ExpiredAt(currentEpoch) {
		return domain.SignedTransaction{}, fmt.Errorf("%w: epoch %d past bound %d", ErrSessionExpired, currentEpoch, session.ValidUntilEpoch)
	}

	txBytes, err := base64.StdEncoding.DecodeString(txBytesB64)
	if err != nil {
		return domain.SignedTransaction{}, fmt.Errorf("decode transaction bytes: %w", err)
	}

	digest := security.TransactionDigest(txBytes)
	signature := ed25519.Sign(session.EphemeralPrivateKey, digest)
	userSignature := security.SerializeSignature(signature, session.EphemeralPublicKey)

	authenticator, err := json.Marshal(struct {
		Inputs        json.RawMessage `json:"inputs"`
		MaxEpoch      uint64          `json:"maxEpoch"`
		UserSignature string          `json:"userSignature"`
	}{
		Inputs:        session.Proof.Inputs,
		MaxEpoch:      session.ValidUntilEpoch,
		UserSignature: userSignature,
	})
	if err != nil {
		return domain.SignedTransaction{}, fmt.Errorf("marshal authenticator: %w", err)
	}

	return domain.SignedTransaction{
		TxBytes:   txBytesB64,
		Signature: base64.StdEncoding.EncodeToString(authenticator),
	}, nil
}

func (b *IdentityBroker) observeCompletion(outcome string) {
	if b.metrics != nil {
		b.metrics.LoginCompletions.WithLabelValues(outcome).Inc()
	}
}

type callbackClaims struct {
	Subject string
	Issuer  string
	Nonce   string
}

// parseJWTClaims extracts the claims the handshake verifies. Signature
// validation is delegated to the proving service, which checks the token
// against the provider's JWKS; the broker only enforces the nonce binding.
func parseJWTClaims(token string) (callbackClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return callbackClaims{}, fmt.Errorf("parse jwt: %w", err)
	}

	out := callbackClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iss, err := claims.GetIssuer(); err == nil {
		out.Issuer = iss
	}
	switch nonce := claims["nonce"].(type) {
	case string:
		out.Nonce = nonce
	case float64:
		out.Nonce = strconv.FormatFloat(nonce, 'f', -1, 64)
	}
	return out, nil
}
