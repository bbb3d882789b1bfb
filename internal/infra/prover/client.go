package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/security"
)

// Client calls the zero-knowledge proving service. The request/response
// format is the service's contract; the proof body is stored verbatim and
// only the address seed and issuer are read out of it.
type Client struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// NewClient constructs a proving-service client. The per-call deadline is
// owned by the caller's context; no client-level timeout is set so the
// broker's explicit bound is the only one in play.
func NewClient(url string, log *zap.Logger) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{},
		logger: log,
	}
}

type proveRequest struct {
	JWT                        string `json:"jwt"`
	ExtendedEphemeralPublicKey string `json:"extendedEphemeralPublicKey"`
	MaxEpoch                   string `json:"maxEpoch"`
	JWTRandomness              string `json:"jwtRandomness"`
	Salt                       string `json:"salt"`
	KeyClaimName               string `json:"keyClaimName"`
}

type proveResponse struct {
	IssBase64Details struct {
		Value string `json:"value"`
	} `json:"issBase64Details"`
	AddressSeed string `json:"addressSeed"`
}

// Prove requests a proof binding the JWT subject to the ephemeral key.
// HTTP 4xx means the service rejected the inputs (port.ErrProofRejected);
// anything else that prevents a response is port.ErrProverUnavailable.
func (c *Client) Prove(ctx context.Context, req port.ProofRequest) (domain.ZkLoginProof, error) {
	body, err := json.Marshal(proveRequest{
		JWT:                        req.JWT,
		ExtendedEphemeralPublicKey: security.ExtendedEphemeralPublicKey(req.EphemeralPublicKey),
		MaxEpoch:                   fmt.Sprintf("%d", req.MaxEpoch),
		JWTRandomness:              req.Randomness,
		Salt:                       req.Salt,
		KeyClaimName:               "sub",
	})
	if err != nil {
		return domain.ZkLoginProof{}, fmt.Errorf("marshal prove request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.ZkLoginProof{}, fmt.Errorf("build prove request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.ZkLoginProof{}, fmt.Errorf("%w: %v", port.ErrProverUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ZkLoginProof{}, fmt.Errorf("%w: read response: %v", port.ErrProverUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		c.logger.Warn("prover rejected proof request", zap.Int("status", resp.StatusCode))
		return domain.ZkLoginProof{}, fmt.Errorf("%w: status %d", port.ErrProofRejected, resp.StatusCode)
	default:
		return domain.ZkLoginProof{}, fmt.Errorf("%w: status %d", port.ErrProverUnavailable, resp.StatusCode)
	}

	var parsed proveResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return domain.ZkLoginProof{}, fmt.Errorf("%w: decode response: %v", port.ErrProofRejected, err)
	}
	if parsed.AddressSeed == "" {
		return domain.ZkLoginProof{}, fmt.Errorf("%w: response missing address seed", port.ErrProofRejected)
	}

	return domain.ZkLoginProof{
		Inputs:      json.RawMessage(payload),
		AddressSeed: parsed.AddressSeed,
	}, nil
}

var _ port.ZkProver = (*Client)(nil)
