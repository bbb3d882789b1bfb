package port

import (
	"context"
	"errors"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

var (
	// ErrProofRejected indicates the proving service refused to produce a
	// proof for the supplied inputs.
	ErrProofRejected = errors.New("prover: proof rejected")
	// ErrProverUnavailable indicates the proving service could not be reached
	// or timed out.
	ErrProverUnavailable = errors.New("prover: unavailable")
)

// TransferRequest describes a coin transfer to build against the chain.
type TransferRequest struct {
	Sender     string
	Recipient  string
	AmountMist uint64
	CoinType   string
	GasBudget  uint64
}

// ChainClient wraps the Sui RPC surface the core consumes. Transaction and
// balance semantics stay opaque; the core only threads bytes and addresses
// through.
type ChainClient interface {
	// CurrentEpoch returns the chain's current epoch number.
	CurrentEpoch(ctx context.Context) (uint64, error)
	// GetBalance returns the aggregate balance for an address and coin type.
	GetBalance(ctx context.Context, address, coinType string) (domain.Balance, error)
	// BuildTransfer constructs an unsigned transfer transaction and returns
	// its base64 BCS bytes.
	BuildTransfer(ctx context.Context, req TransferRequest) (string, error)
	// ExecuteTransaction submits a signed transaction and returns its digest.
	ExecuteTransaction(ctx context.Context, tx domain.SignedTransaction) (string, error)
}

// ProofRequest carries the inputs the proving service needs to bind a JWT
// subject to an ephemeral public key.
type ProofRequest struct {
	JWT                string
	EphemeralPublicKey []byte
	MaxEpoch           uint64
	Randomness         string
	Salt               string
}

// ZkProver produces zero-knowledge login proofs. Implementations classify
// failures as ErrProofRejected or ErrProverUnavailable.
type ZkProver interface {
	Prove(ctx context.Context, req ProofRequest) (domain.ZkLoginProof, error)
}
