package domain

import (
	"encoding/json"
	"time"
)

// SessionState enumerates the per-user login state machine.
type SessionState string

const (
	// StateUnauthenticated is the initial state, and the state a user falls
	// back to after a failed or expired login.
	StateUnauthenticated SessionState = "unauthenticated"
	// StatePending means a login URL has been issued and the OAuth round trip
	// is in flight.
	StatePending SessionState = "pending"
	// StateAuthenticated means a zkLogin proof is cached and usable for
	// signing until its epoch bound passes.
	StateAuthenticated SessionState = "authenticated"
)

// PendingLogin holds the ephemeral material generated for a single login
// attempt. It lives only as long as the OAuth redirect round trip and is
// consumed exactly once on promotion.
type PendingLogin struct {
	Key                 UserKey
	EphemeralPublicKey  []byte
	EphemeralPrivateKey []byte
	Randomness          string
	Nonce               string
	MaxEpoch            uint64
	Network             Network
	CreatedAt           time.Time
}

// ZkLoginProof is the zero-knowledge proof object returned by the proving
// service. Inputs is kept opaque; the address seed and issuer are the only
// fields the broker reads.
type ZkLoginProof struct {
	Inputs      json.RawMessage
	AddressSeed string
	Issuer      string
}

// AuthenticatedSession is the promoted identity: proof, derived address, and
// the ephemeral keypair the proof is bound to. It never survives a process
// restart.
type AuthenticatedSession struct {
	Key                 UserKey
	Proof               ZkLoginProof
	Address             string
	EphemeralPublicKey  []byte
	EphemeralPrivateKey []byte
	ValidUntilEpoch     uint64
	Network             Network
	CreatedAt           time.Time
}

// ExpiredAt reports whether the session's proof is no longer valid at the
// given chain epoch.
func (s AuthenticatedSession) ExpiredAt(epoch uint64) bool {
	return epoch > s.ValidUntilEpoch
}

// SignedTransaction is a transaction envelope ready for submission: the
// BCS transaction bytes plus the zkLogin authenticator wrapping the ephemeral
// signature and proof.
type SignedTransaction struct {
	TxBytes   string
	Signature string
}

// Balance is the aggregate coin balance for an address.
type Balance struct {
	CoinType     string
	CoinCount    int
	TotalBalance uint64
}
