package security

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// Sui signature scheme flags.
const (
	flagEd25519 = 0x00
	flagZkLogin = 0x05
)

// nonceLength matches the zkLogin nonce format the provider echoes back in
// the JWT nonce claim.
const nonceLength = 27

// GenerateEphemeralKeypair returns a fresh ed25519 keypair for one login
// attempt.
func GenerateEphemeralKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate ephemeral keypair: %w", err)
	}
	return pub, priv, nil
}

// GenerateRandomness returns a fresh 128-bit blinding value as a decimal
// string, the form the proving service expects.
func GenerateRandomness() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate randomness: %w", err)
	}
	return new(big.Int).SetBytes(buf).String(), nil
}

// ZkLoginNonce derives the OAuth nonce binding the ephemeral public key and
// epoch bound into the JWT. Deterministic for identical inputs.
func ZkLoginNonce(ephemeralPublicKey []byte, maxEpoch uint64, randomness string) string {
	var epochBytes [8]byte
	binary.BigEndian.PutUint64(epochBytes[:], maxEpoch)

	h, _ := blake2b.New256(nil)
	h.Write(ephemeralPublicKey)
	h.Write(epochBytes[:])
	h.Write([]byte(randomness))

	nonce := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	if len(nonce) > nonceLength {
		nonce = nonce[:nonceLength]
	}
	return nonce
}

// ExtendedEphemeralPublicKey returns the flagged, base64-encoded form of the
// ephemeral public key used in proving-service requests.
func ExtendedEphemeralPublicKey(ephemeralPublicKey []byte) string {
	flagged := make([]byte, 0, len(ephemeralPublicKey)+1)
	flagged = append(flagged, flagEd25519)
	flagged = append(flagged, ephemeralPublicKey...)
	return base64.StdEncoding.EncodeToString(flagged)
}

// ZkLoginAddress derives the Sui address for a proof: a pure function of the
// address seed and issuer, so identical login inputs always map to the same
// wallet.
func ZkLoginAddress(addressSeed, issuer string) (string, error) {
	seed, ok := new(big.Int).SetString(addressSeed, 10)
	if !ok {
		return "", fmt.Errorf("address seed %q is not a decimal integer", addressSeed)
	}

	seedBytes := seed.Bytes()
	padded := make([]byte, 32)
	if len(seedBytes) > 32 {
		return "", fmt.Errorf("address seed overflows 32 bytes")
	}
	copy(padded[32-len(seedBytes):], seedBytes)

	issBytes := []byte(issuer)
	h, _ := blake2b.New256(nil)
	h.Write([]byte{flagZkLogin})
	h.Write([]byte{byte(len(issBytes))})
	h.Write(issBytes)
	h.Write(padded)

	return fmt.Sprintf("0x%x", h.Sum(nil)), nil
}

// TransactionDigest hashes intent-prefixed transaction bytes into the digest
// the ephemeral key signs.
func TransactionDigest(txBytes []byte) []byte {
	// Intent: scope TransactionData, version V0, app Sui.
	intent := []byte{0, 0, 0}

	h, _ := blake2b.New256(nil)
	h.Write(intent)
	h.Write(txBytes)
	return h.Sum(nil)
}

// SerializeSignature renders an ephemeral signature in Sui wire form:
// flag || signature || public key, base64-encoded.
func SerializeSignature(signature []byte, publicKey ed25519.PublicKey) string {
	out := make([]byte, 0, 1+len(signature)+len(publicKey))
	out = append(out, flagEd25519)
	out = append(out, signature...)
	out = append(out, publicKey...)
	return base64.StdEncoding.EncodeToString(out)
}
