package address

import (
	"crypto/ed25519"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

// SolanaEncoder renders a 32-byte ed25519 public key in Base58.
type SolanaEncoder struct{}

// Encode requires a 32-byte key that is a valid curve point.
func (SolanaEncoder) Encode(pubKey []byte) (string, error) {
	if len(pubKey) != ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: ed25519 key must be %d bytes, got %d", ErrInvalidPublicKey, ed25519.PublicKeySize, len(pubKey))
	}
	if !IsOnCurve(pubKey) {
		return "", fmt.Errorf("%w: not an ed25519 curve point", ErrInvalidPublicKey)
	}
	return solana.PublicKeyFromBytes(pubKey).String(), nil
}

// Validate requires a canonical Base58 string decoding to exactly 32 bytes.
// Off-curve keys (program derived addresses) are accepted.
func (SolanaEncoder) Validate(address string) bool {
	if len(address) < 32 || len(address) > 44 {
		return false
	}
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return false
	}
	return pk.String() == address
}

// IsOnCurve reports whether key is a valid compressed edwards25519 point.
func IsOnCurve(key []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(key)
	return err == nil
}
