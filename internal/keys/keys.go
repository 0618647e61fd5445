// Package keys derives curve-specific key pairs from a BIP39 seed.
// secp256k1 chains follow BIP32; ed25519 chains follow SLIP-0010 (hardened only).
package keys

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/klingon-exchange/keyderive/internal/chain"
	"github.com/klingon-exchange/keyderive/pkg/helpers"
)

// ErrDerivationFailure is returned when no valid key can be produced for a path.
var ErrDerivationFailure = errors.New("key derivation failed")

// KeyPair is the key material for one chain at one path. It is never cached;
// callers zero it once the address or signature has been produced.
type KeyPair struct {
	// PrivateKey is the 32-byte secp256k1 scalar or the 32-byte ed25519 seed.
	PrivateKey []byte
	// PublicKey is a 33-byte compressed SEC1 point or a 32-byte ed25519 key.
	PublicKey []byte
	Curve     chain.Curve
	// Path is the path actually derived. It only differs from the requested
	// path when BIP32 skipped an invalid child index.
	Path chain.Path
}

// Zero wipes the private key.
func (k *KeyPair) Zero() {
	if k == nil {
		return
	}
	helpers.SecureClear(k.PrivateKey)
}

// PublicKeyHex returns the public key as 0x-prefixed hex.
func (k *KeyPair) PublicKeyHex() string {
	return helpers.BytesToHex(k.PublicKey)
}

// ECPrivKey returns the secp256k1 private key for signing collaborators.
func (k *KeyPair) ECPrivKey() (*btcec.PrivateKey, error) {
	if k.Curve != chain.CurveSecp256k1 {
		return nil, fmt.Errorf("key pair is %s, not secp256k1", k.Curve)
	}
	priv, _ := btcec.PrivKeyFromBytes(k.PrivateKey)
	return priv, nil
}

// Ed25519PrivKey returns the expanded ed25519 private key for signing collaborators.
func (k *KeyPair) Ed25519PrivKey() (ed25519.PrivateKey, error) {
	if k.Curve != chain.CurveEd25519 {
		return nil, fmt.Errorf("key pair is %s, not ed25519", k.Curve)
	}
	if len(k.PrivateKey) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(k.PrivateKey))
	}
	return ed25519.NewKeyFromSeed(k.PrivateKey), nil
}

// Deriver produces a key pair for a path below the master key of a seed.
type Deriver interface {
	Derive(seed []byte, path chain.Path) (*KeyPair, error)
}

// ForCurve returns the deriver for a curve.
func ForCurve(curve chain.Curve) (Deriver, error) {
	switch curve {
	case chain.CurveSecp256k1:
		return NewSecp256k1Deriver(), nil
	case chain.CurveEd25519:
		return NewEd25519Deriver(), nil
	default:
		return nil, fmt.Errorf("%w: unknown curve %q", ErrDerivationFailure, curve)
	}
}

// Derive derives the key pair for path on the given curve.
func Derive(seed []byte, path chain.Path, curve chain.Curve) (*KeyPair, error) {
	d, err := ForCurve(curve)
	if err != nil {
		return nil, err
	}
	return d.Derive(seed, path)
}
