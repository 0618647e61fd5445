package wallet

import (
	"fmt"

	"github.com/klingon-exchange/keyderive/internal/address"
	"github.com/klingon-exchange/keyderive/internal/chain"
	"github.com/klingon-exchange/keyderive/internal/keys"
	"github.com/klingon-exchange/keyderive/internal/mnemonic"
)

// Errors returned by the Service. Each wraps the sentinel of the package
// that detects the condition, so errors.Is works with either name.
var (
	// ErrInvalidMnemonic: wrong word count, unknown word or checksum mismatch.
	ErrInvalidMnemonic = mnemonic.ErrInvalidMnemonic
	// ErrUnsupportedChain: chain id not in the registry.
	ErrUnsupportedChain = chain.ErrUnsupportedChain
	// ErrInvalidPath: path violates index range or curve hardening rules.
	ErrInvalidPath = chain.ErrInvalidPath
	// ErrDerivationFailure: BIP32 retries exhausted or unusable seed.
	ErrDerivationFailure = keys.ErrDerivationFailure
	// ErrEncodingFailure: an encoder produced an address its own validator rejects.
	ErrEncodingFailure = address.ErrEncodingFailure
	// ErrInvalidPublicKey: a caller-supplied public key is malformed or off-curve.
	ErrInvalidPublicKey = address.ErrInvalidPublicKey
)

// DerivationError is the per-chain error carried in a batch Result.
type DerivationError struct {
	ChainID string
	Err     error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derive %s: %v", e.ChainID, e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}
