// Package address turns public keys into chain-native address strings and
// validates addresses per chain. Each encoding is an interchangeable Encoder
// selected by chain.Descriptor.Encoding.
package address

import (
	"errors"
	"fmt"

	"github.com/klingon-exchange/keyderive/internal/chain"
)

var (
	// ErrEncodingFailure means an encoder produced an address its own validator
	// rejects, or could not encode a key it was handed. It signals a defect, not bad input.
	ErrEncodingFailure = errors.New("address encoding failure")

	// ErrInvalidPublicKey is returned for public keys of the wrong size or not on the curve.
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// Encoder converts a public key to an address and validates addresses of the same format.
type Encoder interface {
	// Encode returns the address for a public key.
	Encode(pubKey []byte) (string, error)
	// Validate reports whether address is well-formed, including its checksum.
	Validate(address string) bool
}

// ForDescriptor returns the encoder for a chain.
func ForDescriptor(d *chain.Descriptor) (Encoder, error) {
	switch d.Encoding {
	case chain.EncodingEVM:
		return EVMEncoder{}, nil
	case chain.EncodingP2PKH, chain.EncodingP2WPKH, chain.EncodingP2TR:
		return NewBitcoinEncoder(d)
	case chain.EncodingTronBase58:
		return TronEncoder{Version: d.VersionByte}, nil
	case chain.EncodingBase58:
		return SolanaEncoder{}, nil
	case chain.EncodingTONFriendly:
		return NewTONEncoder(), nil
	case chain.EncodingRippleBase58:
		return RippleEncoder{Version: d.VersionByte}, nil
	default:
		return nil, fmt.Errorf("%w: no encoder for %q", ErrEncodingFailure, d.Encoding)
	}
}

// Encode encodes pubKey for chain d and runs the chain validator over the result.
// An address that fails its own validator is never returned.
func Encode(d *chain.Descriptor, pubKey []byte) (string, error) {
	enc, err := ForDescriptor(d)
	if err != nil {
		return "", err
	}

	addr, err := enc.Encode(pubKey)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEncodingFailure, d.ID, err)
	}

	if !enc.Validate(addr) {
		return "", fmt.Errorf("%w: %s encoder produced %q which fails validation", ErrEncodingFailure, d.ID, addr)
	}

	return addr, nil
}

// Validate reports whether address is a valid address for chain d.
func Validate(address string, d *chain.Descriptor) bool {
	enc, err := ForDescriptor(d)
	if err != nil {
		return false
	}
	return enc.Validate(address)
}
