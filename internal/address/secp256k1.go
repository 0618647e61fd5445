package address

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// parseSecp256k1 parses a SEC1 encoded public key and checks it is on the curve.
func parseSecp256k1(pubKey []byte) (*secp256k1.PublicKey, error) {
	switch len(pubKey) {
	case secp256k1.PubKeyBytesLenCompressed, secp256k1.PubKeyBytesLenUncompressed:
	default:
		return nil, fmt.Errorf("%w: secp256k1 key must be 33 or 65 bytes, got %d", ErrInvalidPublicKey, len(pubKey))
	}

	pub, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pub, nil
}
