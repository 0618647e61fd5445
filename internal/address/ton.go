package address

import (
	"crypto/ed25519"
	"fmt"

	tonaddr "github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/ton/wallet"
)

// TONEncoder renders the wallet contract address owned by an ed25519 key in
// user-friendly form (base64url, CRC16 checksum).
type TONEncoder struct {
	Version    wallet.Version
	Subwallet  uint32
	Bounceable bool
}

// NewTONEncoder returns an encoder for non-bounceable mainnet v4r2 wallet
// addresses with the default subwallet id.
func NewTONEncoder() TONEncoder {
	return TONEncoder{
		Version:   wallet.V4R2,
		Subwallet: wallet.DefaultSubwallet,
	}
}

// Encode computes the wallet's StateInit hash in workchain 0.
func (e TONEncoder) Encode(pubKey []byte) (string, error) {
	if len(pubKey) != ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: ed25519 key must be %d bytes, got %d", ErrInvalidPublicKey, ed25519.PublicKeySize, len(pubKey))
	}

	addr, err := wallet.AddressFromPubKey(ed25519.PublicKey(pubKey), e.Version, e.Subwallet)
	if err != nil {
		return "", fmt.Errorf("ton wallet address: %w", err)
	}
	addr.SetBounce(e.Bounceable)
	addr.SetTestnetOnly(false)

	return addr.String(), nil
}

// Validate accepts bounceable and non-bounceable user-friendly mainnet
// addresses in the basechain or masterchain.
func (TONEncoder) Validate(address string) bool {
	if len(address) != 48 {
		return false
	}
	addr, err := tonaddr.ParseAddr(address)
	if err != nil {
		return false
	}
	if addr.IsTestnetOnly() {
		return false
	}
	wc := addr.Workchain()
	return wc == 0 || wc == -1
}
