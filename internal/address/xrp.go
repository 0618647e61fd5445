package address

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/mr-tron/base58"

	"github.com/klingon-exchange/keyderive/pkg/helpers"
)

// rippleAlphabet is the XRP Ledger's Base58 dictionary.
var rippleAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

const (
	rippleChecksumLen = 4
	ripplePayloadLen  = 1 + 20
)

// RippleEncoder produces classic XRP Ledger account addresses:
// Base58Check (Ripple alphabet) over Version || Hash160(compressed pubkey).
type RippleEncoder struct {
	Version byte // 0x00 for account ids, giving the r... prefix
}

// Encode accepts a compressed or uncompressed secp256k1 key.
func (e RippleEncoder) Encode(pubKey []byte) (string, error) {
	pub, err := parseSecp256k1(pubKey)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, ripplePayloadLen+rippleChecksumLen)
	payload = append(payload, e.Version)
	payload = append(payload, btcutil.Hash160(pub.SerializeCompressed())...)
	payload = append(payload, rippleChecksum(payload)...)

	return base58.EncodeAlphabet(payload, rippleAlphabet), nil
}

// Validate decodes with the Ripple alphabet and checks version and checksum.
func (e RippleEncoder) Validate(address string) bool {
	_, err := e.Decode(address)
	return err == nil
}

// Decode returns the 20-byte account id of a classic address.
func (e RippleEncoder) Decode(address string) ([]byte, error) {
	if len(address) < 25 || len(address) > 35 || address[0] != 'r' {
		return nil, fmt.Errorf("malformed XRP address %q", address)
	}

	raw, err := base58.DecodeAlphabet(address, rippleAlphabet)
	if err != nil {
		return nil, fmt.Errorf("decode XRP address: %w", err)
	}
	if len(raw) != ripplePayloadLen+rippleChecksumLen {
		return nil, fmt.Errorf("XRP address decodes to %d bytes", len(raw))
	}

	payload, checksum := raw[:ripplePayloadLen], raw[ripplePayloadLen:]
	if payload[0] != e.Version {
		return nil, fmt.Errorf("XRP address version 0x%02x, want 0x%02x", payload[0], e.Version)
	}
	if !helpers.ConstantTimeCompare(checksum, rippleChecksum(payload)) {
		return nil, fmt.Errorf("XRP address checksum mismatch")
	}
	return payload[1:], nil
}

func rippleChecksum(payload []byte) []byte {
	return chainhash.DoubleHashB(payload)[:rippleChecksumLen]
}
