package address

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EVMEncoder produces 0x-prefixed EIP-55 addresses:
// last 20 bytes of Keccak256(uncompressed pubkey without the 0x04 prefix).
type EVMEncoder struct{}

// Encode accepts a compressed (33-byte) or uncompressed (65-byte) secp256k1 key.
func (EVMEncoder) Encode(pubKey []byte) (string, error) {
	pub, err := parseSecp256k1(pubKey)
	if err != nil {
		return "", err
	}

	hash := crypto.Keccak256(pub.SerializeUncompressed()[1:])
	return common.BytesToAddress(hash[12:]).Hex(), nil
}

// Validate requires the 0x prefix and 40 hex digits. Mixed-case input must
// carry a correct EIP-55 checksum; all-lower or all-upper input has none to check.
func (EVMEncoder) Validate(address string) bool {
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return false
	}
	return IsChecksumValid(address)
}

// IsChecksumValid checks if an EVM address has a valid EIP-55 checksum.
func IsChecksumValid(address string) bool {
	hexPart := strings.TrimPrefix(address, "0x")
	if len(hexPart) != 40 {
		return false
	}

	// If all lowercase or all uppercase, checksum doesn't apply
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}

	return common.HexToAddress(hexPart).Hex() == "0x"+hexPart
}
