package address

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
)

const tronAddressLen = 34

// TronEncoder produces Base58Check addresses over
// Version || Keccak256(uncompressed pubkey without 0x04)[12:], as used by TRON.
type TronEncoder struct {
	Version byte // 0x41 on mainnet, giving the T... prefix
}

// Encode accepts a compressed or uncompressed secp256k1 key.
func (e TronEncoder) Encode(pubKey []byte) (string, error) {
	pub, err := parseSecp256k1(pubKey)
	if err != nil {
		return "", err
	}

	hash := crypto.Keccak256(pub.SerializeUncompressed()[1:])
	return base58.CheckEncode(hash[12:], e.Version), nil
}

// Validate checks length, prefix, version byte and the double-SHA256 checksum.
func (e TronEncoder) Validate(address string) bool {
	if len(address) != tronAddressLen || !strings.HasPrefix(address, "T") {
		return false
	}

	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return false
	}
	return version == e.Version && len(payload) == 20
}
