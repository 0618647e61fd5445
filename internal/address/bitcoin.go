package address

import (
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/klingon-exchange/keyderive/internal/chain"
)

// BitcoinEncoder produces P2PKH, P2WPKH or P2TR addresses for a Bitcoin-family network.
type BitcoinEncoder struct {
	encoding chain.Encoding
	params   *chaincfg.Params
}

// NewBitcoinEncoder returns the encoder for a Bitcoin-family descriptor.
func NewBitcoinEncoder(d *chain.Descriptor) (*BitcoinEncoder, error) {
	switch d.Encoding {
	case chain.EncodingP2PKH, chain.EncodingP2WPKH, chain.EncodingP2TR:
	default:
		return nil, fmt.Errorf("%w: %q is not a bitcoin encoding", ErrEncodingFailure, d.Encoding)
	}

	params, err := chainCfgParams(d)
	if err != nil {
		return nil, err
	}
	return &BitcoinEncoder{encoding: d.Encoding, params: params}, nil
}

// Encode derives the address from a compressed or uncompressed secp256k1 key.
// Hashes always commit to the compressed serialization.
func (e *BitcoinEncoder) Encode(pubKey []byte) (string, error) {
	// btcec.PublicKey is an alias of the decred type parseSecp256k1 returns.
	pub, err := parseSecp256k1(pubKey)
	if err != nil {
		return "", err
	}

	switch e.encoding {
	case chain.EncodingP2PKH:
		return deriveP2PKH(pub, e.params)
	case chain.EncodingP2TR:
		return deriveP2TR(pub, e.params)
	default:
		return deriveP2WPKH(pub, e.params)
	}
}

// Validate decodes the address (Base58Check or bech32/bech32m checksum) and
// checks that it belongs to this network. Any standard output type of the
// network is accepted, not only the type this encoder produces.
func (e *BitcoinEncoder) Validate(address string) bool {
	_, err := ParseBitcoinAddress(address, e.params)
	return err == nil
}

// deriveP2PKH derives a legacy P2PKH address (1... for BTC, L... for LTC)
func deriveP2PKH(pubKey *btcec.PublicKey, params *chaincfg.Params) (string, error) {
	pubKeyHash := btcutil.Hash160(pubKey.SerializeCompressed())
	addr, err := btcutil.NewAddressPubKeyHash(pubKeyHash, params)
	if err != nil {
		return "", fmt.Errorf("failed to create P2PKH address: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// deriveP2WPKH derives a native SegWit address (bc1q... for BTC, ltc1q... for LTC)
func deriveP2WPKH(pubKey *btcec.PublicKey, params *chaincfg.Params) (string, error) {
	pubKeyHash := btcutil.Hash160(pubKey.SerializeCompressed())
	addr, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, params)
	if err != nil {
		return "", fmt.Errorf("failed to create P2WPKH address: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// deriveP2TR derives a key-path-only Taproot address (bc1p...)
func deriveP2TR(pubKey *btcec.PublicKey, params *chaincfg.Params) (string, error) {
	taprootKey := txscript.ComputeTaprootKeyNoScript(pubKey)
	addr, err := btcutil.NewAddressTaproot(taprootKey.SerializeCompressed()[1:], params)
	if err != nil {
		return "", fmt.Errorf("failed to create Taproot address: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// ParseBitcoinAddress decodes an address and checks it belongs to params.
// Raw hex public keys, which btcutil also decodes, are rejected.
func ParseBitcoinAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	decoded, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, fmt.Errorf("failed to decode address: %w", err)
	}

	switch decoded.(type) {
	case *btcutil.AddressPubKeyHash, *btcutil.AddressScriptHash,
		*btcutil.AddressWitnessPubKeyHash, *btcutil.AddressWitnessScriptHash,
		*btcutil.AddressTaproot:
	default:
		return nil, fmt.Errorf("unsupported address type %T", decoded)
	}

	// Bech32 decoding does not check the human-readable part against params.
	if !decoded.IsForNet(params) {
		return nil, fmt.Errorf("address %q is not for network %s", address, params.Name)
	}
	return decoded, nil
}

var (
	paramsMu    sync.Mutex
	paramsByNet = map[wire.BitcoinNet]*chaincfg.Params{
		chaincfg.MainNetParams.Net: &chaincfg.MainNetParams,
	}
)

func init() {
	// Register every built-in network up front so decoding never races registration.
	for _, id := range chain.ListByFamily(chain.FamilyBitcoin) {
		d, _ := chain.Get(id)
		if _, err := chainCfgParams(d); err != nil {
			panic(err)
		}
	}
}

// chainCfgParams converts a descriptor to btcd's chaincfg.Params, registering
// networks btcd does not know so their bech32 prefix decodes.
func chainCfgParams(d *chain.Descriptor) (*chaincfg.Params, error) {
	net := wire.BitcoinNet(d.NetMagic)

	paramsMu.Lock()
	defer paramsMu.Unlock()

	if params, ok := paramsByNet[net]; ok {
		return params, nil
	}

	// Use chain-specific HD magic bytes, fallback to Bitcoin mainnet if not set
	hdPrivateKeyID := d.HDPrivateKeyID
	hdPublicKeyID := d.HDPublicKeyID
	if hdPrivateKeyID == [4]byte{} {
		hdPrivateKeyID = [4]byte{0x04, 0x88, 0xad, 0xe4} // xprv
	}
	if hdPublicKeyID == [4]byte{} {
		hdPublicKeyID = [4]byte{0x04, 0x88, 0xb2, 0x1e} // xpub
	}

	params := &chaincfg.Params{
		Name: d.Name,
		Net:  net,

		PubKeyHashAddrID: d.PubKeyHashAddrID,
		ScriptHashAddrID: d.ScriptHashAddrID,
		Bech32HRPSegwit:  d.Bech32HRP,

		HDPrivateKeyID: hdPrivateKeyID,
		HDPublicKeyID:  hdPublicKeyID,
		HDCoinType:     d.CoinType,
	}

	if err := chaincfg.Register(params); err != nil && !errors.Is(err, chaincfg.ErrDuplicateNet) {
		return nil, fmt.Errorf("register %s network params: %w", d.Name, err)
	}

	paramsByNet[net] = params
	return params, nil
}
