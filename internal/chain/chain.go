// Package chain defines the network descriptors and derivation paths for supported chains.
// All chain-specific values are hardcoded here - no external configuration needed.
package chain

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedChain is returned when a chain id is not registered.
var ErrUnsupportedChain = errors.New("unsupported chain")

// Curve is the elliptic curve a chain signs with.
type Curve string

const (
	CurveSecp256k1 Curve = "secp256k1" // EVM, Bitcoin family, TRON, XRP
	CurveEd25519   Curve = "ed25519"   // Solana, TON
)

// Family groups chains that share key handling and address logic.
type Family string

const (
	FamilyEVM     Family = "evm"     // Ethereum and EVM-compatible chains
	FamilyBitcoin Family = "bitcoin" // BTC and forks (LTC)
	FamilySolana  Family = "solana"
	FamilyTron    Family = "tron"
	FamilyTON     Family = "ton"
	FamilyXRP     Family = "xrp"
)

// Encoding is the textual address format produced for a chain.
type Encoding string

const (
	EncodingEVM          Encoding = "evm"           // 0x + EIP-55 hex
	EncodingP2PKH        Encoding = "p2pkh"         // Base58Check legacy (1..., L...)
	EncodingP2WPKH       Encoding = "p2wpkh"        // Bech32 native SegWit (bc1q..., ltc1q...)
	EncodingP2TR         Encoding = "p2tr"          // Bech32m Taproot (bc1p...)
	EncodingBase58       Encoding = "base58"        // Raw ed25519 key (Solana)
	EncodingTronBase58   Encoding = "tron-base58"   // Base58Check with 0x41 version (T...)
	EncodingTONFriendly  Encoding = "ton-friendly"  // Base64url user-friendly wallet address
	EncodingRippleBase58 Encoding = "ripple-base58" // Base58Check over the Ripple alphabet (r...)
)

// Descriptor contains all parameters for a supported chain.
// Descriptors are immutable once registered; Get hands out copies.
type Descriptor struct {
	// Identity
	ID     string // ethereum, bitcoin, solana, ...
	Name   string // Ethereum, Bitcoin, ...
	Family Family

	// NativeToken is the ticker of the chain's fee currency, e.g. ETH.
	NativeToken string

	// Key and address handling
	Curve    Curve
	Encoding Encoding

	// BIP44 derivation
	Purpose  uint32 // 44, 84 (native SegWit) or 86 (Taproot)
	CoinType uint32 // SLIP-44 coin type (0=BTC, 2=LTC, 60=ETH, ...)

	// Bitcoin-like network params
	NetMagic         uint32 // wire network magic, used to register chaincfg params
	PubKeyHashAddrID byte   // Address prefix for P2PKH
	ScriptHashAddrID byte   // Address prefix for P2SH
	Bech32HRP        string // Bech32 human-readable prefix
	HDPrivateKeyID   [4]byte
	HDPublicKeyID    [4]byte

	// VersionByte prefixes the payload of Base58Check encodings (TRON 0x41, XRP 0x00).
	VersionByte byte

	// EVM params
	EVMChainID uint64
}

// Path returns the canonical derivation path for this chain at the given account.
// secp256k1 chains use m/purpose'/coin'/account'/0/0; ed25519 chains use the
// all-hardened m/purpose'/coin'/account'/0'.
func (d *Descriptor) Path(account uint32) (Path, error) {
	if account > MaxIndex {
		return nil, fmt.Errorf("%w: account %d exceeds %d", ErrInvalidPath, account, MaxIndex)
	}

	var path Path
	switch d.Curve {
	case CurveEd25519:
		path = Path{
			Hardened(d.Purpose),
			Hardened(d.CoinType),
			Hardened(account),
			Hardened(0),
		}
	default:
		path = Path{
			Hardened(d.Purpose),
			Hardened(d.CoinType),
			Hardened(account),
			Normal(0), // external chain
			Normal(0), // address index
		}
	}

	if err := path.Validate(d.Curve); err != nil {
		return nil, err
	}
	return path, nil
}

// IsEVM reports whether the chain shares the Ethereum key and address.
func (d *Descriptor) IsEVM() bool {
	return d.Family == FamilyEVM
}

// registry holds all descriptors indexed by id.
var registry = make(map[string]*Descriptor)

// Register adds a descriptor to the registry.
func Register(d *Descriptor) {
	registry[d.ID] = d
}

// Get returns a copy of the descriptor registered under id.
func Get(id string) (*Descriptor, bool) {
	d, ok := registry[id]
	if !ok {
		return nil, false
	}
	cp := *d
	return &cp, true
}

// Lookup is Get with a typed error for unknown ids.
func Lookup(id string) (*Descriptor, error) {
	d, ok := Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, id)
	}
	return d, nil
}

// List returns all registered chain ids in sorted order.
func List() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListByFamily returns the sorted ids of every chain in a family.
func ListByFamily(family Family) []string {
	var ids []string
	for id, d := range registry {
		if d.Family == family {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// IsSupported returns true if the chain is registered.
func IsSupported(id string) bool {
	_, ok := registry[id]
	return ok
}

// GetByEVMChainID returns the EVM descriptor with the given chain id.
func GetByEVMChainID(chainID uint64) (*Descriptor, bool) {
	for _, d := range registry {
		if d.Family == FamilyEVM && d.EVMChainID == chainID {
			cp := *d
			return &cp, true
		}
	}
	return nil, false
}
