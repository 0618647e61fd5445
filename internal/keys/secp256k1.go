package keys

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/klingon-exchange/keyderive/internal/chain"
)

// childFunc derives one BIP32 level.
type childFunc func(parent *hdkeychain.ExtendedKey, i uint32) (*hdkeychain.ExtendedKey, error)

func deriveChild(parent *hdkeychain.ExtendedKey, i uint32) (*hdkeychain.ExtendedKey, error) {
	return parent.Derive(i)
}

// Secp256k1Deriver implements BIP32 over secp256k1.
type Secp256k1Deriver struct {
	child childFunc
}

// NewSecp256k1Deriver creates a BIP32 deriver.
func NewSecp256k1Deriver() *Secp256k1Deriver {
	return &Secp256k1Deriver{child: deriveChild}
}

// Derive walks path from the master key of seed. When a child index yields an
// invalid key (probability below 2^-127) the next index is used instead, as BIP32
// requires; the returned KeyPair.Path records the index actually used.
func (d *Secp256k1Deriver) Derive(seed []byte, path chain.Path) (*KeyPair, error) {
	if err := path.Validate(chain.CurveSecp256k1); err != nil {
		return nil, err
	}

	// Mainnet params only affect xprv/xpub serialization, which is never used here.
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create master key: %v", ErrDerivationFailure, err)
	}

	actual := path.Clone()
	key := master
	for depth := range actual {
		next, seg, err := d.deriveLevel(key, actual[depth])
		key.Zero()
		if err != nil {
			return nil, fmt.Errorf("%w at depth %d", err, depth)
		}
		actual[depth] = seg
		key = next
	}
	defer key.Zero()

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get private key: %v", ErrDerivationFailure, err)
	}
	defer priv.Zero()

	return &KeyPair{
		PrivateKey: priv.Serialize(),
		PublicKey:  priv.PubKey().SerializeCompressed(),
		Curve:      chain.CurveSecp256k1,
		Path:       actual,
	}, nil
}

// deriveLevel derives seg from parent, moving to the next index while BIP32
// reports an invalid child.
func (d *Secp256k1Deriver) deriveLevel(parent *hdkeychain.ExtendedKey, seg chain.Segment) (*hdkeychain.ExtendedKey, chain.Segment, error) {
	for seg.Index <= chain.MaxIndex {
		child, err := d.child(parent, seg.Value())
		if err == nil {
			return child, seg, nil
		}
		if !errors.Is(err, hdkeychain.ErrInvalidChild) {
			return nil, seg, fmt.Errorf("%w: %v", ErrDerivationFailure, err)
		}
		seg.Index++
	}
	return nil, seg, fmt.Errorf("%w: index space exhausted", ErrDerivationFailure)
}
