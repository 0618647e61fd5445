package keys

import (
	"fmt"

	slip10 "github.com/anyproto/go-slip10"
	"github.com/klingon-exchange/keyderive/internal/chain"
	"github.com/klingon-exchange/keyderive/pkg/helpers"
)

// Ed25519Deriver implements SLIP-0010 for ed25519. Every segment must be hardened;
// unlike BIP32 every derived ed25519 key is valid, so there is no retry.
type Ed25519Deriver struct{}

// NewEd25519Deriver creates a SLIP-0010 ed25519 deriver.
func NewEd25519Deriver() *Ed25519Deriver {
	return &Ed25519Deriver{}
}

// Derive walks path from the SLIP-0010 master node of seed.
func (d *Ed25519Deriver) Derive(seed []byte, path chain.Path) (*KeyPair, error) {
	if err := path.Validate(chain.CurveEd25519); err != nil {
		return nil, err
	}

	master, err := slip10.NewMasterNode(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create master node: %v", ErrDerivationFailure, err)
	}

	node, err := walkSLIP10(master, path)
	if err != nil {
		return nil, err
	}

	pub, priv := node.Keypair()
	helpers.SecureClear(node.RawSeed())
	defer helpers.SecureClear(priv)

	return &KeyPair{
		PrivateKey: priv.Seed(),
		PublicKey:  helpers.CopyBytes(pub),
		Curve:      chain.CurveEd25519,
		Path:       path.Clone(),
	}, nil
}

// walkSLIP10 derives path below parent, wiping each parent's key once its child
// exists. RawSeed aliases the node's key; go-slip10 does not expose the chain
// code, so that half of each node is left to the garbage collector.
func walkSLIP10(parent slip10.Node, path chain.Path) (slip10.Node, error) {
	node := parent
	for depth, seg := range path {
		child, err := node.Derive(seg.Value())
		helpers.SecureClear(node.RawSeed())
		if err != nil {
			return nil, fmt.Errorf("%w: depth %d: %v", ErrDerivationFailure, depth, err)
		}
		node = child
	}
	return node, nil
}
