// Package wallet derives addresses for every supported chain from a single
// BIP39 mnemonic. It holds no key material between calls.
package wallet

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/klingon-exchange/keyderive/internal/address"
	"github.com/klingon-exchange/keyderive/internal/chain"
	"github.com/klingon-exchange/keyderive/internal/keys"
	"github.com/klingon-exchange/keyderive/internal/mnemonic"
	"github.com/klingon-exchange/keyderive/pkg/helpers"
	"github.com/klingon-exchange/keyderive/pkg/logging"
)

// Service orchestrates mnemonic, key derivation and address encoding.
// It is safe for concurrent use.
type Service struct {
	log     *logging.Logger
	workers int
}

// ServiceConfig holds configuration for the wallet service.
type ServiceConfig struct {
	Logger *logging.Logger

	// Workers bounds concurrent derivations in a batch. Zero means GOMAXPROCS.
	Workers int
}

// NewService creates a new wallet service.
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = &ServiceConfig{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetDefault()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Service{
		log:     logger.Component("wallet"),
		workers: workers,
	}
}

// GenerateMnemonic generates a new mnemonic of 128 (12 words) or 256 (24 words) bits.
func (s *Service) GenerateMnemonic(strength int) (string, error) {
	return mnemonic.Generate(strength)
}

// ValidateMnemonic checks if a mnemonic is valid.
func (s *Service) ValidateMnemonic(m string) bool {
	return mnemonic.Validate(m)
}

// SupportedChains returns the registered chain ids, sorted.
func (s *Service) SupportedChains() []string {
	return chain.List()
}

// GetDerivationPath returns the canonical path of a chain at an account, e.g. m/44'/60'/0'/0/0.
func (s *Service) GetDerivationPath(chainID string, account uint32) (string, error) {
	d, err := chain.Lookup(chainID)
	if err != nil {
		return "", err
	}
	path, err := d.Path(account)
	if err != nil {
		return "", err
	}
	return path.String(), nil
}

// ValidateAddress reports whether addr is a well-formed address for chainID,
// checksum included. Unknown chains are never valid.
func (s *Service) ValidateAddress(addr, chainID string) bool {
	d, ok := chain.Get(chainID)
	if !ok {
		return false
	}
	return address.Validate(addr, d)
}

// EncodePublicKey returns the address of an existing public key on chainID,
// for watch-only use. The key format follows the chain curve: 33 or 65 byte
// SEC1 for secp256k1, 32 bytes for ed25519.
func (s *Service) EncodePublicKey(pubKey []byte, chainID string) (string, error) {
	d, err := chain.Lookup(chainID)
	if err != nil {
		return "", err
	}
	return address.Encode(d, pubKey)
}

// DeriveAddress derives the address of chainID at the canonical path for account.
func (s *Service) DeriveAddress(m, passphrase, chainID string, account uint32) (string, error) {
	d, err := chain.Lookup(chainID)
	if err != nil {
		return "", err
	}

	path, err := d.Path(account)
	if err != nil {
		return "", err
	}

	seed, err := mnemonic.ToSeed(m, passphrase)
	if err != nil {
		return "", err
	}
	defer helpers.SecureClear(seed)

	addr, _, err := s.deriveFromSeed(seed, d, path)
	return addr, err
}

// DeriveAddressAtPath derives the address of chainID at an explicit path such as
// m/44'/60'/0'/0/5. ed25519 chains require every segment to be hardened.
func (s *Service) DeriveAddressAtPath(m, passphrase, chainID, path string) (string, error) {
	d, err := chain.Lookup(chainID)
	if err != nil {
		return "", err
	}

	p, err := chain.ParsePath(path)
	if err != nil {
		return "", err
	}
	if err := p.Validate(d.Curve); err != nil {
		return "", err
	}

	seed, err := mnemonic.ToSeed(m, passphrase)
	if err != nil {
		return "", err
	}
	defer helpers.SecureClear(seed)

	addr, _, err := s.deriveFromSeed(seed, d, p)
	return addr, err
}

// DeriveKeyPair returns the key pair of chainID at the canonical path for account.
// The caller owns the result and should call Zero when done with it.
func (s *Service) DeriveKeyPair(m, passphrase, chainID string, account uint32) (*keys.KeyPair, error) {
	d, err := chain.Lookup(chainID)
	if err != nil {
		return nil, err
	}

	path, err := d.Path(account)
	if err != nil {
		return nil, err
	}

	seed, err := mnemonic.ToSeed(m, passphrase)
	if err != nil {
		return nil, err
	}
	defer helpers.SecureClear(seed)

	return keys.Derive(seed, path, d.Curve)
}

// deriveFromSeed derives the key at path, encodes it and self-validates the result.
// It returns the path actually used, which differs from path only after a BIP32 retry.
func (s *Service) deriveFromSeed(seed []byte, d *chain.Descriptor, path chain.Path) (string, chain.Path, error) {
	kp, err := keys.Derive(seed, path, d.Curve)
	if err != nil {
		return "", nil, err
	}
	defer kp.Zero()

	addr, err := address.Encode(d, kp.PublicKey)
	if err != nil {
		if errors.Is(err, address.ErrEncodingFailure) {
			s.log.Error("Refusing to return address that fails validation", "chain", d.ID, "path", kp.Path.String(), "error", err)
		}
		return "", nil, err
	}

	if kp.Path.String() != path.String() {
		s.log.Warn("Invalid BIP32 child skipped", "chain", d.ID, "requested", path.String(), "used", kp.Path.String())
	}
	s.log.Debug("Derived address", "chain", d.ID, "path", kp.Path.String(), "address", addr)

	return addr, kp.Path, nil
}

// lookupAll resolves chain ids, rejecting the whole request on the first unknown id.
func lookupAll(chainIDs []string) ([]*chain.Descriptor, error) {
	seen := make(map[string]struct{}, len(chainIDs))
	descs := make([]*chain.Descriptor, 0, len(chainIDs))
	for _, id := range chainIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		d, err := chain.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("resolve chains: %w", err)
		}
		descs = append(descs, d)
	}
	return descs, nil
}
