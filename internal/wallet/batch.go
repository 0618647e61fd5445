package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/klingon-exchange/keyderive/internal/chain"
	"github.com/klingon-exchange/keyderive/internal/mnemonic"
	"github.com/klingon-exchange/keyderive/pkg/helpers"
)

// Result is one chain's outcome in a batch. Exactly one of Address and Err is set.
type Result struct {
	Address string
	Path    chain.Path
	Err     error
}

// OK reports whether the chain derived successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// DeriveAllAddresses derives the account's address on every registered chain.
// See DeriveAddresses.
func (s *Service) DeriveAllAddresses(ctx context.Context, m, passphrase string, account uint32) (map[string]Result, error) {
	return s.DeriveAddresses(ctx, m, passphrase, account, chain.List())
}

// DeriveAddresses derives the account's address on each of chainIDs concurrently.
//
// The returned map has one entry per distinct chain id. A chain that fails
// carries a *DerivationError and never affects the others. The returned error
// is non-nil only when nothing can be derived (invalid mnemonic, unknown chain
// id) or when ctx is cancelled; in the latter case the map is still complete,
// with the context error on chains that did not finish.
func (s *Service) DeriveAddresses(ctx context.Context, m, passphrase string, account uint32, chainIDs []string) (map[string]Result, error) {
	descs, err := lookupAll(chainIDs)
	if err != nil {
		return nil, err
	}

	seed, err := mnemonic.ToSeed(m, passphrase)
	if err != nil {
		return nil, err
	}
	// Workers only read the seed; it is wiped once all of them have returned.
	defer helpers.SecureClear(seed)

	log := s.log.With("batch", uuid.NewString())
	log.Debug("Deriving addresses", "chains", len(descs), "account", account, "workers", s.workers)
	start := time.Now()

	var (
		mu      sync.Mutex
		results = make(map[string]Result, len(descs))
	)
	record := func(id string, r Result) {
		mu.Lock()
		results[id] = r
		mu.Unlock()
	}

	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for _, d := range descs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				record(d.ID, Result{Err: &DerivationError{ChainID: d.ID, Err: err}})
				return nil
			}

			path, err := d.Path(account)
			if err != nil {
				record(d.ID, Result{Err: &DerivationError{ChainID: d.ID, Err: err}})
				return nil
			}

			addr, used, err := s.deriveFromSeed(seed, d, path)
			if err != nil {
				log.Warn("Chain derivation failed", "chain", d.ID, "error", err)
				record(d.ID, Result{Err: &DerivationError{ChainID: d.ID, Err: err}})
				return nil
			}

			record(d.ID, Result{Address: addr, Path: used})
			return nil
		})
	}

	// Per-chain failures are recorded in results, so Wait never reports one.
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	log.Debug("Batch complete", "chains", len(results), "failed", failed, "elapsed", time.Since(start))

	return results, ctx.Err()
}
