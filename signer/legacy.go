package signer

import (
	"fmt"

	"github.com/blockberries/bulk-keychain/types"
)

// SignOrder signs items as one atomic group.
//
// Deprecated: Use Sign for a single item, SignAll for independent
// transactions, or SignGroup for an atomic group.
func (s *Signer) SignOrder(items []types.OrderItem, n *uint64) (*types.SignedTransaction, error) {
	s.deprecation.Warn("SignOrder", "SignGroup")
	return s.SignGroup(items, n)
}

// SignOrdersBatch signs each batch as its own atomic group. Batch i uses
// nonce base+i; with a nil base the nonces are reserved from the manager in
// one step. Every batch is validated before any is signed.
//
// Deprecated: Use SignAll or SignGroup.
func (s *Signer) SignOrdersBatch(batches [][]types.OrderItem, base *uint64) ([]*types.SignedTransaction, error) {
	s.deprecation.Warn("SignOrdersBatch", "SignAll")

	if len(batches) == 0 {
		return []*types.SignedTransaction{}, nil
	}
	groups := make([]types.Group, len(batches))
	for i, batch := range batches {
		groups[i] = types.Group{Items: batch}
		if err := groups[i].Validate(); err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
	}

	first := s.resolveBase(base, len(batches))
	return run(s.pool, len(groups), func(i int) (*types.SignedTransaction, error) {
		p, err := prepareAction(groups[i], s.account, s.PublicKey(), first+uint64(i))
		if err != nil {
			return nil, err
		}
		return SignPrepared(p, s.keypair)
	})
}
