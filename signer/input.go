package signer

import (
	"github.com/blockberries/bulk-keychain/types"
)

// SignInput converts and signs one loosely-typed order item.
func (s *Signer) SignInput(in types.OrderInput, n *uint64) (*types.SignedTransaction, error) {
	item, err := in.ToOrderItem()
	if err != nil {
		return nil, err
	}
	return s.Sign(item, n)
}

// SignAllInputs converts every input, failing on the first invalid one, and
// signs them as independent transactions.
func (s *Signer) SignAllInputs(inputs []types.OrderInput, base *uint64) ([]*types.SignedTransaction, error) {
	items, err := types.OrderItemsFromInputs(inputs)
	if err != nil {
		return nil, err
	}
	return s.SignAll(items, base)
}

// SignGroupInputs converts every input and signs them as one atomic group.
func (s *Signer) SignGroupInputs(inputs []types.OrderInput, n *uint64) (*types.SignedTransaction, error) {
	items, err := types.OrderItemsFromInputs(inputs)
	if err != nil {
		return nil, err
	}
	return s.SignGroup(items, n)
}
