package signer

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"

	"github.com/blockberries/bulk-keychain/codec"
	"github.com/blockberries/bulk-keychain/crypto"
	"github.com/blockberries/bulk-keychain/nonce"
	"github.com/blockberries/bulk-keychain/types"
)

// prepareAction is the single encode path shared by Signer and Preparer.
// The action must already be validated.
func prepareAction(action types.Action, account, signer crypto.PublicKey, n uint64) (*types.PreparedMessage, error) {
	msg, err := codec.Encode(action, account, signer, n)
	if err != nil {
		return nil, err
	}
	actionJSON, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("%w: action json: %v", types.ErrEncoding, err)
	}
	return &types.PreparedMessage{
		MessageBytes: msg,
		OrderID:      codec.ComputeOrderID(msg),
		Action:       actionJSON,
		Account:      account,
		Signer:       signer,
		Nonce:        n,
	}, nil
}

// Preparer builds messages for external wallets without holding a key.
type Preparer struct {
	nonces *nonce.Manager
	pool   workerPool
	logger log.Logger
}

// NewPreparer creates a preparer. Without a nonce manager option, nonces
// default to the current timestamp in milliseconds.
func NewPreparer(opts ...PreparerOption) *Preparer {
	p := &Preparer{
		nonces: nonce.New(nonce.Timestamp),
		pool:   defaultPool(),
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("module", "preparer")
	return p
}

// PrepareOrder prepares a single order item.
func (p *Preparer) PrepareOrder(item types.OrderItem, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	if item == nil {
		return nil, types.NewValidationError("item", "is required")
	}
	return p.prepare(item, opts)
}

// PrepareAllOrders prepares one message per item. opts.Nonce, when set, is
// the base nonce; item i gets base+i.
func (p *Preparer) PrepareAllOrders(items []types.OrderItem, opts types.PrepareOptions) ([]*types.PreparedMessage, error) {
	if len(items) == 0 {
		return []*types.PreparedMessage{}, nil
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var base uint64
	if opts.Nonce != nil {
		base = *opts.Nonce
	} else {
		base = p.nonces.Reserve(len(items))
	}
	nonces := nonce.Sequence(base, len(items))
	signer := opts.EffectiveSigner()

	p.logger.Debug("preparing batch", "items", len(items), "parallel", p.pool.parallel(len(items)))
	return run(p.pool, len(items), func(i int) (*types.PreparedMessage, error) {
		return prepareAction(items[i], opts.Account, signer, nonces[i])
	})
}

// PrepareOrderGroup prepares items as one atomic message.
func (p *Preparer) PrepareOrderGroup(items []types.OrderItem, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return p.prepare(types.Group{Items: items}, opts)
}

// PrepareAgentWallet prepares an agent wallet authorization or revocation.
func (p *Preparer) PrepareAgentWallet(agent crypto.PublicKey, del bool, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return p.prepare(types.AgentWallet{Agent: agent, Delete: del}, opts)
}

// PrepareFaucet prepares a testnet faucet request.
func (p *Preparer) PrepareFaucet(opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return p.prepare(types.Faucet{}, opts)
}

// PrepareUserSettings prepares a max leverage update.
func (p *Preparer) PrepareUserSettings(settings []types.LeverageSetting, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return p.prepare(types.UserSettings{MaxLeverage: settings}, opts)
}

func (p *Preparer) prepare(action types.Action, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	var n uint64
	if opts.Nonce != nil {
		n = *opts.Nonce
	} else {
		n = p.nonces.Next()
	}
	return prepareAction(action, opts.Account, opts.EffectiveSigner(), n)
}

// PrepareOrder prepares one order item with a default Preparer.
func PrepareOrder(item types.OrderItem, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return NewPreparer().PrepareOrder(item, opts)
}

// PrepareAllOrders prepares one message per item with a default Preparer.
func PrepareAllOrders(items []types.OrderItem, opts types.PrepareOptions) ([]*types.PreparedMessage, error) {
	return NewPreparer().PrepareAllOrders(items, opts)
}

// PrepareOrderGroup prepares an atomic group with a default Preparer.
func PrepareOrderGroup(items []types.OrderItem, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return NewPreparer().PrepareOrderGroup(items, opts)
}

// PrepareAgentWallet prepares an agent wallet change with a default Preparer.
func PrepareAgentWallet(agent crypto.PublicKey, del bool, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return NewPreparer().PrepareAgentWallet(agent, del, opts)
}

// PrepareFaucet prepares a faucet request with a default Preparer.
func PrepareFaucet(opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return NewPreparer().PrepareFaucet(opts)
}

// PrepareUserSettings prepares a settings update with a default Preparer.
func PrepareUserSettings(settings []types.LeverageSetting, opts types.PrepareOptions) (*types.PreparedMessage, error) {
	return NewPreparer().PrepareUserSettings(settings, opts)
}
