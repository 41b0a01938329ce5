// Package signer turns actions into signed BULK transactions.
//
// A Signer holds a keypair and a nonce manager and signs locally. A Preparer
// produces the same canonical bytes for an external wallet, and Finalize
// pairs the wallet's signature with them. Both paths share one pipeline, so
// identical inputs give identical transactions.
package signer

import (
	"fmt"

	"cosmossdk.io/log"

	"github.com/blockberries/bulk-keychain/crypto"
	"github.com/blockberries/bulk-keychain/nonce"
	"github.com/blockberries/bulk-keychain/types"
)

// Signer signs actions with one keypair.
//
// THREAD-SAFETY: Signer is safe for concurrent use. Nonce issuance is atomic
// in the nonce manager; everything else is read-only after New.
type Signer struct {
	keypair *crypto.Keypair
	account crypto.PublicKey
	nonces  *nonce.Manager
	pool    workerPool
	logger  log.Logger

	deprecation *DeprecationLogger
}

// New creates a signer for kp. By default the account is kp's public key
// and nonces come from a Timestamp manager owned by this signer.
func New(kp *crypto.Keypair, opts ...Option) *Signer {
	if kp == nil {
		panic("signer: nil keypair")
	}
	s := &Signer{
		keypair: kp,
		account: kp.PublicKey(),
		nonces:  nonce.New(nonce.Timestamp),
		pool:    defaultPool(),
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "signer", "signer", kp.PublicKey().String())
	s.deprecation = NewDeprecationLogger(s.logger)
	return s
}

// FromBase58 creates a signer from a base58 secret (32-byte seed or 64-byte
// full keypair).
func FromBase58(secret string, opts ...Option) (*Signer, error) {
	kp, err := crypto.KeypairFromBase58(secret)
	if err != nil {
		return nil, err
	}
	return New(kp, opts...), nil
}

// NewWithStrategyName creates a signer whose nonce strategy is named by
// "timestamp", "counter" or "highFrequency".
func NewWithStrategyName(kp *crypto.Keypair, strategy string, opts ...Option) (*Signer, error) {
	st, err := nonce.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	return New(kp, append([]Option{WithStrategy(st)}, opts...)...), nil
}

// Nonce returns a pointer to n, for passing an explicit nonce.
func Nonce(n uint64) *uint64 {
	return &n
}

// PublicKey returns the signing key.
func (s *Signer) PublicKey() crypto.PublicKey {
	return s.keypair.PublicKey()
}

// Account returns the account transactions are signed for.
func (s *Signer) Account() crypto.PublicKey {
	return s.account
}

// NonceManager returns the signer's nonce manager.
func (s *Signer) NonceManager() *nonce.Manager {
	return s.nonces
}

// Deprecation returns the signer's deprecation logger.
func (s *Signer) Deprecation() *DeprecationLogger {
	return s.deprecation
}

// Sign signs one order item. A nil nonce is drawn from the nonce manager.
func (s *Signer) Sign(item types.OrderItem, n *uint64) (*types.SignedTransaction, error) {
	if item == nil {
		return nil, types.NewValidationError("item", "is required")
	}
	return s.signAction(item, n)
}

// SignAll signs each item as its own transaction with nonces base, base+1,
// ... (or a fresh reservation from the nonce manager when base is nil).
// Every item is validated before any nonce is drawn; on error nothing is
// returned. Output order matches input order.
func (s *Signer) SignAll(items []types.OrderItem, base *uint64) ([]*types.SignedTransaction, error) {
	if len(items) == 0 {
		return []*types.SignedTransaction{}, nil
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	nonces := nonce.Sequence(s.resolveBase(base, len(items)), len(items))
	s.logger.Debug("signing batch",
		"items", len(items),
		"parallel", s.pool.parallel(len(items)),
		"workers", s.pool.workers,
	)

	return run(s.pool, len(items), func(i int) (*types.SignedTransaction, error) {
		p, err := prepareAction(items[i], s.account, s.PublicKey(), nonces[i])
		if err != nil {
			return nil, err
		}
		return SignPrepared(p, s.keypair)
	})
}

// SignGroup signs items as one atomic transaction under a single nonce and
// signature. The group must hold at least one item.
func (s *Signer) SignGroup(items []types.OrderItem, n *uint64) (*types.SignedTransaction, error) {
	return s.signAction(types.Group{Items: items}, n)
}

// SignFaucet signs a testnet faucet request.
func (s *Signer) SignFaucet(n *uint64) (*types.SignedTransaction, error) {
	return s.signAction(types.Faucet{}, n)
}

// SignAgentWallet authorizes agent to trade for the account, or revokes it
// when del is set.
func (s *Signer) SignAgentWallet(agent crypto.PublicKey, del bool, n *uint64) (*types.SignedTransaction, error) {
	return s.signAction(types.AgentWallet{Agent: agent, Delete: del}, n)
}

// SignUserSettings signs a per-symbol max leverage update.
func (s *Signer) SignUserSettings(settings []types.LeverageSetting, n *uint64) (*types.SignedTransaction, error) {
	return s.signAction(types.UserSettings{MaxLeverage: settings}, n)
}

// signAction validates before drawing a nonce, so rejected actions do not
// consume one.
func (s *Signer) signAction(action types.Action, n *uint64) (*types.SignedTransaction, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	p, err := prepareAction(action, s.account, s.PublicKey(), s.resolveNonce(n))
	if err != nil {
		return nil, err
	}
	return SignPrepared(p, s.keypair)
}

func (s *Signer) resolveNonce(n *uint64) uint64 {
	if n != nil {
		return *n
	}
	return s.nonces.Next()
}

func (s *Signer) resolveBase(base *uint64, count int) uint64 {
	if base != nil {
		return *base
	}
	return s.nonces.Reserve(count)
}

func validateItems(items []types.OrderItem) error {
	for i, item := range items {
		if item == nil {
			return types.NewValidationError(fmt.Sprintf("items[%d]", i), "is required")
		}
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}
