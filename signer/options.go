package signer

import (
	"runtime"

	"cosmossdk.io/log"

	"github.com/blockberries/bulk-keychain/crypto"
	"github.com/blockberries/bulk-keychain/nonce"
)

// DefaultParallelThreshold is the batch size above which SignAll and
// PrepareAllOrders spread work across workers.
const DefaultParallelThreshold = 10

// Option configures a Signer.
type Option func(*Signer)

// WithNonceManager makes the signer draw nonces from m. Share a manager
// between signers only when cross-instance coordination is intended.
func WithNonceManager(m *nonce.Manager) Option {
	return func(s *Signer) {
		if m != nil {
			s.nonces = m
		}
	}
}

// WithStrategy gives the signer a fresh nonce manager using strategy.
func WithStrategy(strategy nonce.Strategy) Option {
	return func(s *Signer) {
		s.nonces = nonce.New(strategy)
	}
}

// WithAccount signs on behalf of account, e.g. as an authorized agent
// wallet. The default account is the signer's own public key.
func WithAccount(account crypto.PublicKey) Option {
	return func(s *Signer) {
		s.account = account
	}
}

// WithParallelThreshold sets the batch size above which SignAll runs in
// parallel. Values below 1 are ignored.
func WithParallelThreshold(n int) Option {
	return func(s *Signer) {
		if n >= 1 {
			s.pool.threshold = n
		}
	}
}

// WithWorkers bounds the number of goroutines used by a parallel SignAll.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *Signer) {
		if n >= 1 {
			s.pool.workers = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(s *Signer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// PreparerOption configures a Preparer.
type PreparerOption func(*Preparer)

// WithPreparerNonceManager makes the preparer draw nonces from m when the
// caller does not supply one.
func WithPreparerNonceManager(m *nonce.Manager) PreparerOption {
	return func(p *Preparer) {
		if m != nil {
			p.nonces = m
		}
	}
}

// WithPreparerLogger sets the preparer's logger.
func WithPreparerLogger(logger log.Logger) PreparerOption {
	return func(p *Preparer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPreparerWorkers bounds the goroutines used by PrepareAllOrders.
func WithPreparerWorkers(n int) PreparerOption {
	return func(p *Preparer) {
		if n >= 1 {
			p.pool.workers = n
		}
	}
}

func defaultPool() workerPool {
	return workerPool{
		threshold: DefaultParallelThreshold,
		workers:   runtime.GOMAXPROCS(0),
	}
}
