// Package nonce issues replay-protection nonces for signed transactions.
//
// A Manager is scoped to one signer. It is safe for concurrent use; there is
// no process-wide nonce state.
package nonce

import (
	"sync/atomic"
	"time"

	"github.com/blockberries/bulk-keychain/types"
)

// Strategy selects how a Manager derives nonces.
type Strategy int

const (
	// Timestamp issues the current epoch milliseconds. Two calls within the
	// same millisecond return the same value.
	Timestamp Strategy = iota

	// Counter issues origin+1, origin+2, ... regardless of call rate.
	Counter

	// HighFrequency issues epoch milliseconds scaled by HighFrequencyScale
	// plus a sub-counter, strictly increasing even within one millisecond.
	HighFrequency
)

// HighFrequencyScale is the number of sub-counter slots per millisecond.
// When more than this many nonces are issued in one millisecond the values
// run ahead of the clock until it catches up; they never repeat.
const HighFrequencyScale = 1000

func (s Strategy) String() string {
	switch s {
	case Timestamp:
		return "timestamp"
	case Counter:
		return "counter"
	case HighFrequency:
		return "highFrequency"
	default:
		return "unknown"
	}
}

// ParseStrategy parses "timestamp", "counter" or "highFrequency".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "timestamp":
		return Timestamp, nil
	case "counter":
		return Counter, nil
	case "highFrequency":
		return HighFrequency, nil
	default:
		return 0, types.NewValidationError("strategy", "invalid nonce strategy %q (want timestamp, counter or highFrequency)", s)
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the wall clock. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithCounterOrigin sets the counter origin. The first Counter nonce is
// origin+1. Ignored by the other strategies.
func WithCounterOrigin(origin uint64) Option {
	return func(m *Manager) {
		m.origin = origin
	}
}

// Manager issues nonces under one Strategy.
type Manager struct {
	strategy Strategy
	clock    func() time.Time
	origin   uint64

	// last is the most recently issued value (Counter and HighFrequency).
	last atomic.Uint64
}

// New creates a Manager.
func New(strategy Strategy, opts ...Option) *Manager {
	m := &Manager{
		strategy: strategy,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if strategy == Counter {
		m.last.Store(m.origin)
	}
	return m
}

// Strategy returns the manager's strategy.
func (m *Manager) Strategy() Strategy {
	return m.strategy
}

// Next issues one nonce.
func (m *Manager) Next() uint64 {
	return m.Reserve(1)
}

// Reserve claims n consecutive nonces in one atomic step and returns the
// first. The batch is base, base+1, ..., base+n-1 (see Sequence). n < 1 is
// treated as 1.
//
// For Timestamp the reservation is best effort: the base is the current
// millisecond and concurrent reservations may overlap.
func (m *Manager) Reserve(n int) uint64 {
	if n < 1 {
		n = 1
	}
	count := uint64(n)

	switch m.strategy {
	case Counter:
		return m.last.Add(count) - count + 1
	case HighFrequency:
		for {
			prev := m.last.Load()
			base := m.millis() * HighFrequencyScale
			if base <= prev {
				base = prev + 1
			}
			if m.last.CompareAndSwap(prev, base+count-1) {
				return base
			}
		}
	default:
		return m.millis()
	}
}

// Last returns the most recently issued Counter or HighFrequency nonce, or
// the origin if none has been issued. It is zero for Timestamp.
func (m *Manager) Last() uint64 {
	return m.last.Load()
}

func (m *Manager) millis() uint64 {
	return uint64(m.clock().UnixMilli())
}

// Sequence returns base, base+1, ..., base+n-1.
func Sequence(base uint64, n int) []uint64 {
	if n <= 0 {
		return nil
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = base + uint64(i)
	}
	return out
}

// CurrentTimestampMillis returns the current Unix time in milliseconds.
func CurrentTimestampMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
