package signer

import (
	"encoding/hex"
	"strings"
	"sync"
	"testing"

	"cosmossdk.io/log"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/bulk-keychain/crypto"
	"github.com/blockberries/bulk-keychain/types"
)

// RFC 8032 TEST 1 seed; a fixed key keeps signatures comparable across runs.
const testSeedHex = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

func testKeypair(t testing.TB) *crypto.Keypair {
	t.Helper()
	seed, err := hex.DecodeString(testSeedHex)
	require.NoError(t, err)
	kp, err := crypto.KeypairFromBytes(seed)
	require.NoError(t, err)
	return kp
}

func btcOrder() types.Order {
	return types.Order{
		Symbol:    "BTC-USD",
		IsBuy:     true,
		Price:     100000,
		Size:      0.1,
		OrderType: types.Limit{TIF: types.GTC},
	}
}

func orderBatch(n int) []types.OrderItem {
	items := make([]types.OrderItem, n)
	for i := range items {
		o := btcOrder()
		o.Price = float64(100000 + i)
		items[i] = o
	}
	return items
}

// solanaWallet is an external wallet backed by solana-go.
type solanaWallet struct {
	key solana.PrivateKey
}

func (w solanaWallet) PublicKey() crypto.PublicKey {
	return crypto.PublicKey(w.key.PublicKey())
}

func (w solanaWallet) Sign(message []byte) (crypto.Signature, error) {
	sig, err := w.key.Sign(message)
	return crypto.Signature(sig), err
}

type logEntry struct {
	level   string
	msg     string
	keyVals []any
}

// captureLogger records log calls for assertions.
type captureLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	with    []any
}

func newCaptureLogger() *captureLogger {
	return &captureLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *captureLogger) record(level, msg string, keyVals []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kv := append(append([]any{}, l.with...), keyVals...)
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, keyVals: kv})
}

func (l *captureLogger) Info(msg string, keyVals ...any)  { l.record("info", msg, keyVals) }
func (l *captureLogger) Warn(msg string, keyVals ...any)  { l.record("warn", msg, keyVals) }
func (l *captureLogger) Error(msg string, keyVals ...any) { l.record("error", msg, keyVals) }
func (l *captureLogger) Debug(msg string, keyVals ...any) { l.record("debug", msg, keyVals) }

func (l *captureLogger) With(keyVals ...any) log.Logger {
	return &captureLogger{
		mu:      l.mu,
		entries: l.entries,
		with:    append(append([]any{}, l.with...), keyVals...),
	}
}

func (l *captureLogger) Impl() any { return l }

// count returns how many entries contain substr in their message.
func (l *captureLogger) count(substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range *l.entries {
		if strings.Contains(e.msg, substr) {
			n++
		}
	}
	return n
}

func (l *captureLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), *l.entries...)
}
