package signer

import (
	"crypto/ed25519"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/bulk-keychain/codec"
	"github.com/blockberries/bulk-keychain/crypto"
	"github.com/blockberries/bulk-keychain/nonce"
	"github.com/blockberries/bulk-keychain/types"
)

// ============================================================================
// End to end
// ============================================================================

func TestSign_EndToEnd(t *testing.T) {
	kp := testKeypair(t)
	s := New(kp)

	tx, err := s.Sign(btcOrder(), Nonce(42))
	require.NoError(t, err)

	const pub = "FVen3X669xLzsi6N2V91DoiyzHzg1uAgqiT8jZ9nS96Z"
	assert.Equal(t, pub, tx.Account)
	assert.Equal(t, pub, tx.Signer)
	assert.Equal(t, "Au1VewvQAM8HnKf2Hh7oGsGufVahzQSFvFhHjHBT2HGA", tx.OrderID)
	assert.Equal(t, "wPiJtrz3Kr2Dg6YfoU9ARcf3kfSEeFoaUKzPmhq7HYkyDbVwfRv4CY8J8vJtFNnBmNhk9E731gaB2Hq2FC39uoJ", tx.Signature)
	assert.JSONEq(t, `{
		"type":"order","symbol":"BTC-USD","isBuy":true,"price":100000,"size":0.1,
		"reduceOnly":false,"orderType":{"type":"limit","tif":"GTC"}
	}`, string(tx.Action))

	// The order id is recomputable from the same inputs.
	msg, err := codec.Encode(btcOrder(), kp.PublicKey(), kp.PublicKey(), 42)
	require.NoError(t, err)
	assert.Equal(t, codec.ComputeOrderID(msg).String(), tx.OrderID)
	assert.Equal(t, "0000000007000000000000004254432d5553440100000000006af8409a9999999999b93f00000000000000000000"+
		"d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"+
		"d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"+
		"2a00000000000000", hex.EncodeToString(msg))

	sig, err := crypto.SignatureFromBase58(tx.Signature)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(kp.PublicKey().Bytes(), msg, sig.Bytes()))
}

func TestSign_Deterministic(t *testing.T) {
	s := New(testKeypair(t))
	a, err := s.Sign(btcOrder(), Nonce(7))
	require.NoError(t, err)
	b, err := s.Sign(btcOrder(), Nonce(7))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// ============================================================================
// Nonces
// ============================================================================

func TestSign_DrawsFromNonceManager(t *testing.T) {
	kp := testKeypair(t)
	s := New(kp, WithStrategy(nonce.Counter))

	for want := uint64(1); want <= 3; want++ {
		tx, err := s.Sign(btcOrder(), nil)
		require.NoError(t, err)
		assertOrderID(t, tx, btcOrder(), kp.PublicKey(), kp.PublicKey(), want)
	}
}

func TestSign_ExplicitNonceBypassesManager(t *testing.T) {
	m := nonce.New(nonce.Counter)
	s := New(testKeypair(t), WithNonceManager(m))

	_, err := s.Sign(btcOrder(), Nonce(500))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), m.Last())
}

func TestSign_InvalidItemDoesNotConsumeNonce(t *testing.T) {
	m := nonce.New(nonce.Counter)
	s := New(testKeypair(t), WithNonceManager(m))

	bad := btcOrder()
	bad.Size = 0
	_, err := s.Sign(bad, nil)
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, uint64(0), m.Last())
}

func TestSign_ConcurrentUniqueNonces(t *testing.T) {
	kp := testKeypair(t)
	s := New(kp, WithStrategy(nonce.Counter))

	const goroutines = 8
	const perGoroutine = 25
	ids := make(chan string, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				tx, err := s.Sign(btcOrder(), nil)
				if err != nil {
					t.Errorf("sign: %v", err)
					return
				}
				ids <- tx.OrderID
			}
		}()
	}
	wg.Wait()
	close(ids)

	// Same order, different nonces: every id must differ.
	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

// ============================================================================
// SignAll
// ============================================================================

func TestSignAll_Cardinality(t *testing.T) {
	kp := testKeypair(t)
	s := New(kp)
	items := orderBatch(5)

	txs, err := s.SignAll(items, Nonce(1000))
	require.NoError(t, err)
	require.Len(t, txs, 5)

	ids := make(map[string]bool)
	for i, tx := range txs {
		ids[tx.OrderID] = true
		assertOrderID(t, tx, items[i], kp.PublicKey(), kp.PublicKey(), 1000+uint64(i))
	}
	assert.Len(t, ids, 5)
}

func TestSignAll_IdenticalItemsGetDistinctIDs(t *testing.T) {
	s := New(testKeypair(t))
	items := []types.OrderItem{btcOrder(), btcOrder(), btcOrder()}

	txs, err := s.SignAll(items, Nonce(1))
	require.NoError(t, err)
	assert.NotEqual(t, txs[0].OrderID, txs[1].OrderID)
	assert.NotEqual(t, txs[1].OrderID, txs[2].OrderID)
}

func TestSignAll_ParallelMatchesSequential(t *testing.T) {
	kp := testKeypair(t)
	items := orderBatch(64)

	sequential := New(kp, WithParallelThreshold(1000))
	parallel := New(kp, WithParallelThreshold(1), WithWorkers(8))

	want, err := sequential.SignAll(items, Nonce(1))
	require.NoError(t, err)
	got, err := parallel.SignAll(items, Nonce(1))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSignAll_ReservesFromManager(t *testing.T) {
	kp := testKeypair(t)
	m := nonce.New(nonce.Counter)
	s := New(kp, WithNonceManager(m))

	items := orderBatch(3)
	txs, err := s.SignAll(items, nil)
	require.NoError(t, err)
	for i, tx := range txs {
		assertOrderID(t, tx, items[i], kp.PublicKey(), kp.PublicKey(), uint64(i+1))
	}
	assert.Equal(t, uint64(3), m.Last())
	assert.Equal(t, uint64(4), m.Next())
}

func TestSignAll_FailFast(t *testing.T) {
	m := nonce.New(nonce.Counter)
	s := New(testKeypair(t), WithNonceManager(m))

	items := orderBatch(20)
	bad := btcOrder()
	bad.Symbol = ""
	items[13] = bad

	txs, err := s.SignAll(items, nil)
	require.Error(t, err)
	assert.Nil(t, txs)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), "item 13")
	assert.Equal(t, uint64(0), m.Last(), "no nonces are drawn for a rejected batch")

	_, err = s.SignAll([]types.OrderItem{btcOrder(), nil}, nil)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestSignAll_Empty(t *testing.T) {
	txs, err := New(testKeypair(t)).SignAll(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSignAll_LogsBatch(t *testing.T) {
	logger := newCaptureLogger()
	s := New(testKeypair(t), WithLogger(logger), WithParallelThreshold(2), WithWorkers(4))

	_, err := s.SignAll(orderBatch(3), Nonce(1))
	require.NoError(t, err)

	entries := logger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "debug", entries[0].level)
	assert.Contains(t, entries[0].keyVals, "parallel")
	assert.Contains(t, entries[0].keyVals, true)
}

// ============================================================================
// SignGroup
// ============================================================================

func TestSignGroup_SingleTransaction(t *testing.T) {
	kp := testKeypair(t)
	s := New(kp)

	for _, n := range []int{1, 2, 10, 50} {
		items := orderBatch(n)
		tx, err := s.SignGroup(items, Nonce(9))
		require.NoError(t, err)
		assertOrderID(t, tx, types.Group{Items: items}, kp.PublicKey(), kp.PublicKey(), 9)
	}
}

func TestSignGroup_Bracket(t *testing.T) {
	s := New(testKeypair(t))
	entry := btcOrder()
	takeProfit := types.Order{Symbol: "BTC-USD", Price: 110000, Size: 0.1, ReduceOnly: true,
		OrderType: types.Trigger{IsMarket: true, TriggerPx: 110000}}
	stopLoss := types.Order{Symbol: "BTC-USD", Price: 90000, Size: 0.1, ReduceOnly: true,
		OrderType: types.Trigger{IsMarket: true, TriggerPx: 90000}}

	tx, err := s.SignGroup([]types.OrderItem{entry, takeProfit, stopLoss}, Nonce(1))
	require.NoError(t, err)
	assert.Contains(t, string(tx.Action), `"type":"group"`)
	assert.Contains(t, string(tx.Action), `"triggerPx":90000`)
}

func TestSignGroup_Empty(t *testing.T) {
	_, err := New(testKeypair(t)).SignGroup(nil, Nonce(1))
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "orders", verr.Field)
}

func TestSignGroup_FailFast(t *testing.T) {
	items := orderBatch(3)
	items[2] = types.Cancel{Symbol: "BTC-USD"}
	_, err := New(testKeypair(t)).SignGroup(items, Nonce(1))
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), "orders[2]")
}

// ============================================================================
// Other actions
// ============================================================================

func TestSignFaucet(t *testing.T) {
	kp := testKeypair(t)
	tx, err := New(kp).SignFaucet(Nonce(3))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"faucet"}`, string(tx.Action))
	assertOrderID(t, tx, types.Faucet{}, kp.PublicKey(), kp.PublicKey(), 3)
}

func TestSignAgentWallet(t *testing.T) {
	kp := testKeypair(t)
	agent := crypto.GenerateKeypair().PublicKey()

	tx, err := New(kp).SignAgentWallet(agent, false, Nonce(4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"agentWalletCreation","agent":"`+agent.String()+`","delete":false}`, string(tx.Action))
	assertOrderID(t, tx, types.AgentWallet{Agent: agent}, kp.PublicKey(), kp.PublicKey(), 4)

	revoke, err := New(kp).SignAgentWallet(agent, true, Nonce(4))
	require.NoError(t, err)
	assert.NotEqual(t, tx.OrderID, revoke.OrderID)

	_, err = New(kp).SignAgentWallet(crypto.PublicKey{}, false, Nonce(4))
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestSignUserSettings(t *testing.T) {
	kp := testKeypair(t)
	settings := []types.LeverageSetting{{Symbol: "BTC-USD", Leverage: 5}, {Symbol: "ETH-USD", Leverage: 3}}

	tx, err := New(kp).SignUserSettings(settings, Nonce(5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"updateUserSettings","maxLeverage":[["BTC-USD",5],["ETH-USD",3]]}`, string(tx.Action))

	// Order is significant.
	reversed, err := New(kp).SignUserSettings([]types.LeverageSetting{settings[1], settings[0]}, Nonce(5))
	require.NoError(t, err)
	assert.NotEqual(t, tx.OrderID, reversed.OrderID)

	_, err = New(kp).SignUserSettings([]types.LeverageSetting{{Symbol: "BTC-USD", Leverage: 0}}, Nonce(5))
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestWithAccount_AgentSignsForAccount(t *testing.T) {
	agent := testKeypair(t)
	account := crypto.GenerateKeypair().PublicKey()
	s := New(agent, WithAccount(account))

	tx, err := s.Sign(btcOrder(), Nonce(1))
	require.NoError(t, err)
	assert.Equal(t, account.String(), tx.Account)
	assert.Equal(t, agent.PublicKey().String(), tx.Signer)
	assert.Equal(t, account, s.Account())
	assertOrderID(t, tx, btcOrder(), account, agent.PublicKey(), 1)
}

// ============================================================================
// Construction
// ============================================================================

func TestFromBase58(t *testing.T) {
	kp := testKeypair(t)
	s, err := FromBase58(kp.Base58())
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey(), s.PublicKey())

	_, err = FromBase58("not base58 0OIl")
	assert.ErrorIs(t, err, types.ErrDecode)
}

func TestNewWithStrategyName(t *testing.T) {
	s, err := NewWithStrategyName(testKeypair(t), "counter")
	require.NoError(t, err)
	assert.Equal(t, nonce.Counter, s.NonceManager().Strategy())

	s, err = NewWithStrategyName(testKeypair(t), "highFrequency")
	require.NoError(t, err)
	assert.Equal(t, nonce.HighFrequency, s.NonceManager().Strategy())

	_, err = NewWithStrategyName(testKeypair(t), "sometimes")
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "strategy", verr.Field)
}

func TestNew_DefaultsToTimestamp(t *testing.T) {
	s := New(testKeypair(t))
	assert.Equal(t, nonce.Timestamp, s.NonceManager().Strategy())
}

func TestNew_SignersDoNotShareManagers(t *testing.T) {
	kp := testKeypair(t)
	a := New(kp, WithStrategy(nonce.Counter))
	b := New(kp, WithStrategy(nonce.Counter))
	a.NonceManager().Next()
	assert.Equal(t, uint64(1), b.NonceManager().Next())
}

func TestSign_ZeroizedKey(t *testing.T) {
	kp := testKeypair(t)
	s := New(kp)
	kp.Zeroize()

	_, err := s.Sign(btcOrder(), Nonce(1))
	assert.ErrorIs(t, err, types.ErrSigning)
}

// ============================================================================
// Inputs
// ============================================================================

func TestSignInput(t *testing.T) {
	s := New(testKeypair(t))
	symbol, isBuy, price, size := "BTC-USD", true, 100000.0, 0.1
	in := types.OrderInput{Type: "order", Symbol: &symbol, IsBuy: &isBuy, Price: &price, Size: &size}

	fromInput, err := s.SignInput(in, Nonce(42))
	require.NoError(t, err)
	direct, err := s.Sign(btcOrder(), Nonce(42))
	require.NoError(t, err)
	assert.Equal(t, direct, fromInput)

	in.Price = nil
	_, err = s.SignInput(in, Nonce(42))
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), "price")
}

func TestSignAllInputs_FailFast(t *testing.T) {
	s := New(testKeypair(t))
	sym := "BTC-USD"
	bad := "0OIl"
	inputs := []types.OrderInput{
		{Type: "cancelAll"},
		{Type: "cancel", Symbol: &sym, OrderID: &bad},
	}
	txs, err := s.SignAllInputs(inputs, Nonce(1))
	assert.Nil(t, txs)
	assert.ErrorIs(t, err, types.ErrDecode)

	txs, err = s.SignAllInputs(inputs[:1], Nonce(1))
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestSignGroupInputs(t *testing.T) {
	s := New(testKeypair(t))
	tx, err := s.SignGroupInputs([]types.OrderInput{{Type: "cancelAll", Symbols: []string{"BTC-USD"}}}, Nonce(1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"group","orders":[{"type":"cancelAll","symbols":["BTC-USD"]}]}`, string(tx.Action))
}

// assertOrderID checks tx against an independent encoding of the inputs.
func assertOrderID(t *testing.T, tx *types.SignedTransaction, action types.Action, account, signer crypto.PublicKey, n uint64) {
	t.Helper()
	msg, err := codec.Encode(action, account, signer, n)
	require.NoError(t, err)
	assert.Equal(t, codec.ComputeOrderID(msg).String(), tx.OrderID)

	sig, err := crypto.SignatureFromBase58(tx.Signature)
	require.NoError(t, err)
	assert.True(t, sig.Verify(signer, msg), "signature must verify over the canonical bytes")
}

// ============================================================================
// Benchmarks
// ============================================================================

func BenchmarkSign(b *testing.B) {
	s := New(testKeypair(b))
	order := btcOrder()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Sign(order, Nonce(uint64(i))); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSignAll_100(b *testing.B) {
	s := New(testKeypair(b))
	items := orderBatch(100)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SignAll(items, Nonce(uint64(i*100))); err != nil {
			b.Fatal(err)
		}
	}
}
