// Package testing provides test utilities for bulk-keychain.
package testing

import (
	"bytes"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// EncodeFunc produces canonical bytes. It is typically a closure over
// codec.Encode with fixed inputs.
type EncodeFunc func() ([]byte, error)

// AssertEncodingDeterminism calls encode N times and asserts all outputs are
// byte-identical.
//
// SECURITY: a signature is only valid over the exact bytes the exchange
// rebuilds. Any drift between two encodings of the same action breaks
// verification and changes the order id.
//
// Usage:
//
//	func TestOrder_EncodingDeterminism(t *testing.T) {
//	    bktesting.AssertEncodingDeterminism(t, func() ([]byte, error) {
//	        return codec.Encode(order, account, signer, 42)
//	    }, 100)
//	}
func AssertEncodingDeterminism(t *testing.T, encode EncodeFunc, iterations int) {
	t.Helper()

	if iterations < 2 {
		t.Fatal("AssertEncodingDeterminism requires at least 2 iterations")
	}

	first, err := encode()
	require.NoError(t, err, "encode failed on first call")
	require.NotEmpty(t, first, "encode returned no bytes on first call")

	for i := 1; i < iterations; i++ {
		result, err := encode()
		require.NoError(t, err, "encode failed on iteration %d", i)
		if !bytes.Equal(first, result) {
			t.Fatalf("encode returned different bytes on iteration %d.\n"+
				"First: %s\n"+
				"Got:   %s",
				i, hex.EncodeToString(first), hex.EncodeToString(result))
		}
	}
}

// AssertEncodingDeterminismConcurrent runs encode from several goroutines
// and asserts every result equals a single-threaded reference. It catches
// state leaking between pooled encode buffers.
//
// A passing run does not prove thread-safety; combine with go test -race.
func AssertEncodingDeterminismConcurrent(t *testing.T, encode EncodeFunc, goroutines, iterationsPerGoroutine int) {
	t.Helper()

	if goroutines < 1 {
		t.Fatal("AssertEncodingDeterminismConcurrent requires at least 1 goroutine")
	}
	if iterationsPerGoroutine < 1 {
		t.Fatal("AssertEncodingDeterminismConcurrent requires at least 1 iteration per goroutine")
	}

	reference, err := encode()
	require.NoError(t, err, "encode failed on initial reference call")
	require.NotEmpty(t, reference, "encode returned no bytes on initial reference call")

	results := make(chan concurrentResult, goroutines*iterationsPerGoroutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for i := 0; i < iterationsPerGoroutine; i++ {
				data, err := encode()
				results <- concurrentResult{
					data:        data,
					err:         err,
					goroutineID: goroutineID,
					iteration:   i,
				}
			}
		}(g)
	}
	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			t.Fatalf("encode failed in goroutine %d, iteration %d: %v",
				r.goroutineID, r.iteration, r.err)
		}
		if !bytes.Equal(reference, r.data) {
			t.Fatalf("encode returned different bytes in goroutine %d, iteration %d.\n"+
				"Reference: %s\n"+
				"Got:       %s",
				r.goroutineID, r.iteration, hex.EncodeToString(reference), hex.EncodeToString(r.data))
		}
	}
}

// AssertSameBytes fails with a hex diff when got differs from want.
func AssertSameBytes(t *testing.T, want, got []byte) {
	t.Helper()
	if !bytes.Equal(want, got) {
		require.Failf(t, "byte mismatch",
			"want: %s\ngot:  %s", hex.EncodeToString(want), hex.EncodeToString(got))
	}
}

// concurrentResult holds the result of a single encode call during concurrent testing.
type concurrentResult struct {
	data        []byte
	err         error
	goroutineID int
	iteration   int
}
