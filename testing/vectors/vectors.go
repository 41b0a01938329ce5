// Package vectors provides cross-implementation test vectors for the
// bulk-keychain canonical encoding.
//
// Every conforming implementation, in any language, must turn each vector's
// input into exactly the expected canonical bytes, order id and signature.
// The vectors are frozen: a change in any expected value is a wire break.
//
// SECURITY: Test vectors use well-known test keys. NEVER use these keys in production.
package vectors

import (
	"encoding/hex"
	"encoding/json"

	"github.com/blockberries/bulk-keychain/types"
)

// TestVectorFile is the root structure of the test vector JSON file.
type TestVectorFile struct {
	// Version of the test vector format.
	Version string `json:"version"`

	// Description of this test vector file.
	Description string `json:"description"`

	// Vectors is the list of test vectors.
	Vectors []TestVector `json:"vectors"`
}

// TestVector represents a single test case for cross-implementation testing.
type TestVector struct {
	// Name is a unique identifier for this test vector.
	Name string `json:"name"`

	// Description explains what this test vector tests.
	Description string `json:"description"`

	// Category groups related test vectors (serialization, algorithm, edge_case).
	Category string `json:"category"`

	// Input contains the action and transaction metadata.
	Input TestVectorInput `json:"input"`

	// Expected contains the expected outputs.
	Expected TestVectorExpected `json:"expected"`
}

// TestVectorInput describes one transaction.
//
// Action selects which of the remaining fields apply:
//   - order, cancel, cancelAll: Items holds exactly one item
//   - group: Items holds the group members in order
//   - updateUserSettings: MaxLeverage
//   - agentWalletCreation: Agent and Delete
//   - faucet: nothing
type TestVectorInput struct {
	Action string `json:"action"`

	Items []types.OrderInput `json:"items,omitempty"`

	MaxLeverage []types.LeverageSetting `json:"max_leverage,omitempty"`

	// Agent is the base58 agent wallet key.
	Agent string `json:"agent,omitempty"`

	Delete bool `json:"delete,omitempty"`

	// Account is the base58 trading account.
	Account string `json:"account"`

	// Signer is the base58 signing key. It is always the well-known test key.
	Signer string `json:"signer"`

	// Nonce as a decimal string, so 64-bit values survive JSON parsers
	// that read numbers as doubles.
	Nonce string `json:"nonce"`
}

// TestVectorExpected contains the expected outputs for a test vector.
type TestVectorExpected struct {
	// Message is the canonical transaction bytes, hex in JSON.
	Message HexBytes `json:"message_hex"`

	// OrderID is base58(SHA-256(message)).
	OrderID string `json:"order_id"`

	// Signature is the well-known key's signature over the message.
	Signature TestVectorSignature `json:"signature"`
}

// TestVectorSignature contains signature data for verification.
type TestVectorSignature struct {
	// PublicKey is the base58 Ed25519 public key.
	PublicKey string `json:"public_key"`

	// Signature is the base58 Ed25519 signature.
	Signature string `json:"signature"`
}

// HexBytes is a byte slice that marshals to/from hex in JSON.
type HexBytes []byte

// MarshalJSON implements json.Marshaler.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}
