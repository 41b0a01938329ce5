package types

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/blockberries/bulk-keychain/crypto"
)

// SignedTransaction is a signed action ready for submission.
type SignedTransaction struct {
	// Action is the JSON shape of the signed action.
	Action json.RawMessage `json:"action"`

	// Account is the base58 trading account.
	Account string `json:"account"`

	// Signer is the base58 key that produced Signature.
	Signer string `json:"signer"`

	// Signature is the base58 Ed25519 signature over the canonical bytes.
	Signature string `json:"signature"`

	// OrderID is base58(SHA-256(canonical bytes)).
	OrderID string `json:"orderId,omitempty"`
}

// PreparedMessage holds the canonical bytes an external wallet must sign,
// together with everything needed to assemble the SignedTransaction later.
//
// INVARIANT: OrderID == SHA-256(MessageBytes), and MessageBytes are exactly
// the bytes a direct signer would sign for the same inputs.
type PreparedMessage struct {
	MessageBytes []byte
	OrderID      crypto.Hash
	Action       json.RawMessage
	Account      crypto.PublicKey
	Signer       crypto.PublicKey
	Nonce        uint64
}

// MessageBase58 returns the base58 view of MessageBytes.
func (p *PreparedMessage) MessageBase58() string {
	return base58.Encode(p.MessageBytes)
}

// MessageBase64 returns the standard base64 view of MessageBytes.
func (p *PreparedMessage) MessageBase64() string {
	return base64.StdEncoding.EncodeToString(p.MessageBytes)
}

// MessageHex returns the lowercase hex view of MessageBytes.
func (p *PreparedMessage) MessageHex() string {
	return hex.EncodeToString(p.MessageBytes)
}

type preparedMessageJSON struct {
	MessageBytes  []byte           `json:"messageBytes"`
	MessageBase58 string           `json:"messageBase58"`
	MessageBase64 string           `json:"messageBase64"`
	MessageHex    string           `json:"messageHex"`
	OrderID       crypto.Hash      `json:"orderId"`
	Action        json.RawMessage  `json:"action"`
	Account       crypto.PublicKey `json:"account"`
	Signer        crypto.PublicKey `json:"signer"`
	Nonce         uint64           `json:"nonce"`
}

// MarshalJSON renders the message with all three text views of the bytes.
func (p *PreparedMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(preparedMessageJSON{
		MessageBytes:  p.MessageBytes,
		MessageBase58: p.MessageBase58(),
		MessageBase64: p.MessageBase64(),
		MessageHex:    p.MessageHex(),
		OrderID:       p.OrderID,
		Action:        p.Action,
		Account:       p.Account,
		Signer:        p.Signer,
		Nonce:         p.Nonce,
	})
}

// UnmarshalJSON restores a message. The text views are derived, so they must
// agree with messageBytes when present.
func (p *PreparedMessage) UnmarshalJSON(data []byte) error {
	var raw preparedMessageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	msg := PreparedMessage{
		MessageBytes: raw.MessageBytes,
		OrderID:      raw.OrderID,
		Action:       raw.Action,
		Account:      raw.Account,
		Signer:       raw.Signer,
		Nonce:        raw.Nonce,
	}
	if raw.MessageHex != "" && raw.MessageHex != msg.MessageHex() {
		return fmt.Errorf("%w: messageHex does not match messageBytes", ErrDecode)
	}
	if raw.MessageBase58 != "" && raw.MessageBase58 != msg.MessageBase58() {
		return fmt.Errorf("%w: messageBase58 does not match messageBytes", ErrDecode)
	}
	if raw.MessageBase64 != "" && raw.MessageBase64 != msg.MessageBase64() {
		return fmt.Errorf("%w: messageBase64 does not match messageBytes", ErrDecode)
	}
	*p = msg
	return nil
}
