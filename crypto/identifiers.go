package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/mr-tron/base58"
)

// Sizes of the fixed-length binary identifiers.
const (
	// PublicKeySize is the size of an Ed25519 public key.
	PublicKeySize = ed25519.PublicKeySize

	// HashSize is the size of a SHA-256 content hash.
	HashSize = sha256.Size

	// SignatureSize is the size of an Ed25519 signature.
	SignatureSize = ed25519.SignatureSize
)

// PublicKey is a 32-byte Ed25519 public key. Its text form is base58.
// Equality is byte-wise; PublicKey is comparable and usable as a map key.
type PublicKey [PublicKeySize]byte

// Hash is a 32-byte content hash or client correlation id. It shares the
// base58 text form with PublicKey but is a distinct type, so a hash can
// never be passed where a key is expected.
type Hash [HashSize]byte

// Signature is a 64-byte Ed25519 signature. Its text form is base58.
type Signature [SignatureSize]byte

// decodeFixed decodes base58 text that must decode to exactly size bytes.
func decodeFixed(s string, size int, what string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty %s", ErrInvalidBase58, what)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBase58, what, err)
	}
	if len(raw) != size {
		return nil, fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidLength, what, size, len(raw))
	}
	return raw, nil
}

// PublicKeyFromBytes copies a 32-byte slice into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidLength, PublicKeySize, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// PublicKeyFromBase58 parses the base58 text form of a public key.
func PublicKeyFromBase58(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := decodeFixed(s, PublicKeySize, "public key")
	if err != nil {
		return pk, err
	}
	copy(pk[:], raw)
	return pk, nil
}

// Bytes returns a copy of the key bytes.
func (k PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, k[:])
	return out
}

// String returns the base58 text form.
func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// Equals compares two keys in constant time.
func (k PublicKey) Equals(other PublicKey) bool {
	return subtle.ConstantTimeCompare(k[:], other[:]) == 1
}

// IsZero reports whether the key is all zero bytes.
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PublicKey) UnmarshalText(text []byte) error {
	pk, err := PublicKeyFromBase58(string(text))
	if err != nil {
		return err
	}
	*k = pk
	return nil
}

// RandomHash draws a random hash from crypto/rand, for client order ids.
func RandomHash() Hash {
	var h Hash
	if _, err := rand.Read(h[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms.
		panic("crypto/rand failure: " + err.Error())
	}
	return h
}

// HashBytes returns SHA-256(data).
func HashBytes(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}

// HashFromBytes copies a 32-byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: hash must be %d bytes, got %d", ErrInvalidLength, HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashFromBase58 parses the base58 text form of a hash.
func HashFromBase58(s string) (Hash, error) {
	var h Hash
	raw, err := decodeFixed(s, HashSize, "hash")
	if err != nil {
		return h, err
	}
	copy(h[:], raw)
	return h, nil
}

// Bytes returns a copy of the hash bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// String returns the base58 text form.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// IsZero reports whether the hash is all zero bytes.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromBase58(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// SignatureFromBytes copies a 64-byte slice into a Signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureSize {
		return sig, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidLength, SignatureSize, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// SignatureFromBase58 parses the base58 text form of a signature.
func SignatureFromBase58(s string) (Signature, error) {
	var sig Signature
	raw, err := decodeFixed(s, SignatureSize, "signature")
	if err != nil {
		return sig, err
	}
	copy(sig[:], raw)
	return sig, nil
}

// Bytes returns a copy of the signature bytes.
func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureSize)
	copy(out, s[:])
	return out
}

// String returns the base58 text form.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

// Verify checks the signature over message against pub.
func (s Signature) Verify(pub PublicKey, message []byte) bool {
	return ed25519.Verify(pub[:], message, s[:])
}

// ValidatePublicKey reports whether s is the base58 form of a 32-byte key.
func ValidatePublicKey(s string) bool {
	_, err := PublicKeyFromBase58(s)
	return err == nil
}

// ValidateHash reports whether s is the base58 form of a 32-byte hash.
func ValidateHash(s string) bool {
	_, err := HashFromBase58(s)
	return err == nil
}
