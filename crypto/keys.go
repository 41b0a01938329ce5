// Package crypto provides the key material and fixed-length identifiers used
// to sign BULK transactions.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/mr-tron/base58"
)

// Keypair serialization sizes.
const (
	// SeedSize is the size of the secret seed.
	SeedSize = ed25519.SeedSize

	// KeypairSize is the size of the full form: seed || public key.
	KeypairSize = ed25519.PrivateKeySize
)

// Zeroize securely overwrites a byte slice with zeros.
//
// subtle.XORBytes(b, b, b) cannot be optimized away as a dead store, and
// runtime.KeepAlive keeps b live until after the write.
func Zeroize(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.XORBytes(b, b, b)
	runtime.KeepAlive(b)
}

// Keypair is an Ed25519 signing key. It is immutable after construction
// (apart from Zeroize) and safe for concurrent Sign calls.
type Keypair struct {
	// key is the 64-byte seed || public key form.
	key    ed25519.PrivateKey
	public PublicKey
	zeroed atomic.Bool
}

func newKeypair(seed []byte) *Keypair {
	key := ed25519.NewKeyFromSeed(seed)
	kp := &Keypair{key: key}
	copy(kp.public[:], key[SeedSize:])
	return kp
}

// GenerateKeypair draws a random 32-byte seed from crypto/rand.
func GenerateKeypair() *Keypair {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	defer Zeroize(seed)
	return newKeypair(seed)
}

// KeypairFromBytes accepts either the 32-byte seed or the 64-byte full form.
// For the full form, the embedded public key must match the one derived from
// the seed; a mismatch is ErrKeyMismatch.
// The caller should zero data after this call returns if it is sensitive.
func KeypairFromBytes(data []byte) (*Keypair, error) {
	switch len(data) {
	case SeedSize:
		return newKeypair(data), nil
	case KeypairSize:
		kp := newKeypair(data[:SeedSize])
		if subtle.ConstantTimeCompare(kp.public[:], data[SeedSize:]) != 1 {
			kp.Zeroize()
			return nil, ErrKeyMismatch
		}
		return kp, nil
	default:
		return nil, fmt.Errorf("%w: keypair must be %d or %d bytes, got %d",
			ErrInvalidLength, SeedSize, KeypairSize, len(data))
	}
}

// KeypairFromBase58 parses the base58 form of either the seed or the full keypair.
func KeypairFromBase58(s string) (*Keypair, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty keypair", ErrInvalidBase58)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: keypair: %v", ErrInvalidBase58, err)
	}
	defer Zeroize(raw)
	return KeypairFromBytes(raw)
}

// PublicKey returns the derived public key.
func (k *Keypair) PublicKey() PublicKey {
	return k.public
}

// Bytes returns a copy of the 64-byte full form, regardless of which form
// the keypair was constructed from.
// WARNING: contains secret material.
func (k *Keypair) Bytes() []byte {
	out := make([]byte, KeypairSize)
	copy(out, k.key)
	return out
}

// Base58 returns the base58 text of the 64-byte full form.
// WARNING: contains secret material.
func (k *Keypair) Base58() string {
	return base58.Encode(k.key)
}

// SecretBytes returns a copy of the 32-byte seed.
// WARNING: contains secret material.
func (k *Keypair) SecretBytes() []byte {
	out := make([]byte, SeedSize)
	copy(out, k.key.Seed())
	return out
}

// Sign produces a deterministic Ed25519 signature over message.
func (k *Keypair) Sign(message []byte) (Signature, error) {
	var sig Signature
	if k.zeroed.Load() {
		return sig, ErrKeyZeroized
	}
	copy(sig[:], ed25519.Sign(k.key, message))
	return sig, nil
}

// Clone returns an independent copy of the keypair.
func (k *Keypair) Clone() *Keypair {
	key := make(ed25519.PrivateKey, KeypairSize)
	copy(key, k.key)
	c := &Keypair{key: key, public: k.public}
	c.zeroed.Store(k.zeroed.Load())
	return c
}

// Zeroize overwrites the secret material. The keypair cannot sign afterwards.
func (k *Keypair) Zeroize() {
	k.zeroed.Store(true)
	Zeroize(k.key)
}

// String identifies the keypair by its public key only.
func (k *Keypair) String() string {
	return "Keypair(" + k.public.String() + ")"
}
