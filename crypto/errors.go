package crypto

import (
	"errors"
	"fmt"
)

// Decode errors. Every error in this group satisfies errors.Is(err, ErrDecode).
var (
	// ErrDecode is the root of all key, hash and signature decoding failures.
	ErrDecode = errors.New("decode error")

	// ErrInvalidBase58 is returned when text is not valid base58.
	ErrInvalidBase58 = fmt.Errorf("%w: invalid base58", ErrDecode)

	// ErrInvalidLength is returned when decoded material has the wrong byte length.
	ErrInvalidLength = fmt.Errorf("%w: invalid length", ErrDecode)

	// ErrKeyMismatch is returned when a 64-byte keypair embeds a public key
	// that is not the one derived from its seed.
	ErrKeyMismatch = fmt.Errorf("%w: embedded public key does not match seed", ErrDecode)
)

// Signing errors.
var (
	// ErrSigning is returned when the signing primitive cannot produce a signature.
	// It is unreachable for a live, well-formed Keypair.
	ErrSigning = errors.New("signing error")

	// ErrKeyZeroized is returned when signing with a keypair after Zeroize.
	ErrKeyZeroized = fmt.Errorf("%w: keypair has been zeroized", ErrSigning)
)
