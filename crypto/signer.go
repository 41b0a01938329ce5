package crypto

// Signer is the interface for signing operations.
// Implementations must never expose private key material through it.
//
// Keypair implements Signer; so can an external wallet adapter that forwards
// bytes to a device or browser extension.
type Signer interface {
	// PublicKey returns the public key signatures verify against.
	PublicKey() PublicKey

	// Sign signs message as-is (no pre-hashing) and returns the signature.
	Sign(message []byte) (Signature, error)
}

var _ Signer = (*Keypair)(nil)

// Verify checks sig over message against pub.
func Verify(pub PublicKey, message []byte, sig Signature) bool {
	return sig.Verify(pub, message)
}
