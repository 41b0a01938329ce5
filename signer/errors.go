package signer

import (
	"fmt"

	"github.com/blockberries/bulk-keychain/types"
)

var (
	// ErrSignerMismatch is returned when an external signer's public key is
	// not the signer recorded in the prepared message.
	ErrSignerMismatch = fmt.Errorf("%w: signer key does not match prepared message", types.ErrSigning)

	// ErrSignatureInvalid is returned by FinalizeVerified when the signature
	// does not verify over the prepared bytes.
	ErrSignatureInvalid = fmt.Errorf("%w: signature does not verify against prepared message", types.ErrSigning)
)
