package signer

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/bulk-keychain/crypto"
	"github.com/blockberries/bulk-keychain/types"
)

// Finalize pairs sig with a prepared message. It does not re-encode and does
// not verify: the caller must have signed exactly prepared.MessageBytes.
// Use FinalizeVerified to check the signature first.
func Finalize(prepared *types.PreparedMessage, sig crypto.Signature) *types.SignedTransaction {
	action := make([]byte, len(prepared.Action))
	copy(action, prepared.Action)
	return &types.SignedTransaction{
		Action:    action,
		Account:   prepared.Account.String(),
		Signer:    prepared.Signer.String(),
		Signature: sig.String(),
		OrderID:   prepared.OrderID.String(),
	}
}

// FinalizeBase58 is Finalize for a base58 signature, as returned by browser
// wallets.
func FinalizeBase58(prepared *types.PreparedMessage, sig string) (*types.SignedTransaction, error) {
	decoded, err := crypto.SignatureFromBase58(sig)
	if err != nil {
		return nil, err
	}
	return Finalize(prepared, decoded), nil
}

// FinalizeVerified checks sig over the prepared bytes against the prepared
// signer key before finalizing.
func FinalizeVerified(prepared *types.PreparedMessage, sig crypto.Signature) (*types.SignedTransaction, error) {
	if !solana.Signature(sig).Verify(solana.PublicKey(prepared.Signer), prepared.MessageBytes) {
		return nil, fmt.Errorf("%w: signer %s", ErrSignatureInvalid, prepared.Signer)
	}
	return Finalize(prepared, sig), nil
}

// SignPrepared signs a prepared message with wallet and finalizes it. The
// wallet's key must be the prepared signer.
func SignPrepared(prepared *types.PreparedMessage, wallet crypto.Signer) (*types.SignedTransaction, error) {
	if wallet.PublicKey() != prepared.Signer {
		return nil, fmt.Errorf("%w: wallet %s, prepared %s", ErrSignerMismatch, wallet.PublicKey(), prepared.Signer)
	}
	sig, err := wallet.Sign(prepared.MessageBytes)
	if err != nil {
		if errors.Is(err, types.ErrSigning) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", types.ErrSigning, err)
	}
	return Finalize(prepared, sig), nil
}
