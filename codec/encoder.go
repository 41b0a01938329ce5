// Package codec implements the canonical binary encoding of BULK actions.
//
// The layout is a frozen wire contract: the exchange verifies signatures and
// recomputes order ids over exactly these bytes. All integers are little
// endian, strings and vectors carry a u64 length prefix, enum discriminants
// are u32, options are a 0x00/0x01 presence byte followed by the value.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	bin "github.com/gagliardetto/binary"

	"github.com/blockberries/bulk-keychain/crypto"
	"github.com/blockberries/bulk-keychain/types"
)

// Version is the canonical layout version. Any change to the byte layout
// must bump it and regenerate the test vectors.
const Version = 1

// Action discriminants.
const (
	TagOrder uint32 = iota
	TagCancel
	TagCancelAll
	TagGroup
	TagUserSettings
	TagAgentWallet
	TagFaucet
)

// OrderType discriminants.
const (
	TagLimit uint32 = iota
	TagTrigger
)

var le = binary.LittleEndian

// Encode returns the canonical bytes of a transaction:
// action || account || signer || nonce.
// These are the bytes that are signed and hashed into the order id.
func Encode(action types.Action, account, signer crypto.PublicKey, nonce uint64) ([]byte, error) {
	buf := encodeBuffers.Get()
	defer encodeBuffers.Put(buf)

	e := newEncoder(buf)
	e.action(action)
	e.pubkey(account)
	e.pubkey(signer)
	e.u64(nonce)
	if e.err != nil {
		return nil, e.err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// EncodeAction returns the canonical bytes of the action alone.
func EncodeAction(action types.Action) ([]byte, error) {
	buf := encodeBuffers.Get()
	defer encodeBuffers.Put(buf)

	e := newEncoder(buf)
	e.action(action)
	if e.err != nil {
		return nil, e.err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// ComputeOrderID returns SHA-256 of already-encoded canonical bytes.
func ComputeOrderID(message []byte) crypto.Hash {
	return crypto.HashBytes(message)
}

// encoder wraps a binary encoder with a sticky error, so a failed write
// stops all later writes.
type encoder struct {
	enc *bin.Encoder
	err error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{enc: bin.NewBinEncoder(w)}
}

func (e *encoder) fail(format string, args ...any) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s", types.ErrEncoding, fmt.Sprintf(format, args...))
	}
}

func (e *encoder) check(err error) {
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%w: %v", types.ErrEncoding, err)
	}
}

func (e *encoder) u32(v uint32) {
	if e.err == nil {
		e.check(e.enc.WriteUint32(v, le))
	}
}

func (e *encoder) u64(v uint64) {
	if e.err == nil {
		e.check(e.enc.WriteUint64(v, le))
	}
}

func (e *encoder) boolean(v bool) {
	if e.err == nil {
		e.check(e.enc.WriteBool(v))
	}
}

// f64 writes IEEE-754 bits. -0.0 is written as +0.0; NaN and infinities
// have no canonical form and fail.
func (e *encoder) f64(field string, v float64) {
	if e.err != nil {
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		e.fail("%s is not finite: %v", field, v)
		return
	}
	e.check(e.enc.WriteFloat64(types.CanonicalFloat(v), le))
}

// str writes the UTF-8 bytes as given. Text is never normalized.
func (e *encoder) str(s string) {
	e.u64(uint64(len(s)))
	if e.err == nil && len(s) > 0 {
		e.check(e.enc.WriteBytes([]byte(s), false))
	}
}

func (e *encoder) raw32(b [32]byte) {
	if e.err == nil {
		e.check(e.enc.WriteBytes(b[:], false))
	}
}

func (e *encoder) pubkey(k crypto.PublicKey) { e.raw32(k) }

func (e *encoder) hash(h crypto.Hash) { e.raw32(h) }

func (e *encoder) action(a types.Action) {
	switch a := a.(type) {
	case types.Order:
		e.u32(TagOrder)
		e.order(a)
	case types.Cancel:
		e.u32(TagCancel)
		e.str(a.Symbol)
		e.hash(a.OrderID)
	case types.CancelAll:
		e.u32(TagCancelAll)
		e.u64(uint64(len(a.Symbols)))
		for _, s := range a.Symbols {
			e.str(s)
		}
	case types.Group:
		e.u32(TagGroup)
		e.u64(uint64(len(a.Items)))
		for _, item := range a.Items {
			if item == nil {
				e.fail("nil group item")
				return
			}
			e.action(item)
		}
	case types.UserSettings:
		e.u32(TagUserSettings)
		e.u64(uint64(len(a.MaxLeverage)))
		for _, s := range a.MaxLeverage {
			e.str(s.Symbol)
			e.f64("maxLeverage.leverage", s.Leverage)
		}
	case types.AgentWallet:
		e.u32(TagAgentWallet)
		e.pubkey(a.Agent)
		e.boolean(a.Delete)
	case types.Faucet:
		e.u32(TagFaucet)
	default:
		e.fail("unsupported action %T", a)
	}
}

func (e *encoder) order(o types.Order) {
	e.str(o.Symbol)
	e.boolean(o.IsBuy)
	e.f64("order.price", o.Price)
	e.f64("order.size", o.Size)
	e.boolean(o.ReduceOnly)
	e.orderType(o.EffectiveOrderType())
	if o.ClientID == nil {
		e.boolean(false)
	} else {
		e.boolean(true)
		e.hash(*o.ClientID)
	}
}

func (e *encoder) orderType(ot types.OrderType) {
	switch ot := ot.(type) {
	case types.Limit:
		if !ot.TIF.Valid() {
			e.fail("invalid time in force %d", uint32(ot.TIF))
			return
		}
		e.u32(TagLimit)
		e.u32(uint32(ot.TIF))
	case types.Trigger:
		e.u32(TagTrigger)
		e.boolean(ot.IsMarket)
		e.f64("orderType.triggerPx", ot.TriggerPx)
	default:
		e.fail("unsupported order type %T", ot)
	}
}
