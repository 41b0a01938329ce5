package types

import (
	"fmt"
	"strings"

	"github.com/blockberries/bulk-keychain/crypto"
)

// OrderInput is the loosely-typed order-family input accepted from bindings
// and JSON callers. Which fields are required depends on Type.
type OrderInput struct {
	Type       string          `json:"type"`
	Symbol     *string         `json:"symbol,omitempty"`
	IsBuy      *bool           `json:"isBuy,omitempty"`
	Price      *float64        `json:"price,omitempty"`
	Size       *float64        `json:"size,omitempty"`
	ReduceOnly *bool           `json:"reduceOnly,omitempty"`
	OrderType  *OrderTypeInput `json:"orderType,omitempty"`
	ClientID   *string         `json:"clientId,omitempty"`
	OrderID    *string         `json:"orderId,omitempty"`
	Symbols    []string        `json:"symbols,omitempty"`
}

// OrderTypeInput is the loosely-typed order type. Type is "limit", "trigger"
// or "market".
type OrderTypeInput struct {
	Type      string   `json:"type"`
	TIF       *string  `json:"tif,omitempty"`
	IsMarket  *bool    `json:"isMarket,omitempty"`
	TriggerPx *float64 `json:"triggerPx,omitempty"`
}

// ToOrderType converts the input. A limit without tif is GTC; a trigger or
// market without isMarket is a market trigger, and without triggerPx uses 0.
func (in OrderTypeInput) ToOrderType() (OrderType, error) {
	var ot OrderType
	switch strings.ToLower(in.Type) {
	case "limit":
		tif := GTC
		if in.TIF != nil {
			parsed, err := ParseTimeInForce(*in.TIF)
			if err != nil {
				return nil, err
			}
			tif = parsed
		}
		ot = Limit{TIF: tif}
	case "trigger", "market":
		t := Trigger{IsMarket: true}
		if in.IsMarket != nil {
			t.IsMarket = *in.IsMarket
		}
		if in.TriggerPx != nil {
			t.TriggerPx = *in.TriggerPx
		}
		ot = t
	default:
		return nil, NewValidationError("orderType.type", "invalid order type %q", in.Type)
	}
	if err := ot.Validate(); err != nil {
		return nil, err
	}
	return ot, nil
}

// ToOrderItem converts the input into a validated OrderItem.
func (in OrderInput) ToOrderItem() (OrderItem, error) {
	var item OrderItem
	switch ActionType(in.Type) {
	case ActionOrder:
		order, err := in.toOrder()
		if err != nil {
			return nil, err
		}
		item = order
	case ActionCancel:
		if in.Symbol == nil {
			return nil, requiredError("cancel.symbol")
		}
		if in.OrderID == nil {
			return nil, requiredError("cancel.orderId")
		}
		id, err := crypto.HashFromBase58(*in.OrderID)
		if err != nil {
			return nil, fmt.Errorf("invalid cancel.orderId: %w", err)
		}
		item = Cancel{Symbol: *in.Symbol, OrderID: id}
	case ActionCancelAll:
		item = CancelAll{Symbols: append([]string(nil), in.Symbols...)}
	default:
		return nil, NewValidationError("type", "invalid order item type %q", in.Type)
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (in OrderInput) toOrder() (Order, error) {
	switch {
	case in.Symbol == nil:
		return Order{}, requiredError("order.symbol")
	case in.IsBuy == nil:
		return Order{}, requiredError("order.isBuy")
	case in.Price == nil:
		return Order{}, requiredError("order.price")
	case in.Size == nil:
		return Order{}, requiredError("order.size")
	}

	order := Order{
		Symbol:    *in.Symbol,
		IsBuy:     *in.IsBuy,
		Price:     *in.Price,
		Size:      *in.Size,
		OrderType: DefaultOrderType,
	}
	if in.ReduceOnly != nil {
		order.ReduceOnly = *in.ReduceOnly
	}
	if in.OrderType != nil {
		ot, err := in.OrderType.ToOrderType()
		if err != nil {
			return Order{}, err
		}
		order.OrderType = ot
	}
	if in.ClientID != nil {
		id, err := crypto.HashFromBase58(*in.ClientID)
		if err != nil {
			return Order{}, fmt.Errorf("invalid order.clientId: %w", err)
		}
		order.ClientID = &id
	}
	return order, nil
}

// OrderItemsFromInputs converts every input, stopping at the first failure.
// On error no items are returned.
func OrderItemsFromInputs(inputs []OrderInput) ([]OrderItem, error) {
	items := make([]OrderItem, len(inputs))
	for i, in := range inputs {
		item, err := in.ToOrderItem()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items[i] = item
	}
	return items, nil
}

// PrepareOptions carries the metadata for preparing a message for an
// external wallet. Signer defaults to Account; Nonce defaults to the
// preparer's nonce manager.
type PrepareOptions struct {
	Account crypto.PublicKey
	Signer  *crypto.PublicKey
	Nonce   *uint64
}

// EffectiveSigner returns Signer, or Account when Signer is unset.
func (o PrepareOptions) EffectiveSigner() crypto.PublicKey {
	if o.Signer != nil {
		return *o.Signer
	}
	return o.Account
}

// PrepareOptionsInput is the text form of PrepareOptions.
type PrepareOptionsInput struct {
	Account string  `json:"account"`
	Signer  *string `json:"signer,omitempty"`
	Nonce   *uint64 `json:"nonce,omitempty"`
}

// ToPrepareOptions decodes the account and signer keys.
func (in PrepareOptionsInput) ToPrepareOptions() (PrepareOptions, error) {
	account, err := crypto.PublicKeyFromBase58(in.Account)
	if err != nil {
		return PrepareOptions{}, fmt.Errorf("invalid account: %w", err)
	}
	opts := PrepareOptions{Account: account, Nonce: in.Nonce}
	if in.Signer != nil {
		signer, err := crypto.PublicKeyFromBase58(*in.Signer)
		if err != nil {
			return PrepareOptions{}, fmt.Errorf("invalid signer: %w", err)
		}
		opts.Signer = &signer
	}
	return opts, nil
}
