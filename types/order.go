package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/blockberries/bulk-keychain/crypto"
)

// TimeInForce controls how long a limit order rests on the book.
// The numeric values are the canonical encoding discriminants.
type TimeInForce uint32

const (
	// GTC rests until filled or cancelled.
	GTC TimeInForce = 0
	// IOC fills immediately what it can and cancels the rest.
	IOC TimeInForce = 1
	// ALO is add-liquidity-only (post-only).
	ALO TimeInForce = 2
)

// ParseTimeInForce parses "GTC", "IOC" or "ALO", ignoring case.
func ParseTimeInForce(s string) (TimeInForce, error) {
	switch strings.ToUpper(s) {
	case "GTC":
		return GTC, nil
	case "IOC":
		return IOC, nil
	case "ALO":
		return ALO, nil
	default:
		return 0, NewValidationError("orderType.tif", "invalid time in force %q", s)
	}
}

// Valid reports whether t is a known time in force.
func (t TimeInForce) Valid() bool {
	return t <= ALO
}

func (t TimeInForce) String() string {
	switch t {
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	case ALO:
		return "ALO"
	default:
		return fmt.Sprintf("TimeInForce(%d)", uint32(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeInForce) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, NewValidationError("orderType.tif", "invalid time in force %d", uint32(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeInForce) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeInForce(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// OrderType is either Limit or Trigger. The set is closed.
type OrderType interface {
	// Validate checks the variant's fields.
	Validate() error

	isOrderType()
}

// Limit is a resting limit order.
type Limit struct {
	TIF TimeInForce
}

// Trigger is a stop/take-profit order that activates at TriggerPx.
// IsMarket selects a market execution once triggered.
type Trigger struct {
	IsMarket  bool
	TriggerPx float64
}

func (Limit) isOrderType()   {}
func (Trigger) isOrderType() {}

// Validate implements OrderType.
func (l Limit) Validate() error {
	if !l.TIF.Valid() {
		return NewValidationError("orderType.tif", "invalid time in force %d", uint32(l.TIF))
	}
	return nil
}

// Validate implements OrderType.
func (t Trigger) Validate() error {
	return checkNonNegative("orderType.triggerPx", t.TriggerPx)
}

// MarshalJSON renders {"type":"limit","tif":"GTC"}.
func (l Limit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string      `json:"type"`
		TIF  TimeInForce `json:"tif"`
	}{"limit", l.TIF})
}

// MarshalJSON renders {"type":"trigger","isMarket":..,"triggerPx":..}.
func (t Trigger) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string  `json:"type"`
		IsMarket  bool    `json:"isMarket"`
		TriggerPx float64 `json:"triggerPx"`
	}{"trigger", t.IsMarket, CanonicalFloat(t.TriggerPx)})
}

// DefaultOrderType is Limit/GTC.
var DefaultOrderType OrderType = Limit{TIF: GTC}

// Order places a new order.
type Order struct {
	Symbol     string
	IsBuy      bool
	Price      float64
	Size       float64
	ReduceOnly bool
	// OrderType defaults to Limit/GTC when nil.
	OrderType OrderType
	// ClientID is an optional client correlation id.
	ClientID *crypto.Hash
}

// LimitOrder builds a limit order.
func LimitOrder(symbol string, isBuy bool, price, size float64, tif TimeInForce) Order {
	return Order{
		Symbol:    symbol,
		IsBuy:     isBuy,
		Price:     price,
		Size:      size,
		OrderType: Limit{TIF: tif},
	}
}

// MarketOrder builds a market order: a Trigger with IsMarket set and a zero
// trigger and limit price.
func MarketOrder(symbol string, isBuy bool, size float64) Order {
	return Order{
		Symbol:    symbol,
		IsBuy:     isBuy,
		Size:      size,
		OrderType: Trigger{IsMarket: true},
	}
}

// EffectiveOrderType returns OrderType, or DefaultOrderType when unset.
func (o Order) EffectiveOrderType() OrderType {
	if o.OrderType == nil {
		return DefaultOrderType
	}
	return o.OrderType
}

// WithClientID returns a copy of o carrying id.
func (o Order) WithClientID(id crypto.Hash) Order {
	o.ClientID = &id
	return o
}

// Validate checks the order's fields.
func (o Order) Validate() error {
	if o.Symbol == "" {
		return NewValidationError("order.symbol", "must not be empty")
	}
	if err := checkNonNegative("order.price", o.Price); err != nil {
		return err
	}
	if err := checkFinite("order.size", o.Size); err != nil {
		return err
	}
	if o.Size <= 0 {
		return NewValidationError("order.size", "must be positive, got %v", o.Size)
	}
	return o.EffectiveOrderType().Validate()
}

// MarshalJSON renders the order in its action shape.
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       ActionType   `json:"type"`
		Symbol     string       `json:"symbol"`
		IsBuy      bool         `json:"isBuy"`
		Price      float64      `json:"price"`
		Size       float64      `json:"size"`
		ReduceOnly bool         `json:"reduceOnly"`
		OrderType  OrderType    `json:"orderType"`
		ClientID   *crypto.Hash `json:"clientId,omitempty"`
	}{
		Type:       ActionOrder,
		Symbol:     o.Symbol,
		IsBuy:      o.IsBuy,
		Price:      CanonicalFloat(o.Price),
		Size:       CanonicalFloat(o.Size),
		ReduceOnly: o.ReduceOnly,
		OrderType:  o.EffectiveOrderType(),
		ClientID:   o.ClientID,
	})
}

// CanonicalFloat maps -0.0 to +0.0 and leaves every other value unchanged.
func CanonicalFloat(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}

func checkFinite(field string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NewValidationError(field, "must be finite, got %v", f)
	}
	return nil
}

func checkNonNegative(field string, f float64) error {
	if err := checkFinite(field, f); err != nil {
		return err
	}
	if f < 0 {
		return NewValidationError(field, "must not be negative, got %v", f)
	}
	return nil
}
