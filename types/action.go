package types

import (
	"encoding/json"
	"fmt"

	"github.com/blockberries/bulk-keychain/crypto"
)

// ActionType is the "type" discriminator of an action's JSON shape.
type ActionType string

const (
	ActionOrder        ActionType = "order"
	ActionCancel       ActionType = "cancel"
	ActionCancelAll    ActionType = "cancelAll"
	ActionGroup        ActionType = "group"
	ActionUserSettings ActionType = "updateUserSettings"
	ActionAgentWallet  ActionType = "agentWalletCreation"
	ActionFaucet       ActionType = "faucet"
)

// Action is a signable intent. The set of implementations is closed:
// Order, Cancel, CancelAll, Group, UserSettings, AgentWallet and Faucet.
type Action interface {
	// ActionType returns the JSON discriminator.
	ActionType() ActionType

	// Validate checks field-level rules. A nil error means the action can
	// be encoded.
	Validate() error

	isAction()
}

// OrderItem is an order-family action: Order, Cancel or CancelAll.
// Only order items can be combined into a Group.
type OrderItem interface {
	Action
	isOrderItem()
}

// Cancel cancels one resting order.
type Cancel struct {
	Symbol  string
	OrderID crypto.Hash
}

// CancelAll cancels every resting order on the listed symbols.
// An empty list means all symbols.
type CancelAll struct {
	Symbols []string
}

// Group is an atomic batch of order items under one signature.
type Group struct {
	Items []OrderItem
}

// UserSettings updates per-symbol account settings. MaxLeverage is ordered.
type UserSettings struct {
	MaxLeverage []LeverageSetting
}

// AgentWallet authorizes (or with Delete, revokes) an agent key to sign
// on behalf of the account.
type AgentWallet struct {
	Agent  crypto.PublicKey
	Delete bool
}

// Faucet requests testnet funds.
type Faucet struct{}

var (
	_ OrderItem = Order{}
	_ OrderItem = Cancel{}
	_ OrderItem = CancelAll{}
	_ Action    = Group{}
	_ Action    = UserSettings{}
	_ Action    = AgentWallet{}
	_ Action    = Faucet{}
)

func (Order) isAction()        {}
func (Cancel) isAction()       {}
func (CancelAll) isAction()    {}
func (Group) isAction()        {}
func (UserSettings) isAction() {}
func (AgentWallet) isAction()  {}
func (Faucet) isAction()       {}

func (Order) isOrderItem()     {}
func (Cancel) isOrderItem()    {}
func (CancelAll) isOrderItem() {}

// ActionType implements Action.
func (Order) ActionType() ActionType { return ActionOrder }

// ActionType implements Action.
func (Cancel) ActionType() ActionType { return ActionCancel }

// ActionType implements Action.
func (CancelAll) ActionType() ActionType { return ActionCancelAll }

// ActionType implements Action.
func (Group) ActionType() ActionType { return ActionGroup }

// ActionType implements Action.
func (UserSettings) ActionType() ActionType { return ActionUserSettings }

// ActionType implements Action.
func (AgentWallet) ActionType() ActionType { return ActionAgentWallet }

// ActionType implements Action.
func (Faucet) ActionType() ActionType { return ActionFaucet }

// Validate implements Action.
func (c Cancel) Validate() error {
	if c.Symbol == "" {
		return NewValidationError("cancel.symbol", "must not be empty")
	}
	if c.OrderID.IsZero() {
		return requiredError("cancel.orderId")
	}
	return nil
}

// Validate implements Action.
func (c CancelAll) Validate() error {
	for i, s := range c.Symbols {
		if s == "" {
			return NewValidationError(fmt.Sprintf("cancelAll.symbols[%d]", i), "must not be empty")
		}
	}
	return nil
}

// Validate implements Action. A group must hold at least one item.
func (g Group) Validate() error {
	if len(g.Items) == 0 {
		return NewValidationError("orders", "must contain at least one order")
	}
	for i, item := range g.Items {
		if item == nil {
			return requiredError(fmt.Sprintf("orders[%d]", i))
		}
		if err := item.Validate(); err != nil {
			return fmt.Errorf("orders[%d]: %w", i, err)
		}
	}
	return nil
}

// Validate implements Action.
func (u UserSettings) Validate() error {
	for i, s := range u.MaxLeverage {
		if s.Symbol == "" {
			return NewValidationError(fmt.Sprintf("maxLeverage[%d].symbol", i), "must not be empty")
		}
		field := fmt.Sprintf("maxLeverage[%d].leverage", i)
		if err := checkFinite(field, s.Leverage); err != nil {
			return err
		}
		if s.Leverage <= 0 {
			return NewValidationError(field, "must be positive, got %v", s.Leverage)
		}
	}
	return nil
}

// Validate implements Action.
func (a AgentWallet) Validate() error {
	if a.Agent.IsZero() {
		return requiredError("agent")
	}
	return nil
}

// Validate implements Action. Faucet has no fields.
func (Faucet) Validate() error { return nil }

// MarshalJSON implements json.Marshaler.
func (c Cancel) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ActionType  `json:"type"`
		Symbol  string      `json:"symbol"`
		OrderID crypto.Hash `json:"orderId"`
	}{ActionCancel, c.Symbol, c.OrderID})
}

// MarshalJSON implements json.Marshaler. A nil symbol list renders as [].
func (c CancelAll) MarshalJSON() ([]byte, error) {
	symbols := c.Symbols
	if symbols == nil {
		symbols = []string{}
	}
	return json.Marshal(struct {
		Type    ActionType `json:"type"`
		Symbols []string   `json:"symbols"`
	}{ActionCancelAll, symbols})
}

// MarshalJSON implements json.Marshaler.
func (g Group) MarshalJSON() ([]byte, error) {
	items := g.Items
	if items == nil {
		items = []OrderItem{}
	}
	return json.Marshal(struct {
		Type   ActionType  `json:"type"`
		Orders []OrderItem `json:"orders"`
	}{ActionGroup, items})
}

// MarshalJSON implements json.Marshaler.
func (u UserSettings) MarshalJSON() ([]byte, error) {
	settings := u.MaxLeverage
	if settings == nil {
		settings = []LeverageSetting{}
	}
	return json.Marshal(struct {
		Type        ActionType        `json:"type"`
		MaxLeverage []LeverageSetting `json:"maxLeverage"`
	}{ActionUserSettings, settings})
}

// MarshalJSON implements json.Marshaler.
func (a AgentWallet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   ActionType       `json:"type"`
		Agent  crypto.PublicKey `json:"agent"`
		Delete bool             `json:"delete"`
	}{ActionAgentWallet, a.Agent, a.Delete})
}

// MarshalJSON implements json.Marshaler.
func (Faucet) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"faucet"}`), nil
}

// LeverageSetting is one (symbol, max leverage) pair. Its JSON form is the
// tuple ["BTC-USD", 5]; the object form {"symbol":..,"leverage":..} is also
// accepted on input.
type LeverageSetting struct {
	Symbol   string  `json:"symbol"`
	Leverage float64 `json:"leverage"`
}

// MarshalJSON renders the tuple form.
func (s LeverageSetting) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{s.Symbol, CanonicalFloat(s.Leverage)})
}

// UnmarshalJSON accepts the tuple or object form.
func (s *LeverageSetting) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err == nil {
		if len(tuple) != 2 {
			return NewValidationError("maxLeverage", "expected [symbol, leverage], got %d elements", len(tuple))
		}
		if err := json.Unmarshal(tuple[0], &s.Symbol); err != nil {
			return NewValidationError("maxLeverage.symbol", "%v", err)
		}
		if err := json.Unmarshal(tuple[1], &s.Leverage); err != nil {
			return NewValidationError("maxLeverage.leverage", "%v", err)
		}
		return nil
	}

	type object LeverageSetting
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return NewValidationError("maxLeverage", "%v", err)
	}
	*s = LeverageSetting(obj)
	return nil
}

// UserSettingsFromInput builds UserSettings from leverage pairs, validating them.
func UserSettingsFromInput(settings []LeverageSetting) (UserSettings, error) {
	u := UserSettings{MaxLeverage: append([]LeverageSetting(nil), settings...)}
	if err := u.Validate(); err != nil {
		return UserSettings{}, err
	}
	return u, nil
}
