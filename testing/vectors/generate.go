package vectors

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/blockberries/bulk-keychain/codec"
	"github.com/blockberries/bulk-keychain/crypto"
	"github.com/blockberries/bulk-keychain/types"
)

// WellKnownTestKeys contains deterministic test keys for reproducible test vectors.
// SECURITY: These keys are for testing ONLY. Never use in production.
//
// All seeds are SHA-256 hashes of fixed seed strings, so any implementation
// can rebuild them without reading this package.
var WellKnownTestKeys = struct {
	// Seed is SHA-256("bulk-keychain-test-vector-seed-ed25519").
	Seed    []byte
	Signer  *crypto.Keypair
	Account crypto.PublicKey
	Agent   crypto.PublicKey

	// ClientID and OrderID are fixed ids used by order and cancel vectors.
	ClientID crypto.Hash
	OrderID  crypto.Hash
}{
	Seed:     derive("seed-ed25519"),
	Signer:   mustKeypair(derive("seed-ed25519")),
	Account:  mustKeypair(derive("seed-account")).PublicKey(),
	Agent:    mustKeypair(derive("seed-agent")).PublicKey(),
	ClientID: crypto.Hash(sha256.Sum256([]byte("bulk-keychain-test-vector-client-id"))),
	OrderID:  crypto.Hash(sha256.Sum256([]byte("bulk-keychain-test-vector-order-id"))),
}

const defaultNonce = 1700000000000

func derive(label string) []byte {
	sum := sha256.Sum256([]byte("bulk-keychain-test-vector-" + label))
	return sum[:]
}

func mustKeypair(seed []byte) *crypto.Keypair {
	kp, err := crypto.KeypairFromBytes(seed)
	if err != nil {
		panic("failed to derive test keypair: " + err.Error())
	}
	return kp
}

func ptr[T any](v T) *T { return &v }

// GenerateTestVectors creates the complete test vector file from the Go
// implementation.
func GenerateTestVectors() (*TestVectorFile, error) {
	var cases []TestVector
	cases = append(cases, serializationCases()...)
	cases = append(cases, algorithmCases()...)
	cases = append(cases, edgeCaseCases()...)

	vectors := make([]TestVector, len(cases))
	for i, c := range cases {
		expected, err := ComputeExpected(c.Input)
		if err != nil {
			return nil, fmt.Errorf("vector %s: %w", c.Name, err)
		}
		c.Expected = *expected
		vectors[i] = c
	}

	return &TestVectorFile{
		Version:     "1.0",
		Description: "Cross-implementation test vectors for the bulk-keychain canonical encoding",
		Vectors:     vectors,
	}, nil
}

// ComputeExpected encodes, hashes and signs the input with the well-known key.
func ComputeExpected(input TestVectorInput) (*TestVectorExpected, error) {
	action, err := BuildAction(input)
	if err != nil {
		return nil, err
	}
	account, signer, nonce, err := ParseMetadata(input)
	if err != nil {
		return nil, err
	}
	if !signer.Equals(WellKnownTestKeys.Signer.PublicKey()) {
		return nil, fmt.Errorf("signer %s is not the well-known test key", signer)
	}

	message, err := codec.Encode(action, account, signer, nonce)
	if err != nil {
		return nil, err
	}
	sig, err := WellKnownTestKeys.Signer.Sign(message)
	if err != nil {
		return nil, err
	}
	return &TestVectorExpected{
		Message: message,
		OrderID: codec.ComputeOrderID(message).String(),
		Signature: TestVectorSignature{
			PublicKey: signer.String(),
			Signature: sig.String(),
		},
	}, nil
}

// BuildAction turns the vector input into a validated action.
func BuildAction(input TestVectorInput) (types.Action, error) {
	var action types.Action
	switch types.ActionType(input.Action) {
	case types.ActionOrder, types.ActionCancel, types.ActionCancelAll:
		if len(input.Items) != 1 {
			return nil, fmt.Errorf("%s vector needs exactly one item, got %d", input.Action, len(input.Items))
		}
		if input.Items[0].Type != input.Action {
			return nil, fmt.Errorf("item type %q does not match action %q", input.Items[0].Type, input.Action)
		}
		item, err := input.Items[0].ToOrderItem()
		if err != nil {
			return nil, err
		}
		action = item
	case types.ActionGroup:
		items, err := types.OrderItemsFromInputs(input.Items)
		if err != nil {
			return nil, err
		}
		action = types.Group{Items: items}
	case types.ActionUserSettings:
		action = types.UserSettings{MaxLeverage: input.MaxLeverage}
	case types.ActionAgentWallet:
		agent, err := crypto.PublicKeyFromBase58(input.Agent)
		if err != nil {
			return nil, fmt.Errorf("invalid agent: %w", err)
		}
		action = types.AgentWallet{Agent: agent, Delete: input.Delete}
	case types.ActionFaucet:
		action = types.Faucet{}
	default:
		return nil, fmt.Errorf("unknown action %q", input.Action)
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return action, nil
}

// ParseMetadata decodes the account, signer and nonce.
func ParseMetadata(input TestVectorInput) (account, signer crypto.PublicKey, nonce uint64, err error) {
	account, err = crypto.PublicKeyFromBase58(input.Account)
	if err != nil {
		return account, signer, 0, fmt.Errorf("invalid account: %w", err)
	}
	signer, err = crypto.PublicKeyFromBase58(input.Signer)
	if err != nil {
		return account, signer, 0, fmt.Errorf("invalid signer: %w", err)
	}
	nonce, err = strconv.ParseUint(input.Nonce, 10, 64)
	if err != nil {
		return account, signer, 0, fmt.Errorf("invalid nonce: %w", err)
	}
	return account, signer, nonce, nil
}

// newInput fills in the metadata shared by most vectors.
func newInput(action string) TestVectorInput {
	self := WellKnownTestKeys.Signer.PublicKey().String()
	return TestVectorInput{
		Action:  action,
		Account: self,
		Signer:  self,
		Nonce:   strconv.FormatUint(defaultNonce, 10),
	}
}

func withNonce(in TestVectorInput, nonce uint64) TestVectorInput {
	in.Nonce = strconv.FormatUint(nonce, 10)
	return in
}

func orderInput(symbol string, isBuy bool, price, size float64) types.OrderInput {
	return types.OrderInput{
		Type:   string(types.ActionOrder),
		Symbol: ptr(symbol),
		IsBuy:  ptr(isBuy),
		Price:  ptr(price),
		Size:   ptr(size),
	}
}

func cancelInput(symbol string) types.OrderInput {
	return types.OrderInput{
		Type:    string(types.ActionCancel),
		Symbol:  ptr(symbol),
		OrderID: ptr(WellKnownTestKeys.OrderID.String()),
	}
}

func singleItem(item types.OrderInput) TestVectorInput {
	in := newInput(item.Type)
	in.Items = []types.OrderInput{item}
	return in
}

func serializationCases() []TestVector {
	ioc := orderInput("ETH-USD", false, 3500.25, 2)
	ioc.OrderType = &types.OrderTypeInput{Type: "limit", TIF: ptr("IOC")}

	alo := orderInput("SOL-USD", true, 150.5, 10)
	alo.OrderType = &types.OrderTypeInput{Type: "limit", TIF: ptr("ALO")}
	alo.ClientID = ptr(WellKnownTestKeys.ClientID.String())

	market := orderInput("BTC-USD", false, 0, 0.5)
	market.ReduceOnly = ptr(true)
	market.OrderType = &types.OrderTypeInput{Type: "market"}

	stop := orderInput("BTC-USD", false, 94000, 0.25)
	stop.OrderType = &types.OrderTypeInput{Type: "trigger", IsMarket: ptr(false), TriggerPx: ptr(95000.0)}

	group := newInput(string(types.ActionGroup))
	group.Items = []types.OrderInput{
		orderInput("BTC-USD", true, 99000, 0.1),
		orderInput("BTC-USD", false, 101000, 0.1),
		cancelInput("ETH-USD"),
		{Type: string(types.ActionCancelAll), Symbols: []string{"SOL-USD"}},
	}

	settings := newInput(string(types.ActionUserSettings))
	settings.MaxLeverage = []types.LeverageSetting{
		{Symbol: "BTC-USD", Leverage: 5},
		{Symbol: "ETH-USD", Leverage: 2.5},
	}

	create := newInput(string(types.ActionAgentWallet))
	create.Agent = WellKnownTestKeys.Agent.String()
	remove := create
	remove.Delete = true

	return []TestVector{
		{
			Name:        "order_limit_gtc",
			Description: "Limit buy with the default GTC time in force",
			Category:    "serialization",
			Input:       singleItem(orderInput("BTC-USD", true, 100000, 0.1)),
		},
		{
			Name:        "order_limit_ioc",
			Description: "Limit sell with IOC time in force",
			Category:    "serialization",
			Input:       singleItem(ioc),
		},
		{
			Name:        "order_limit_alo_client_id",
			Description: "Post-only limit order carrying a client id",
			Category:    "serialization",
			Input:       singleItem(alo),
		},
		{
			Name:        "order_market",
			Description: "Market order (trigger with isMarket and zero trigger price)",
			Category:    "serialization",
			Input:       singleItem(market),
		},
		{
			Name:        "order_stop_limit",
			Description: "Trigger order that rests as a limit once triggered",
			Category:    "serialization",
			Input:       singleItem(stop),
		},
		{
			Name:        "cancel",
			Description: "Cancel a single order by id",
			Category:    "serialization",
			Input:       singleItem(cancelInput("BTC-USD")),
		},
		{
			Name:        "cancel_all",
			Description: "Cancel all orders on two markets",
			Category:    "serialization",
			Input: singleItem(types.OrderInput{
				Type:    string(types.ActionCancelAll),
				Symbols: []string{"BTC-USD", "ETH-USD"},
			}),
		},
		{
			Name:        "group",
			Description: "Atomic group of two orders, a cancel and a cancel-all",
			Category:    "serialization",
			Input:       group,
		},
		{
			Name:        "user_settings",
			Description: "Per-market maximum leverage",
			Category:    "serialization",
			Input:       settings,
		},
		{
			Name:        "agent_wallet_create",
			Description: "Authorize an agent wallet",
			Category:    "serialization",
			Input:       create,
		},
		{
			Name:        "agent_wallet_delete",
			Description: "Revoke an agent wallet",
			Category:    "serialization",
			Input:       remove,
		},
		{
			Name:        "faucet",
			Description: "Testnet faucet request",
			Category:    "serialization",
			Input:       newInput(string(types.ActionFaucet)),
		},
	}
}

func algorithmCases() []TestVector {
	self := withNonce(singleItem(orderInput("BTC-USD", true, 100000, 0.1)), 42)
	delegated := self
	delegated.Account = WellKnownTestKeys.Account.String()

	return []TestVector{
		{
			Name:        "ed25519_self_signed",
			Description: "Signer key trading its own account",
			Category:    "algorithm",
			Input:       self,
		},
		{
			Name:        "ed25519_delegated",
			Description: "Signer key trading on behalf of a different account",
			Category:    "algorithm",
			Input:       delegated,
		},
	}
}

func edgeCaseCases() []TestVector {
	faucet := newInput(string(types.ActionFaucet))

	single := newInput(string(types.ActionGroup))
	single.Items = []types.OrderInput{orderInput("BTC-USD", true, 99000, 0.1)}

	return []TestVector{
		{
			Name:        "cancel_all_empty",
			Description: "Cancel-all with no symbols cancels every market",
			Category:    "edge_case",
			Input:       singleItem(types.OrderInput{Type: string(types.ActionCancelAll)}),
		},
		{
			Name:        "nonce_zero",
			Description: "Zero nonce",
			Category:    "edge_case",
			Input:       withNonce(faucet, 0),
		},
		{
			Name:        "nonce_max",
			Description: "Maximum uint64 nonce",
			Category:    "edge_case",
			Input:       withNonce(faucet, ^uint64(0)),
		},
		{
			Name:        "unicode_symbol",
			Description: "Non-ASCII symbol bytes are signed as given",
			Category:    "edge_case",
			Input:       singleItem(orderInput("\u00c9TH-USD", true, 1, 1)),
		},
		{
			Name:        "fractional_values",
			Description: "Values with no exact binary representation",
			Category:    "edge_case",
			Input:       singleItem(orderInput("BTC-USD", true, 0.1, 0.3)),
		},
		{
			Name:        "group_single_order",
			Description: "Group holding one order",
			Category:    "edge_case",
			Input:       single,
		},
	}
}
