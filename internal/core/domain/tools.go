package domain

import (
	"encoding/json"
	"fmt"
)

// WalletTool is the closed set of functions the model may call. Unknown tool
// names fail ParseWalletTool instead of falling through to a string branch.
type WalletTool string

const (
	ToolGetBalance WalletTool = "get_balance"
	ToolGetWallet  WalletTool = "get_wallet"
	ToolSend       WalletTool = "send"
	ToolWithdraw   WalletTool = "withdraw"
)

// ParseWalletTool resolves a function-call name from the model into a wallet
// tool.
func ParseWalletTool(name string) (WalletTool, error) {
	switch WalletTool(name) {
	case ToolGetBalance, ToolGetWallet, ToolSend, ToolWithdraw:
		return WalletTool(name), nil
	default:
		return "", fmt.Errorf("unknown wallet tool %q", name)
	}
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	CallID    string
	Name      string
	Arguments json.RawMessage
}

// ToolOutput is the result of executing one tool call, fed back to the model
// to continue the turn.
type ToolOutput struct {
	CallID string
	Output string
}

// Completion is one LLM turn: the remote turn id used for continuation, any
// direct text output, and any requested tool calls.
type Completion struct {
	ResponseID string
	Text       string
	ToolCalls  []ToolCall
}

// SendArgs are the arguments the model supplies for the send tool.
type SendArgs struct {
	Target string `json:"target"`
	Amount string `json:"amount"`
	Coin   string `json:"coin"`
}

// WithdrawArgs are the arguments the model supplies for the withdraw tool.
type WithdrawArgs struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Coin    string `json:"coin"`
}

// ToolDefinition is the JSON-schema description of one tool, in the shape the
// completions API expects.
type ToolDefinition struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// WalletToolDefinitions returns the schema for every wallet tool.
func WalletToolDefinitions() []ToolDefinition {
	stringProp := func(desc string) map[string]any {
		return map[string]any{"type": "string", "description": desc}
	}
	obj := func(props map[string]any, required ...string) map[string]any {
		if required == nil {
			required = []string{}
		}
		return map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		}
	}

	return []ToolDefinition{
		{
			Type:        "function",
			Name:        string(ToolGetBalance),
			Description: "Get the user's Sui wallet balance.",
			Parameters: obj(map[string]any{
				"coin": stringProp("Coin type to query, defaults to SUI."),
			}),
		},
		{
			Type:        "function",
			Name:        string(ToolGetWallet),
			Description: "Get the user's Sui wallet address.",
			Parameters:  obj(map[string]any{}),
		},
		{
			Type:        "function",
			Name:        string(ToolSend),
			Description: "Send coins to another chat member.",
			Parameters: obj(map[string]any{
				"target": stringProp("Recipient username or address."),
				"amount": stringProp("Amount to send, in SUI."),
				"coin":   stringProp("Coin type, defaults to SUI."),
			}, "target", "amount"),
		},
		{
			Type:        "function",
			Name:        string(ToolWithdraw),
			Description: "Withdraw coins to an external Sui address.",
			Parameters: obj(map[string]any{
				"address": stringProp("Destination Sui address."),
				"amount":  stringProp("Amount to withdraw, in SUI."),
				"coin":    stringProp("Coin type, defaults to SUI."),
			}, "address", "amount"),
		},
	}
}
