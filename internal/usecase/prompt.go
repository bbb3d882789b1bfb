package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/telemetry"
)

// ErrInvalidToolCall indicates the model requested a function outside the
// closed wallet tool set or supplied malformed arguments.
var ErrInvalidToolCall = errors.New("prompt: invalid tool call")

const promptInstructions = "You are SUI Squad Bot, a Sui blockchain wallet assistant. " +
	"ONLY use the available tools when the user specifically and explicitly asks for wallet actions " +
	"(balance, address, send, withdraw). DO NOT call any tools for greetings, casual conversation, or " +
	"general questions. When you do use a tool, select the EXACT tool that matches the user's request. " +
	"Respond conversationally by default."

// PromptService routes natural-language prompts through the completions API,
// threading multi-turn conversations via the conversation cache and
// dispatching the closed set of wallet tools.
type PromptService struct {
	llm           port.CompletionClient
	conversations port.ConversationCache
	wallet        *WalletService
	metrics       *telemetry.Metrics
	logger        *zap.Logger
}

// NewPromptService constructs a PromptService instance.
func NewPromptService(llm port.CompletionClient, conversations port.ConversationCache, wallet *WalletService, metrics *telemetry.Metrics, log *zap.Logger) *PromptService {
	return &PromptService{
		llm:           llm,
		conversations: conversations,
		wallet:        wallet,
		metrics:       metrics,
		logger:        log,
	}
}

// HandlePrompt runs one prompt turn for the user and returns the text to
// deliver back to the chat.
func (p *PromptService) HandlePrompt(ctx context.Context, key domain.UserKey, text string) (string, error) {
	previousID, _, err := p.conversations.Get(ctx, key)
	if err != nil {
		p.logger.Warn("conversation cache read failed", zap.Error(err))
		previousID = ""
	}

	tools := domain.WalletToolDefinitions()
	completion, err := p.llm.Generate(ctx, port.CompletionRequest{
		Input:              text,
		Instructions:       promptInstructions,
		Tools:              tools,
		PreviousResponseID: previousID,
	})
	if err != nil {
		return "", fmt.Errorf("%w: generate completion: %v", ErrUpstreamUnavailable, err)
	}

	if len(completion.ToolCalls) == 0 {
		p.touch(ctx, key, completion.ResponseID)
		return completion.Text, nil
	}

	outputs := make([]domain.ToolOutput, 0, len(completion.ToolCalls))
	for _, call := range completion.ToolCalls {
		result, err := p.dispatch(ctx, key, call)
		if err != nil {
			// Auth-class errors abort the turn so the command layer can give
			// the user one specific call to action instead of burying it in a
			// model reply.
			return "", err
		}
		outputs = append(outputs, domain.ToolOutput{CallID: call.CallID, Output: result})
	}

	final, err := p.llm.SubmitToolOutputs(ctx, completion.ResponseID, outputs, tools)
	if err != nil {
		return "", fmt.Errorf("%w: submit tool outputs: %v", ErrUpstreamUnavailable, err)
	}

	p.touch(ctx, key, final.ResponseID)
	return final.Text, nil
}

// dispatch executes one tool call. The tool set is closed: names outside the
// enum fail parsing rather than falling through to a string branch.
func (p *PromptService) dispatch(ctx context.Context, key domain.UserKey, call domain.ToolCall) (string, error) {
	tool, err := domain.ParseWalletTool(call.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToolCall, err)
	}
	if p.metrics != nil {
		p.metrics.ToolCalls.WithLabelValues(string(tool)).Inc()
	}

	switch tool {
	case domain.ToolGetBalance:
		var args struct {
			Coin string `json:"coin"`
		}
		_ = json.Unmarshal(call.Arguments, &args)
		balance, err := p.wallet.GetBalance(ctx, key, args.Coin)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("balance: %d MIST of %s", balance.TotalBalance, balance.CoinType), nil

	case domain.ToolGetWallet:
		address, err := p.wallet.GetWallet(ctx, key)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("wallet address: %s", address), nil

	case domain.ToolSend:
		var args domain.SendArgs
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return "", fmt.Errorf("%w: send arguments: %v", ErrInvalidToolCall, err)
		}
		digest, err := p.wallet.Send(ctx, key, args.Target, args.Amount, args.Coin)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("sent %s to %s, digest %s", args.Amount, args.Target, digest), nil

	case domain.ToolWithdraw:
		var args domain.WithdrawArgs
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return "", fmt.Errorf("%w: withdraw arguments: %v", ErrInvalidToolCall, err)
		}
		digest, err := p.wallet.Withdraw(ctx, key, args.Address, args.Amount, args.Coin)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("withdrew %s to %s, digest %s", args.Amount, args.Address, digest), nil
	}

	return "", fmt.Errorf("%w: unhandled tool %q", ErrInvalidToolCall, tool)
}

func (p *PromptService) touch(ctx context.Context, key domain.UserKey, responseID string) {
	if responseID == "" {
		return
	}
	if err := p.conversations.Update(ctx, key, responseID); err != nil {
		p.logger.Warn("conversation cache update failed", zap.Error(err))
	}
}
