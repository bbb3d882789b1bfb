package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
)

type fakeCompletionClient struct {
	completions []domain.Completion
	generateErr error
	submitErr   error

	generateCalls []port.CompletionRequest
	submitCalls   []struct {
		responseID string
		outputs    []domain.ToolOutput
	}
}

func (f *fakeCompletionClient) next() domain.Completion {
	if len(f.completions) == 0 {
		return domain.Completion{ResponseID: "resp-final", Text: "done"}
	}
	completion := f.completions[0]
	f.completions = f.completions[1:]
	return completion
}

func (f *fakeCompletionClient) Generate(_ context.Context, req port.CompletionRequest) (domain.Completion, error) {
	f.generateCalls = append(f.generateCalls, req)
	if f.generateErr != nil {
		return domain.Completion{}, f.generateErr
	}
	return f.next(), nil
}

func (f *fakeCompletionClient) SubmitToolOutputs(_ context.Context, responseID string, outputs []domain.ToolOutput, _ []domain.ToolDefinition) (domain.Completion, error) {
	f.submitCalls = append(f.submitCalls, struct {
		responseID string
		outputs    []domain.ToolOutput
	}{responseID, outputs})
	if f.submitErr != nil {
		return domain.Completion{}, f.submitErr
	}
	return f.next(), nil
}

type fakeConversationCache struct {
	entries map[domain.UserKey]string
}

func newFakeConversationCache() *fakeConversationCache {
	return &fakeConversationCache{entries: make(map[domain.UserKey]string)}
}

func (f *fakeConversationCache) Get(_ context.Context, key domain.UserKey) (string, bool, error) {
	id, ok := f.entries[key]
	return id, ok, nil
}

func (f *fakeConversationCache) Update(_ context.Context, key domain.UserKey, responseID string) error {
	f.entries[key] = responseID
	return nil
}

func (f *fakeConversationCache) Sweep(context.Context) (int, error) { return 0, nil }

type promptFixture struct {
	prompt *PromptService
	llm    *fakeCompletionClient
	cache  *fakeConversationCache
	wallet *walletFixture
}

func newPromptFixture(t *testing.T) *promptFixture {
	t.Helper()

	wallet := newWalletFixture(t)
	llm := &fakeCompletionClient{}
	cache := newFakeConversationCache()

	return &promptFixture{
		prompt: NewPromptService(llm, cache, wallet.wallet, nil, zap.NewNop()),
		llm:    llm,
		cache:  cache,
		wallet: wallet,
	}
}

func TestHandlePromptPlainText(t *testing.T) {
	f := newPromptFixture(t)
	f.llm.completions = []domain.Completion{{ResponseID: "resp-1", Text: "hello there"}}

	text, err := f.prompt.HandlePrompt(context.Background(), f.wallet.key, "hi")
	if err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}
	if text != "hello there" {
		t.Errorf("unexpected reply %q", text)
	}
	if f.cache.entries[f.wallet.key] != "resp-1" {
		t.Error("expected the turn id to be cached")
	}
	if len(f.llm.submitCalls) != 0 {
		t.Error("no tool outputs should be submitted for a text-only turn")
	}
}

func TestHandlePromptThreadsConversation(t *testing.T) {
	f := newPromptFixture(t)
	f.cache.entries[f.wallet.key] = "resp-old"
	f.llm.completions = []domain.Completion{{ResponseID: "resp-new", Text: "ok"}}

	if _, err := f.prompt.HandlePrompt(context.Background(), f.wallet.key, "again"); err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}

	if len(f.llm.generateCalls) != 1 {
		t.Fatalf("expected one generate call, got %d", len(f.llm.generateCalls))
	}
	if f.llm.generateCalls[0].PreviousResponseID != "resp-old" {
		t.Error("expected the cached turn id to thread the conversation")
	}
	if f.cache.entries[f.wallet.key] != "resp-new" {
		t.Error("expected the cache to advance to the new turn id")
	}
}

func TestHandlePromptExecutesToolCalls(t *testing.T) {
	f := newPromptFixture(t)
	f.wallet.sessions.chain.balance = domain.Balance{CoinType: SuiCoinType, CoinCount: 1, TotalBalance: 42}

	f.llm.completions = []domain.Completion{
		{
			ResponseID: "resp-1",
			ToolCalls: []domain.ToolCall{
				{CallID: "call-1", Name: "get_balance", Arguments: json.RawMessage(`{}`)},
			},
		},
		{ResponseID: "resp-2", Text: "you have 42 MIST"},
	}

	text, err := f.prompt.HandlePrompt(context.Background(), f.wallet.key, "what's my balance?")
	if err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}
	if text != "you have 42 MIST" {
		t.Errorf("unexpected reply %q", text)
	}

	if len(f.llm.submitCalls) != 1 {
		t.Fatalf("expected one submit call, got %d", len(f.llm.submitCalls))
	}
	submit := f.llm.submitCalls[0]
	if submit.responseID != "resp-1" {
		t.Errorf("tool outputs must continue the tool-call turn, got %s", submit.responseID)
	}
	if len(submit.outputs) != 1 || submit.outputs[0].CallID != "call-1" {
		t.Error("tool output must reference the originating call id")
	}
	if f.cache.entries[f.wallet.key] != "resp-2" {
		t.Error("expected the final turn id to be cached")
	}
}

func TestHandlePromptSendTool(t *testing.T) {
	f := newPromptFixture(t)

	f.llm.completions = []domain.Completion{
		{
			ResponseID: "resp-1",
			ToolCalls: []domain.ToolCall{
				{CallID: "call-1", Name: "send", Arguments: json.RawMessage(`{"target":"0xdead","amount":"1","coin":""}`)},
			},
		},
		{ResponseID: "resp-2", Text: "sent"},
	}

	if _, err := f.prompt.HandlePrompt(context.Background(), f.wallet.key, "send 1 sui to 0xdead"); err != nil {
		t.Fatalf("HandlePrompt: %v", err)
	}
	if len(f.wallet.sessions.chain.executed) != 1 {
		t.Error("expected the send tool to execute a transaction")
	}
}

func TestHandlePromptUnknownToolAborts(t *testing.T) {
	f := newPromptFixture(t)

	f.llm.completions = []domain.Completion{
		{
			ResponseID: "resp-1",
			ToolCalls: []domain.ToolCall{
				{CallID: "call-1", Name: "delete_wallet", Arguments: json.RawMessage(`{}`)},
			},
		},
	}

	_, err := f.prompt.HandlePrompt(context.Background(), f.wallet.key, "delete my wallet")
	if !errors.Is(err, ErrInvalidToolCall) {
		t.Fatalf("expected ErrInvalidToolCall, got %v", err)
	}
	if len(f.llm.submitCalls) != 0 {
		t.Error("no outputs should be submitted after an invalid tool call")
	}
}

func TestHandlePromptAuthErrorSurfaces(t *testing.T) {
	f := newPromptFixture(t)
	f.wallet.sessions.service.Logout(f.wallet.key)

	f.llm.completions = []domain.Completion{
		{
			ResponseID: "resp-1",
			ToolCalls: []domain.ToolCall{
				{CallID: "call-1", Name: "get_wallet", Arguments: json.RawMessage(`{}`)},
			},
		},
	}

	_, err := f.prompt.HandlePrompt(context.Background(), f.wallet.key, "what's my address?")
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired to surface, got %v", err)
	}
}

func TestHandlePromptGenerateFailure(t *testing.T) {
	f := newPromptFixture(t)
	f.llm.generateErr = errors.New("api down")

	_, err := f.prompt.HandlePrompt(context.Background(), f.wallet.key, "hi")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
