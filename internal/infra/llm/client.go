package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/config"
)

// Client talks to the hosted responses API: one "continue this turn" surface
// keyed by a remote response id, with function-calling enabled.
type Client struct {
	cfg    config.LLMSettings
	http   *http.Client
	logger *zap.Logger
}

// NewClient constructs a completions client.
func NewClient(cfg config.LLMSettings, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 120 * time.Second},
		logger: log,
	}, nil
}

type responsesRequest struct {
	Model              string                  `json:"model"`
	Input              any                     `json:"input"`
	Instructions       string                  `json:"instructions,omitempty"`
	Tools              []domain.ToolDefinition `json:"tools,omitempty"`
	PreviousResponseID string                  `json:"previous_response_id,omitempty"`
}

type outputItem struct {
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Content   []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content,omitempty"`
}

type responsesResponse struct {
	ID     string       `json:"id"`
	Output []outputItem `json:"output"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate runs one turn, optionally continuing a previous response.
func (c *Client) Generate(ctx context.Context, req port.CompletionRequest) (domain.Completion, error) {
	return c.create(ctx, responsesRequest{
		Model:              c.cfg.Model,
		Input:              req.Input,
		Instructions:       req.Instructions,
		Tools:              req.Tools,
		PreviousResponseID: req.PreviousResponseID,
	})
}

// SubmitToolOutputs feeds function results back and continues the turn.
func (c *Client) SubmitToolOutputs(ctx context.Context, responseID string, outputs []domain.ToolOutput, tools []domain.ToolDefinition) (domain.Completion, error) {
	items := make([]map[string]string, 0, len(outputs))
	for _, out := range outputs {
		items = append(items, map[string]string{
			"type":    "function_call_output",
			"call_id": out.CallID,
			"output":  out.Output,
		})
	}

	return c.create(ctx, responsesRequest{
		Model:              c.cfg.Model,
		Input:              items,
		Tools:              tools,
		PreviousResponseID: responseID,
	})
}

func (c *Client) create(ctx context.Context, body responsesRequest) (domain.Completion, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("marshal responses request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return domain.Completion{}, fmt.Errorf("build responses request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("responses request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("read responses body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Completion{}, fmt.Errorf("responses api status %d", resp.StatusCode)
	}

	var parsed responsesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.Completion{}, fmt.Errorf("decode responses body: %w", err)
	}
	if parsed.Error != nil {
		return domain.Completion{}, fmt.Errorf("responses api: %s", parsed.Error.Message)
	}

	completion := domain.Completion{ResponseID: parsed.ID}
	var texts []string
	for _, item := range parsed.Output {
		switch item.Type {
		case "function_call":
			completion.ToolCalls = append(completion.ToolCalls, domain.ToolCall{
				CallID:    item.CallID,
				Name:      item.Name,
				Arguments: json.RawMessage(item.Arguments),
			})
		case "message":
			for _, content := range item.Content {
				if content.Type == "output_text" {
					texts = append(texts, content.Text)
				}
			}
		}
	}
	completion.Text = strings.Join(texts, "\n")

	return completion, nil
}

var _ port.CompletionClient = (*Client)(nil)
