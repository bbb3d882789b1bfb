package port

import (
	"context"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

// CompletionRequest is one "continue this turn" call to the hosted
// completions API.
type CompletionRequest struct {
	Input              string
	Instructions       string
	Tools              []domain.ToolDefinition
	PreviousResponseID string
}

// CompletionClient is the opaque LLM surface: generate a turn, optionally
// continuing a previous one, and feed tool outputs back.
type CompletionClient interface {
	Generate(ctx context.Context, req CompletionRequest) (domain.Completion, error)
	SubmitToolOutputs(ctx context.Context, responseID string, outputs []domain.ToolOutput, tools []domain.ToolDefinition) (domain.Completion, error)
}
