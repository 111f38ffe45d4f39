package llm

import (
	"context"
	"errors"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

var ErrEmptyCompletion = errors.New("completion returned no text")

// Provider is the completion service. Errors are returned as they happen;
// retry policy belongs to the caller.
type Provider interface {
	Complete(ctx context.Context, messages []commonModels.ChatTurn, temperature float32, maxTokens int) (string, error)
}
