package providers

import (
	"context"

	"orderintake/internal/models"
)

// Completer produces the model's reply to a conversation. Implementations make
// exactly one upstream call per invocation.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

// Settings tunes a completion request.
type Settings struct {
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}
