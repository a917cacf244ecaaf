package mock

import (
	"context"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var (
	_ nucleus.Assistant    = (*Assistant)(nil)
	_ nucleus.Tool         = (*Tool)(nil)
	_ nucleus.TokenCounter = (*TokenCounter)(nil)
)

// Assistant is a mock implementation of nucleus.Assistant.
type Assistant struct {
	ChatFn func(ctx context.Context, messages []nucleus.Message, emit func(nucleus.ChatEvent) error) error
}

func (a *Assistant) Chat(ctx context.Context, messages []nucleus.Message, emit func(nucleus.ChatEvent) error) error {
	return a.ChatFn(ctx, messages, emit)
}

// Tool is a mock implementation of nucleus.Tool. Name and Description
// return ToolName; Parameters returns an empty object schema.
type Tool struct {
	ToolName string
	RunFn    func(ctx context.Context, args map[string]any) (string, error)
}

func (t *Tool) Name() string { return t.ToolName }

func (t *Tool) Description() string { return t.ToolName }

func (t *Tool) Parameters() *nucleus.Schema {
	return &nucleus.Schema{Type: "object", Properties: map[string]*nucleus.Schema{}}
}

func (t *Tool) Run(ctx context.Context, args map[string]any) (string, error) {
	return t.RunFn(ctx, args)
}

// TokenCounter is a mock implementation of nucleus.TokenCounter.
type TokenCounter struct {
	CountFn func(text string) int
}

func (c *TokenCounter) Count(text string) int {
	return c.CountFn(text)
}
