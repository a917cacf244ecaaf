// Package tiktoken estimates prompt sizes with the tiktoken-go tokenizer.
package tiktoken

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.TokenCounter = (*Counter)(nil)

// Counter approximates token counts using the cl100k_base encoding. Gemini
// uses its own vocabulary, so counts are estimates suitable for budgeting only.
type Counter struct {
	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewCounter creates a Counter. The codec is loaded on first use.
func NewCounter() *Counter {
	return &Counter{}
}

// Count returns the estimated token count of text. If the codec cannot be
// loaded it falls back to one token per four bytes.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(func() {
		c.codec, c.err = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if c.err != nil {
		return fallbackCount(text)
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return fallbackCount(text)
	}
	return len(ids)
}

func fallbackCount(text string) int {
	return (len(text) + 3) / 4
}
