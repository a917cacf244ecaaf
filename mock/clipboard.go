package mock

import nucleus "github.com/HariCharanK/Nucleus"

// Compile-time interface verification.
var _ nucleus.Clipboard = (*Clipboard)(nil)

// Clipboard is a mock implementation of nucleus.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
