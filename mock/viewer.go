package mock

import (
	"context"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.Viewer = (*Viewer)(nil)

// Viewer is a mock implementation of nucleus.Viewer.
type Viewer struct {
	ViewFn func(ctx context.Context, dir string) error
}

func (v *Viewer) View(ctx context.Context, dir string) error {
	return v.ViewFn(ctx, dir)
}
