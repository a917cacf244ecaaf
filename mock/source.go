package mock

import (
	"context"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.DiffSource = (*DiffSource)(nil)

// DiffSource is a mock implementation of nucleus.DiffSource.
type DiffSource struct {
	RawDiffFn  func(ctx context.Context, dir string) (string, error)
	DiffStatFn func(ctx context.Context, dir string) (string, error)
}

func (s *DiffSource) RawDiff(ctx context.Context, dir string) (string, error) {
	return s.RawDiffFn(ctx, dir)
}

func (s *DiffSource) DiffStat(ctx context.Context, dir string) (string, error) {
	return s.DiffStatFn(ctx, dir)
}
