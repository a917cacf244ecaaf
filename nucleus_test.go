package nucleus_test

import (
	"context"
	"errors"
	"testing"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/HariCharanK/Nucleus/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotSource is a DiffSource that also fetches both parts in one call.
type snapshotSource struct {
	mock.DiffSource
	SnapshotFn func(ctx context.Context, dir string) (string, string, error)
}

func (s *snapshotSource) Snapshot(ctx context.Context, dir string) (string, string, error) {
	return s.SnapshotFn(ctx, dir)
}

func TestTakeSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("calls RawDiff then DiffStat", func(t *testing.T) {
		t.Parallel()
		var calls []string
		source := &mock.DiffSource{
			RawDiffFn: func(_ context.Context, dir string) (string, error) {
				calls = append(calls, "raw:"+dir)
				return "diff", nil
			},
			DiffStatFn: func(_ context.Context, dir string) (string, error) {
				calls = append(calls, "stat:"+dir)
				return "stat", nil
			},
		}

		raw, stat, err := nucleus.TakeSnapshot(context.Background(), source, "notes")

		require.NoError(t, err)
		assert.Equal(t, "diff", raw)
		assert.Equal(t, "stat", stat)
		assert.Equal(t, []string{"raw:notes", "stat:notes"}, calls)
	})

	t.Run("raw diff error skips the stat", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("git diff failed: boom")
		source := &mock.DiffSource{
			RawDiffFn: func(context.Context, string) (string, error) { return "", boom },
			DiffStatFn: func(context.Context, string) (string, error) {
				t.Fatal("DiffStat should not be called")
				return "", nil
			},
		}

		_, _, err := nucleus.TakeSnapshot(context.Background(), source, "notes")

		require.ErrorIs(t, err, boom)
	})

	t.Run("stat error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("stat failed")
		source := &mock.DiffSource{
			RawDiffFn:  func(context.Context, string) (string, error) { return "diff", nil },
			DiffStatFn: func(context.Context, string) (string, error) { return "", boom },
		}

		raw, _, err := nucleus.TakeSnapshot(context.Background(), source, "notes")

		require.ErrorIs(t, err, boom)
		assert.Empty(t, raw)
	})

	t.Run("prefers Snapshot", func(t *testing.T) {
		t.Parallel()
		source := &snapshotSource{
			SnapshotFn: func(_ context.Context, dir string) (string, string, error) {
				return "diff:" + dir, "stat:" + dir, nil
			},
		}

		raw, stat, err := nucleus.TakeSnapshot(context.Background(), source, "notes")

		require.NoError(t, err)
		assert.Equal(t, "diff:notes", raw)
		assert.Equal(t, "stat:notes", stat)
	})
}
