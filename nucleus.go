// Package nucleus provides domain types for a notes assistant: an LLM agent
// that edits a git repository of markdown notes, plus the structured view of
// the uncommitted changes it leaves behind.
package nucleus

import (
	"context"
	"errors"
)

// ErrNoChanges is returned when there is nothing to display.
var ErrNoChanges = errors.New("no changes to display")

// DiffParser converts unified diff text into a structured Diff.
//
// Parse never fails. Unparseable regions degrade to a best-effort result;
// an empty Diff for non-empty input means the caller should fall back to
// showing the raw text.
type DiffParser interface {
	Parse(raw string) *Diff
}

// DiffSource produces diff text for a working tree.
type DiffSource interface {
	// RawDiff returns the unified diff of uncommitted changes in dir,
	// including synthetic new-file blocks for untracked files.
	RawDiff(ctx context.Context, dir string) (string, error)
	// DiffStat returns the "git diff --stat" summary for dir.
	DiffStat(ctx context.Context, dir string) (string, error)
}

// Viewer displays a diff source interactively.
type Viewer interface {
	// View blocks until the user exits or ctx is cancelled.
	View(ctx context.Context, dir string) error
}

// Clipboard provides copy-to-clipboard functionality.
type Clipboard interface {
	Copy(content string) error
}

// Snapshotter is implemented by diff sources that can fetch the diff and its
// stat in one call.
type Snapshotter interface {
	Snapshot(ctx context.Context, dir string) (raw, stat string, err error)
}

// TakeSnapshot returns the raw diff and stat for dir, in one call when source
// is a Snapshotter.
func TakeSnapshot(ctx context.Context, source DiffSource, dir string) (raw, stat string, err error) {
	if snap, ok := source.(Snapshotter); ok {
		return snap.Snapshot(ctx, dir)
	}
	if raw, err = source.RawDiff(ctx, dir); err != nil {
		return "", "", err
	}
	if stat, err = source.DiffStat(ctx, dir); err != nil {
		return "", "", err
	}
	return raw, stat, nil
}
