// Package git provides access to git operations via shell commands.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.DiffSource = (*Runner)(nil)

// MaxUntrackedSize is the largest untracked file rendered as a synthetic
// new-file block. Larger files are left out of the diff.
const MaxUntrackedSize = 1 << 20

// Runner executes git commands via shell.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// RawDiff returns the uncommitted changes in dir as unified diff text:
// tracked changes against HEAD followed by one new-file block per untracked file.
func (r *Runner) RawDiff(ctx context.Context, dir string) (string, error) {
	var sb strings.Builder

	tracked, err := r.trackedDiff(ctx, dir)
	if err != nil {
		return "", err
	}
	sb.WriteString(tracked)

	untracked, err := r.UntrackedFiles(ctx, dir)
	if err != nil {
		return "", err
	}
	for _, path := range untracked {
		block, ok := newFileBlock(dir, path)
		if !ok {
			continue
		}
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString(block)
	}

	return sb.String(), nil
}

// DiffStat returns the "git diff --stat" summary of tracked changes in dir.
func (r *Runner) DiffStat(ctx context.Context, dir string) (string, error) {
	hasHead, err := r.hasHead(ctx, dir)
	if err != nil {
		return "", err
	}
	base := "HEAD"
	if !hasHead {
		if base, err = r.emptyTree(ctx, dir); err != nil {
			return "", err
		}
	}
	return r.run(ctx, dir, "diff", base, "--stat")
}

// Snapshot fetches the raw diff and the stat summary concurrently.
func (r *Runner) Snapshot(ctx context.Context, dir string) (raw, stat string, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = r.RawDiff(ctx, dir)
		return err
	})
	g.Go(func() error {
		var err error
		stat, err = r.DiffStat(ctx, dir)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return raw, stat, nil
}

// UntrackedFiles lists files that are neither tracked nor ignored, relative to dir.
func (r *Runner) UntrackedFiles(ctx context.Context, dir string) ([]string, error) {
	output, err := r.run(ctx, dir, "ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, p := range strings.Split(output, "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// trackedDiff diffs the working tree against HEAD, or against the empty
// tree in a repository without commits.
func (r *Runner) trackedDiff(ctx context.Context, dir string) (string, error) {
	hasHead, err := r.hasHead(ctx, dir)
	if err != nil {
		return "", err
	}
	base := "HEAD"
	if !hasHead {
		if base, err = r.emptyTree(ctx, dir); err != nil {
			return "", err
		}
	}
	return r.run(ctx, dir, "diff", base)
}

// emptyTree returns the id of the empty tree in the repository's hash format.
func (r *Runner) emptyTree(ctx context.Context, dir string) (string, error) {
	out, err := r.run(ctx, dir, "hash-object", "-t", "tree", os.DevNull)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Runner) hasHead(ctx context.Context, dir string) (bool, error) {
	if _, err := r.run(ctx, dir, "rev-parse", "--is-inside-work-tree"); err != nil {
		return false, err
	}
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--verify", "--quiet", "HEAD")
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, fmt.Errorf("git rev-parse failed: %w", err)
	}
	return true, nil
}

// run executes git in dir. Paths are printed unquoted so non-ASCII note
// names survive into the diff headers.
func (r *Runner) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir, "-c", "core.quotePath=false"}, args...)...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s failed: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return string(output), nil
}

// newFileBlock fabricates a diff block presenting an untracked file as
// entirely added. Binary, oversized and unreadable files are skipped.
func newFileBlock(dir, path string) (string, bool) {
	full := filepath.Join(dir, path)
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() || info.Size() > MaxUntrackedSize {
		return "", false
	}
	content, err := os.ReadFile(full)
	if err != nil || isBinary(content) {
		return "", false
	}
	return NewFileBlock(filepath.ToSlash(path), string(content)), true
}

// NewFileBlock renders content as a diff block adding the file at path.
func NewFileBlock(path, content string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", path, path)
	sb.WriteString("new file mode 100644\n")
	sb.WriteString("--- /dev/null\n")
	fmt.Fprintf(&sb, "+++ b/%s\n", path)

	if content == "" {
		return sb.String()
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	fmt.Fprintf(&sb, "@@ -0,0 +1,%d @@\n", len(lines))
	for _, line := range lines {
		sb.WriteString("+")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// isBinary applies git's heuristic: a NUL byte in the first 8000 bytes.
func isBinary(content []byte) bool {
	const sniffLen = 8000
	if len(content) > sniffLen {
		content = content[:sniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}
