package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"golang.org/x/text/unicode/norm"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.Tool = (*Bash)(nil)

// Bash defaults.
const (
	DefaultShellTimeout   = 30 * time.Second
	DefaultMaxOutputBytes = 30000
)

// Bash runs shell commands inside the notes directory.
type Bash struct {
	dir       string
	timeout   time.Duration
	maxOutput int
	shell     string
}

// BashOption configures a Bash tool.
type BashOption func(*Bash)

// WithTimeout sets how long a single command may run.
func WithTimeout(d time.Duration) BashOption {
	return func(b *Bash) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithMaxOutput caps the number of output bytes returned to the model.
func WithMaxOutput(n int) BashOption {
	return func(b *Bash) {
		if n > 0 {
			b.maxOutput = n
		}
	}
}

// NewBash creates a Bash tool rooted at dir.
func NewBash(dir string, opts ...BashOption) *Bash {
	b := &Bash{
		dir:       dir,
		timeout:   DefaultShellTimeout,
		maxOutput: DefaultMaxOutputBytes,
		shell:     "bash",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bash) Name() string { return "bash" }

func (b *Bash) Description() string {
	return "Run a shell command in the notes directory and return its combined stdout and stderr. " +
		"Use it for git, grep, ls and other read or housekeeping commands. Commands time out after " +
		b.timeout.String() + "."
}

func (b *Bash) Parameters() *nucleus.Schema {
	return &nucleus.Schema{
		Type: "object",
		Properties: map[string]*nucleus.Schema{
			"command": {Type: "string", Description: "The shell command to run."},
			"restart": {Type: "boolean", Description: "Restart the shell session instead of running a command."},
		},
	}
}

// Run executes the command. Non-zero exits and timeouts are reported in the
// returned text so the model can react to them.
func (b *Bash) Run(ctx context.Context, args map[string]any) (string, error) {
	if boolArg(args, "restart") {
		return "tool has been restarted.", nil
	}

	command, err := requireString(args, "command")
	if err != nil {
		return "", err
	}
	// NFKC folds lookalike characters so the command runs as it reads.
	command = norm.NFKC.String(command)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, b.shell, "-c", command)
	cmd.Dir = b.dir
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()

	result := truncate(out.String(), b.maxOutput)
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return result, fmt.Errorf("command timed out after %s", b.timeout)
	case ctx.Err() != nil:
		return result, ctx.Err()
	case runErr != nil:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			if result != "" && result[len(result)-1] != '\n' {
				result += "\n"
			}
			return result + fmt.Sprintf("exit status %d", exitErr.ExitCode()), nil
		}
		return result, fmt.Errorf("run command: %w", runErr)
	}

	if result == "" {
		return "(no output)", nil
	}
	return result, nil
}

// truncate shortens s to at most n bytes, noting how much was dropped.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + fmt.Sprintf("\n... [truncated %d bytes]", len(s)-n)
}
