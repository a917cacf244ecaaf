package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/HariCharanK/Nucleus/config"
	"github.com/HariCharanK/Nucleus/fs"
	"github.com/HariCharanK/Nucleus/gitdiff"
	"github.com/HariCharanK/Nucleus/unidiff"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	notesDir   string
}

// NewRootCmd builds the nucleus command tree.
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "nucleus",
		Short:         "Chat with an assistant that keeps your notes, and review what it changed",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default $NUCLEUS_CONFIG_DIR/config.toml or the user config dir)")
	root.PersistentFlags().StringVarP(&flags.notesDir, "notes-dir", "C", "", "notes directory (overrides notes_dir)")

	root.AddCommand(
		newServeCmd(&flags),
		newDiffCmd(&flags),
		newChatCmd(&flags),
		newParseCmd(&flags),
	)
	return root
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = fs.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flags.notesDir != "" {
		cfg.NotesDir = flags.notesDir
	}
	return cfg, nil
}

// NewLogger returns a text logger writing to w at the configured level.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewParser returns the diff parser named by the diff.parser setting.
func NewParser(name string) (nucleus.DiffParser, error) {
	switch name {
	case "", config.ParserLenient:
		return unidiff.NewParser(), nil
	case config.ParserGitDiff:
		return gitdiff.NewParser(), nil
	default:
		return nil, fmt.Errorf("unknown parser %q", name)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

func main() {
	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
