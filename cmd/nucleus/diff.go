package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/HariCharanK/Nucleus/bubbletea"
	"github.com/HariCharanK/Nucleus/chroma"
	"github.com/HariCharanK/Nucleus/clipboard"
	"github.com/HariCharanK/Nucleus/config"
	"github.com/HariCharanK/Nucleus/fsnotify"
	"github.com/HariCharanK/Nucleus/git"
	"github.com/HariCharanK/Nucleus/lipgloss"
	"github.com/HariCharanK/Nucleus/worddiff"
)

// DiffApp shows the uncommitted changes in the notes directory, in the
// terminal viewer when interactive and as plain diff text otherwise.
type DiffApp struct {
	NotesDir    string
	Source      nucleus.DiffSource
	Viewer      nucleus.Viewer
	Stdout      io.Writer
	Interactive bool
}

// Run displays the changes.
func (a *DiffApp) Run(ctx context.Context) error {
	if a.Interactive {
		return a.Viewer.View(ctx, a.NotesDir)
	}
	raw, err := a.Source.RawDiff(ctx, a.NotesDir)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		return nucleus.ErrNoChanges
	}
	_, err = io.WriteString(a.Stdout, raw)
	return err
}

func newDiffCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Review uncommitted changes in the notes directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			source := git.NewRunner()

			app := &DiffApp{
				NotesDir:    cfg.NotesDir,
				Source:      source,
				Stdout:      cmd.OutOrStdout(),
				Interactive: isTerminal(os.Stdout),
			}
			if app.Interactive {
				viewer, err := newViewer(ctx, cfg, source)
				if err != nil {
					return err
				}
				app.Viewer = viewer
			}
			return app.Run(ctx)
		},
	}
}

// newViewer assembles the terminal viewer. A watcher that fails to start
// leaves polling as the only refresh.
func newViewer(ctx context.Context, cfg *config.Config, source nucleus.DiffSource) (*bubbletea.Viewer, error) {
	logger := NewLogger(cfg, io.Discard)

	parser, err := NewParser(cfg.Diff.Parser)
	if err != nil {
		return nil, err
	}
	theme, err := lipgloss.ThemeByName(cfg.UI.Theme)
	if err != nil {
		return nil, err
	}
	tokenizer, err := chroma.NewTokenizer(chroma.StyleFromPalette(theme.Palette()))
	if err != nil {
		return nil, err
	}

	opts := []bubbletea.ModelOption{
		bubbletea.WithTheme(theme),
		bubbletea.WithLanguageDetector(chroma.NewDetector()),
		bubbletea.WithTokenizer(tokenizer),
		bubbletea.WithWordDiffer(worddiff.NewDiffer()),
		bubbletea.WithClipboard(clipboard.New(os.Stdout)),
		bubbletea.WithPollInterval(cfg.Diff.PollInterval.Duration),
	}
	changes, err := fsnotify.NewWatcher(cfg.NotesDir, fsnotify.DefaultDebounce, logger).Watch(ctx)
	if err != nil {
		logger.Warn("watch notes directory", "error", err)
	} else {
		opts = append(opts, bubbletea.WithChanges(changes))
	}

	return bubbletea.NewViewer(source, parser, opts...), nil
}
