package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/HariCharanK/Nucleus/config"
	"github.com/HariCharanK/Nucleus/gemini"
	"github.com/HariCharanK/Nucleus/git"
	"github.com/HariCharanK/Nucleus/jsonl"
)

// LineReader reads one line of user input.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// ChatApp runs a conversation with the assistant in the terminal.
type ChatApp struct {
	Assistant nucleus.Assistant
	Sessions  nucleus.SessionStore // optional
	Input     LineReader
	Stdout    io.Writer

	// Render formats the finished reply. Nil prints it unchanged.
	Render func(markdown string) string
	// NewID generates session ids. Defaults to random UUIDs.
	NewID func() string
}

// Run reads prompts until end of input or /quit. A failed turn is reported
// and the prompt returns; the failed message is not kept in the history.
func (a *ChatApp) Run(ctx context.Context) error {
	session := a.newSession()
	for {
		input, err := a.Input.Prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(a.Stdout)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/new":
			session = a.newSession()
			fmt.Fprintln(a.Stdout, "Started a new conversation.")
			continue
		}

		if err := a.turn(ctx, session, input); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(a.Stdout, "error:", err)
		}
	}
}

func (a *ChatApp) newSession() *nucleus.Session {
	newID := a.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &nucleus.Session{ID: newID()}
}

func (a *ChatApp) turn(ctx context.Context, session *nucleus.Session, input string) error {
	messages := make([]nucleus.Message, 0, len(session.Messages)+1)
	messages = append(messages, session.Messages...)
	messages = append(messages, nucleus.Message{Role: nucleus.RoleUser, Content: input})

	var reply strings.Builder
	emit := func(e nucleus.ChatEvent) error {
		switch e.Type {
		case nucleus.EventText:
			reply.WriteString(e.Text)
		case nucleus.EventToolUse:
			fmt.Fprintf(a.Stdout, "· %s\n", toolSummary(e))
		case nucleus.EventToolResult:
			if e.IsError {
				fmt.Fprintf(a.Stdout, "  %s failed: %s\n", e.ToolName, firstLine(e.Output))
			}
		}
		return nil
	}

	err := a.Assistant.Chat(ctx, messages, emit)
	if reply.Len() > 0 {
		fmt.Fprint(a.Stdout, a.render(reply.String()))
	}
	if err != nil {
		return err
	}

	session.Messages = append(messages, nucleus.Message{Role: nucleus.RoleAssistant, Content: reply.String()})
	if a.Sessions != nil {
		if err := a.Sessions.Save(session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

func (a *ChatApp) render(markdown string) string {
	out := markdown
	if a.Render != nil {
		out = a.Render(markdown)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// toolSummary describes a tool call in one line, e.g. "bash ls -la".
func toolSummary(e nucleus.ChatEvent) string {
	parts := []string{e.ToolName}
	for _, k := range []string{"command", "path"} {
		if v, ok := e.Input[k].(string); ok && v != "" {
			parts = append(parts, firstLine(v))
		}
	}
	if len(parts) == 1 && len(e.Input) > 0 {
		keys := make([]string, 0, len(e.Input))
		for k := range e.Input {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts = append(parts, "("+strings.Join(keys, ", ")+")")
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

// lineInput is a LineReader with editing and persistent history.
type lineInput struct {
	state       *liner.State
	historyPath string
}

func newLineInput(historyPath string) *lineInput {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	if f, err := os.Open(historyPath); err == nil {
		_, _ = state.ReadHistory(f)
		f.Close()
	}
	return &lineInput{state: state, historyPath: historyPath}
}

func (l *lineInput) Prompt(prompt string) (string, error) {
	line, err := l.state.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		l.state.AppendHistory(line)
	}
	return line, err
}

// Close saves the history and restores the terminal.
func (l *lineInput) Close() error {
	if err := os.MkdirAll(filepath.Dir(l.historyPath), 0o755); err == nil {
		if f, err := os.OpenFile(l.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = l.state.WriteHistory(f)
			f.Close()
		}
	}
	return l.state.Close()
}

// NewMarkdownRenderer returns a function rendering markdown for the terminal
// in the configured theme. Rendering failures fall back to the input.
func NewMarkdownRenderer(cfg *config.Config) (func(string) string, error) {
	style := glamour.WithStandardStyle(cfg.UI.Theme)
	if cfg.UI.Theme == "auto" {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(cfg.UI.MarkdownWidth))
	if err != nil {
		return nil, err
	}
	return func(markdown string) string {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown
		}
		return out
	}, nil
}

func newChatCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant about your notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			key := cfg.APIKey()
			if key == "" {
				return fmt.Errorf("%s is not set", cfg.LLM.APIKeyEnv)
			}
			ctx := cmd.Context()
			logger := NewLogger(cfg, os.Stderr)

			parser, err := NewParser(cfg.Diff.Parser)
			if err != nil {
				return err
			}
			client, err := gemini.NewClient(ctx, key)
			if err != nil {
				return fmt.Errorf("create gemini client: %w", err)
			}
			defer client.Close()

			app := &ChatApp{
				Assistant: NewAgent(client, cfg, git.NewRunner(), parser, logger),
				Sessions:  jsonl.NewStore(cfg.SessionsDir()),
				Stdout:    cmd.OutOrStdout(),
			}
			if isTerminal(os.Stdout) {
				render, err := NewMarkdownRenderer(cfg)
				if err != nil {
					return err
				}
				app.Render = render
			}

			input := newLineInput(filepath.Join(cfg.DataDir, "chat_history"))
			defer input.Close()
			app.Input = input

			fmt.Fprintf(app.Stdout, "Notes: %s. /new starts over, /quit exits.\n", cfg.NotesDir)
			return app.Run(ctx)
		},
	}
}
