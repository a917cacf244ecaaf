package main_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	nucleus "github.com/HariCharanK/Nucleus"
	main "github.com/HariCharanK/Nucleus/cmd/nucleus"
	"github.com/HariCharanK/Nucleus/config"
	"github.com/HariCharanK/Nucleus/gitdiff"
	"github.com/HariCharanK/Nucleus/mock"
	"github.com/HariCharanK/Nucleus/unidiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noteDiff = `diff --git a/todo.md b/todo.md
--- a/todo.md
+++ b/todo.md
@@ -1,2 +1,2 @@
 # Todo
-- [ ] buy milk
+- [x] buy milk
`

func TestParseApp_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the parsed diff as JSON", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		app := &main.ParseApp{Stdin: strings.NewReader(noteDiff), Stdout: &out, Parser: unidiff.NewParser()}

		err := app.Run()

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"filePath": "todo.md"`)
		assert.Contains(t, out.String(), `"type": "add"`)
		assert.Contains(t, out.String(), `"newLineNo": 2`)
	})

	t.Run("parser receives stdin", func(t *testing.T) {
		t.Parallel()
		var got string
		app := &main.ParseApp{
			Stdin:  strings.NewReader(noteDiff),
			Stdout: io.Discard,
			Parser: &mock.DiffParser{ParseFn: func(raw string) *nucleus.Diff {
				got = raw
				return &nucleus.Diff{Files: []nucleus.DiffFile{{FilePath: "todo.md"}}}
			}},
		}

		require.NoError(t, app.Run())
		assert.Equal(t, noteDiff, got)
	})

	t.Run("no files", func(t *testing.T) {
		t.Parallel()
		app := &main.ParseApp{Stdin: strings.NewReader("not a diff\n"), Stdout: io.Discard, Parser: unidiff.NewParser()}

		require.ErrorIs(t, app.Run(), nucleus.ErrNoChanges)
	})
}

func TestDiffApp_Run(t *testing.T) {
	t.Parallel()

	t.Run("interactive opens the viewer", func(t *testing.T) {
		t.Parallel()
		var viewedDir string
		app := &main.DiffApp{
			NotesDir: "/notes",
			Viewer: &mock.Viewer{ViewFn: func(_ context.Context, dir string) error {
				viewedDir = dir
				return nil
			}},
			Interactive: true,
		}

		require.NoError(t, app.Run(context.Background()))
		assert.Equal(t, "/notes", viewedDir)
	})

	t.Run("viewer error", func(t *testing.T) {
		t.Parallel()
		viewErr := errors.New("terminal error")
		app := &main.DiffApp{
			Viewer:      &mock.Viewer{ViewFn: func(context.Context, string) error { return viewErr }},
			Interactive: true,
		}

		require.ErrorIs(t, app.Run(context.Background()), viewErr)
	})

	t.Run("non-interactive prints the raw diff", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		app := &main.DiffApp{
			NotesDir: "/notes",
			Source: &mock.DiffSource{RawDiffFn: func(_ context.Context, dir string) (string, error) {
				assert.Equal(t, "/notes", dir)
				return noteDiff, nil
			}},
			Stdout: &out,
		}

		require.NoError(t, app.Run(context.Background()))
		assert.Equal(t, noteDiff, out.String())
	})

	t.Run("no changes", func(t *testing.T) {
		t.Parallel()
		app := &main.DiffApp{
			Source: &mock.DiffSource{RawDiffFn: func(context.Context, string) (string, error) { return "\n", nil }},
			Stdout: io.Discard,
		}

		require.ErrorIs(t, app.Run(context.Background()), nucleus.ErrNoChanges)
	})

	t.Run("source error", func(t *testing.T) {
		t.Parallel()
		srcErr := errors.New("git diff failed: not a git repository")
		app := &main.DiffApp{
			Source: &mock.DiffSource{RawDiffFn: func(context.Context, string) (string, error) { return "", srcErr }},
			Stdout: io.Discard,
		}

		require.ErrorIs(t, app.Run(context.Background()), srcErr)
	})
}

// scriptedInput replays lines, then reports end of input.
type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestChatApp_Run(t *testing.T) {
	t.Parallel()

	t.Run("streams replies and saves the session", func(t *testing.T) {
		t.Parallel()
		var (
			out    bytes.Buffer
			saved  []nucleus.Message
			seenID string
			calls  [][]nucleus.Message
		)
		app := &main.ChatApp{
			Assistant: &mock.Assistant{ChatFn: func(_ context.Context, messages []nucleus.Message, emit func(nucleus.ChatEvent) error) error {
				calls = append(calls, messages)
				_ = emit(nucleus.ChatEvent{Type: nucleus.EventToolUse, ToolName: "bash", Input: map[string]any{"command": "ls"}})
				_ = emit(nucleus.ChatEvent{Type: nucleus.EventToolResult, ToolName: "bash", Output: "todo.md\n"})
				_ = emit(nucleus.ChatEvent{Type: nucleus.EventText, Text: "You have "})
				_ = emit(nucleus.ChatEvent{Type: nucleus.EventText, Text: "one note."})
				return emit(nucleus.ChatEvent{Type: nucleus.EventDone})
			}},
			Sessions: &mock.SessionStore{SaveFn: func(s *nucleus.Session) error {
				seenID = s.ID
				saved = append([]nucleus.Message(nil), s.Messages...)
				return nil
			}},
			Input:  &scriptedInput{lines: []string{"what notes do I have?", "  ", "thanks"}},
			Stdout: &out,
			NewID:  func() string { return "session-1" },
		}

		require.NoError(t, app.Run(context.Background()))

		assert.Contains(t, out.String(), "· bash ls\n")
		assert.Contains(t, out.String(), "You have one note.\n")
		require.Len(t, calls, 2)
		assert.Len(t, calls[0], 1)
		assert.Equal(t, []nucleus.Message{
			{Role: nucleus.RoleUser, Content: "what notes do I have?"},
			{Role: nucleus.RoleAssistant, Content: "You have one note."},
			{Role: nucleus.RoleUser, Content: "thanks"},
		}, calls[1])
		assert.Equal(t, "session-1", seenID)
		assert.Len(t, saved, 4)
	})

	t.Run("failed turn is reported and dropped", func(t *testing.T) {
		t.Parallel()
		var (
			out   bytes.Buffer
			calls [][]nucleus.Message
		)
		fail := true
		app := &main.ChatApp{
			Assistant: &mock.Assistant{ChatFn: func(_ context.Context, messages []nucleus.Message, emit func(nucleus.ChatEvent) error) error {
				calls = append(calls, messages)
				if fail {
					fail = false
					return errors.New("turn limit reached")
				}
				return emit(nucleus.ChatEvent{Type: nucleus.EventText, Text: "ok"})
			}},
			Input:  &scriptedInput{lines: []string{"first", "second"}},
			Stdout: &out,
		}

		require.NoError(t, app.Run(context.Background()))

		assert.Contains(t, out.String(), "error: turn limit reached")
		require.Len(t, calls, 2)
		assert.Equal(t, []nucleus.Message{{Role: nucleus.RoleUser, Content: "second"}}, calls[1])
	})

	t.Run("tool failures are shown", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		app := &main.ChatApp{
			Assistant: &mock.Assistant{ChatFn: func(_ context.Context, _ []nucleus.Message, emit func(nucleus.ChatEvent) error) error {
				return emit(nucleus.ChatEvent{Type: nucleus.EventToolResult, ToolName: "str_replace_based_edit_tool", Output: "Error: no match\nmore", IsError: true})
			}},
			Input:  &scriptedInput{lines: []string{"fix typo"}},
			Stdout: &out,
		}

		require.NoError(t, app.Run(context.Background()))

		assert.Contains(t, out.String(), "str_replace_based_edit_tool failed: Error: no match …")
	})

	t.Run("new starts a fresh session", func(t *testing.T) {
		t.Parallel()
		var ids []string
		n := 0
		app := &main.ChatApp{
			Assistant: &mock.Assistant{ChatFn: func(_ context.Context, _ []nucleus.Message, emit func(nucleus.ChatEvent) error) error {
				return emit(nucleus.ChatEvent{Type: nucleus.EventText, Text: "hi"})
			}},
			Sessions: &mock.SessionStore{SaveFn: func(s *nucleus.Session) error {
				ids = append(ids, s.ID)
				return nil
			}},
			Input:  &scriptedInput{lines: []string{"one", "/new", "two", "/quit", "never"}},
			Stdout: io.Discard,
			NewID: func() string {
				n++
				return []string{"a", "b"}[n-1]
			},
		}

		require.NoError(t, app.Run(context.Background()))

		assert.Equal(t, []string{"a", "b"}, ids)
	})

	t.Run("reply is rendered", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		app := &main.ChatApp{
			Assistant: &mock.Assistant{ChatFn: func(_ context.Context, _ []nucleus.Message, emit func(nucleus.ChatEvent) error) error {
				return emit(nucleus.ChatEvent{Type: nucleus.EventText, Text: "**done**"})
			}},
			Input:  &scriptedInput{lines: []string{"go"}},
			Stdout: &out,
			Render: strings.ToUpper,
		}

		require.NoError(t, app.Run(context.Background()))

		assert.Contains(t, out.String(), "**DONE**\n")
	})

	t.Run("cancelled context ends the session", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		app := &main.ChatApp{
			Assistant: &mock.Assistant{ChatFn: func(ctx context.Context, _ []nucleus.Message, _ func(nucleus.ChatEvent) error) error {
				cancel()
				return ctx.Err()
			}},
			Input:  &scriptedInput{lines: []string{"go", "again"}},
			Stdout: io.Discard,
		}

		require.ErrorIs(t, app.Run(ctx), context.Canceled)
	})
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	p, err := main.NewParser(config.ParserLenient)
	require.NoError(t, err)
	assert.IsType(t, &unidiff.Parser{}, p)

	p, err = main.NewParser(config.ParserGitDiff)
	require.NoError(t, err)
	assert.IsType(t, &gitdiff.Parser{}, p)

	_, err = main.NewParser("strict")
	require.Error(t, err)
}

func TestNewAgent(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.NotesDir = t.TempDir()

	agent := main.NewAgent(nil, cfg, &mock.DiffSource{}, unidiff.NewParser(), main.NewLogger(cfg, io.Discard))

	require.NotNil(t, agent)
}

func TestNewMarkdownRenderer(t *testing.T) {
	t.Parallel()

	for _, theme := range []string{"dark", "light"} {
		t.Run(theme, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			cfg.UI.Theme = theme

			render, err := main.NewMarkdownRenderer(cfg)

			require.NoError(t, err)
			assert.Contains(t, render("# Groceries\n\n- milk\n"), "Groceries")
		})
	}
}

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	root := main.NewRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "diff", "chat", "parse"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("notes-dir"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
