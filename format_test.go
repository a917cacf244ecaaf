package nucleus_test

import (
	"testing"
	"time"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/stretchr/testify/assert"
)

func TestDefaultFormatter_Format(t *testing.T) {
	t.Parallel()

	t.Run("includes notes dir and date", func(t *testing.T) {
		t.Parallel()

		formatter := &nucleus.DefaultFormatter{}
		result := formatter.Format(nucleus.PromptInput{
			NotesDir: "/home/me/notes",
			Now:      time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
		})

		assert.Contains(t, result, "<context>")
		assert.Contains(t, result, "Notes directory: /home/me/notes")
		assert.Contains(t, result, "Today: Monday, 2 March 2026")
		assert.Contains(t, result, "</context>")
		assert.NotContains(t, result, "<uncommitted-changes>")
	})

	t.Run("summarises uncommitted changes", func(t *testing.T) {
		t.Parallel()

		changes := &nucleus.Diff{
			Files: []nucleus.DiffFile{
				{
					FilePath: "journal/today.md",
					Hunks: []nucleus.DiffHunk{{
						Header: "@@ -1,2 +1,3 @@",
						Lines: []nucleus.DiffLine{
							nucleus.ContextLine{OldLineNo: 1, NewLineNo: 1, Content: "# Today"},
							nucleus.RemoveLine{OldLineNo: 2, Content: "- old"},
							nucleus.AddLine{NewLineNo: 2, Content: "- new"},
							nucleus.AddLine{NewLineNo: 3, Content: "- more"},
						},
					}},
				},
			},
		}

		formatter := &nucleus.DefaultFormatter{}
		result := formatter.Format(nucleus.PromptInput{NotesDir: "/n", Changes: changes})

		assert.Contains(t, result, "<uncommitted-changes>")
		assert.Contains(t, result, "  journal/today.md: +2/-1\n")
	})

	t.Run("appends extra instructions", func(t *testing.T) {
		t.Parallel()

		formatter := &nucleus.DefaultFormatter{}
		result := formatter.Format(nucleus.PromptInput{NotesDir: "/n", Extra: "  Always answer in French.  "})

		assert.Contains(t, result, "\nAlways answer in French.\n")
	})

	t.Run("omits date when zero", func(t *testing.T) {
		t.Parallel()

		formatter := &nucleus.DefaultFormatter{}
		result := formatter.Format(nucleus.PromptInput{NotesDir: "/n"})

		assert.NotContains(t, result, "Today:")
	})
}
