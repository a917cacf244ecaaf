package nucleus

import (
	"fmt"
	"strings"
	"time"
)

// PromptInput is everything the system prompt is built from.
type PromptInput struct {
	NotesDir string    // Absolute path of the notes repository
	Now      time.Time // Used for the current date line
	Changes  *Diff     // Uncommitted changes, nil when unknown
	Extra    string    // Operator-supplied instructions appended verbatim
}

// PromptFormatter renders the system prompt for the assistant.
type PromptFormatter interface {
	Format(input PromptInput) string
}

// DefaultFormatter implements PromptFormatter with the standard format.
type DefaultFormatter struct{}

// Format renders the system prompt as structured text.
func (f *DefaultFormatter) Format(input PromptInput) string {
	var sb strings.Builder

	sb.WriteString("You are a note-taking assistant working inside a git repository of markdown notes.\n")
	sb.WriteString("Use the bash tool to inspect the repository and run git, and the str_replace_based_edit_tool to view, create and edit notes.\n")
	sb.WriteString("Keep edits small and focused. Do not commit unless the user asks you to.\n\n")

	sb.WriteString("<context>\n")
	fmt.Fprintf(&sb, "Notes directory: %s\n", input.NotesDir)
	if !input.Now.IsZero() {
		fmt.Fprintf(&sb, "Today: %s\n", input.Now.Format("Monday, 2 January 2006"))
	}
	sb.WriteString("</context>\n")

	if input.Changes != nil && len(input.Changes.Files) > 0 {
		sb.WriteString("\n<uncommitted-changes>\n")
		formatDiffSummary(&sb, input.Changes)
		sb.WriteString("</uncommitted-changes>\n")
	}

	if extra := strings.TrimSpace(input.Extra); extra != "" {
		sb.WriteString("\n")
		sb.WriteString(extra)
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatDiffSummary writes a condensed summary of a diff (files and change counts).
func formatDiffSummary(sb *strings.Builder, diff *Diff) {
	for _, file := range diff.Files {
		adds, dels := file.Stats()
		fmt.Fprintf(sb, "  %s: +%d/-%d\n", file.FilePath, adds, dels)
	}
}
