package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.Tool = (*Editor)(nil)

// Editor views and edits files in the notes directory.
type Editor struct {
	dir string
}

// NewEditor creates an Editor rooted at dir.
func NewEditor(dir string) *Editor {
	return &Editor{dir: dir}
}

func (e *Editor) Name() string { return "str_replace_based_edit_tool" }

func (e *Editor) Description() string {
	return `View, create and edit files in the notes directory.
* view: show a file with line numbers, or list a directory
* create: write file_text to path, replacing any existing file
* str_replace: replace old_str with new_str; old_str must match exactly once
* insert: insert new_str after line insert_line (0 inserts at the top)`
}

func (e *Editor) Parameters() *nucleus.Schema {
	return &nucleus.Schema{
		Type: "object",
		Properties: map[string]*nucleus.Schema{
			"command": {
				Type:        "string",
				Description: "The operation to perform.",
				Enum:        []string{"view", "create", "str_replace", "insert"},
			},
			"path":        {Type: "string", Description: "File or directory path, relative to the notes directory."},
			"file_text":   {Type: "string", Description: "Content for create."},
			"old_str":     {Type: "string", Description: "Exact text to replace for str_replace."},
			"new_str":     {Type: "string", Description: "Replacement text for str_replace, or text to insert for insert."},
			"insert_line": {Type: "integer", Description: "Line after which to insert for insert."},
			"view_range": {
				Type:        "array",
				Description: "Optional [start, end] line range for view; end -1 means end of file.",
				Items:       &nucleus.Schema{Type: "integer"},
			},
		},
		Required: []string{"command", "path"},
	}
}

// Run dispatches to the requested editor command.
func (e *Editor) Run(_ context.Context, args map[string]any) (string, error) {
	command, err := requireString(args, "command")
	if err != nil {
		return "", err
	}
	rawPath, err := requireString(args, "path")
	if err != nil {
		return "", err
	}
	path, err := resolvePath(e.dir, rawPath)
	if err != nil {
		return "", err
	}

	switch command {
	case "view":
		return e.view(path, args)
	case "create":
		return e.create(path, rawPath, args)
	case "str_replace":
		return e.strReplace(path, rawPath, args)
	case "insert":
		return e.insert(path, rawPath, args)
	default:
		return "", fmt.Errorf("unknown command %q", command)
	}
}

func (e *Editor) view(path string, args map[string]any) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return listDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	lines := splitFileLines(string(data))

	start, end := 1, len(lines)
	if r, ok := intSliceArg(args, "view_range"); ok {
		if len(r) != 2 {
			return "", errors.New("view_range must have exactly two elements")
		}
		start = r[0]
		if r[1] != -1 {
			end = r[1]
		}
		if start < 1 || start > len(lines) || end < start || end > len(lines) {
			return "", fmt.Errorf("invalid view_range [%d, %d] for file with %d lines", r[0], r[1], len(lines))
		}
	}

	var sb strings.Builder
	for i := start; i <= end; i++ {
		fmt.Fprintf(&sb, "%6d\t%s\n", i, lines[i-1])
	}
	return sb.String(), nil
}

func listDir(path string) (string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "(empty directory)", nil
	}
	return strings.Join(names, "\n"), nil
}

func (e *Editor) create(path, display string, args map[string]any) (string, error) {
	text, err := requireString(args, "file_text")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("File created successfully at: %s", display), nil
}

func (e *Editor) strReplace(path, display string, args map[string]any) (string, error) {
	oldStr, err := requireString(args, "old_str")
	if err != nil {
		return "", err
	}
	if oldStr == "" {
		return "", errors.New("old_str must not be empty")
	}
	newStr, _ := stringArg(args, "new_str")

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := string(data)

	switch n := strings.Count(content, oldStr); n {
	case 0:
		return "", fmt.Errorf("no match found for old_str in %s", display)
	case 1:
	default:
		return "", fmt.Errorf("old_str matches %d times in %s (lines %s); add more context to make it unique",
			n, display, formatLineNumbers(matchLines(content, oldStr)))
	}

	updated := strings.Replace(content, oldStr, newStr, 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("The file %s has been edited.", display), nil
}

func (e *Editor) insert(path, display string, args map[string]any) (string, error) {
	at, ok := intArg(args, "insert_line")
	if !ok {
		return "", errors.New(`missing required parameter "insert_line"`)
	}
	newStr, err := requireString(args, "new_str")
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := string(data)
	lines := splitFileLines(content)
	if at < 0 || at > len(lines) {
		return "", fmt.Errorf("insert_line %d out of range (file has %d lines)", at, len(lines))
	}

	inserted := splitFileLines(newStr)
	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:at]...)
	out = append(out, inserted...)
	out = append(out, lines[at:]...)

	result := strings.Join(out, "\n")
	if strings.HasSuffix(content, "\n") || content == "" {
		result += "\n"
	}
	if err := os.WriteFile(path, []byte(result), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("The file %s has been edited.", display), nil
}

// splitFileLines splits content into lines without a trailing empty line for
// the terminating newline.
func splitFileLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// matchLines returns the 1-based line numbers where each occurrence of sub starts.
func matchLines(content, sub string) []int {
	var lines []int
	offset := 0
	for {
		i := strings.Index(content[offset:], sub)
		if i < 0 {
			return lines
		}
		pos := offset + i
		lines = append(lines, strings.Count(content[:pos], "\n")+1)
		offset = pos + len(sub)
	}
}

func formatLineNumbers(positions []int) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
