// Package tools implements the tools the assistant uses to work on the notes
// directory: a shell and a file editor.
package tools

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	nucleus "github.com/HariCharanK/Nucleus"
)

// ErrPathOutsideRoot is returned when a tool is asked to touch a file outside
// the notes directory.
var ErrPathOutsideRoot = errors.New("path is outside the notes directory")

// Default returns the standard tool set rooted at dir.
func Default(dir string, opts ...BashOption) []nucleus.Tool {
	return []nucleus.Tool{
		NewBash(dir, opts...),
		NewEditor(dir),
	}
}

// resolvePath maps a tool-supplied path onto the filesystem, rejecting
// anything that escapes root.
func resolvePath(root, path string) (string, error) {
	if path == "" {
		return "", errors.New("path is required")
	}
	root = filepath.Clean(root)

	var full string
	if filepath.IsAbs(path) {
		full = filepath.Clean(path)
	} else {
		full = filepath.Join(root, path)
	}

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, path)
	}
	return full, nil
}

// Argument accessors. Models send JSON, so numbers arrive as float64.

func stringArg(args map[string]any, name string) (string, bool) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func requireString(args map[string]any, name string) (string, error) {
	s, ok := stringArg(args, name)
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", name)
	}
	return s, nil
}

func intArg(args map[string]any, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}

func intSliceArg(args map[string]any, name string) ([]int, bool) {
	raw, ok := args[name].([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		default:
			return nil, false
		}
	}
	return out, true
}
