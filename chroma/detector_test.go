package chroma_test

import (
	"testing"

	"github.com/HariCharanK/Nucleus/chroma"
	"github.com/stretchr/testify/assert"
)

func TestDetector_DetectFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "journal/2026-03-14.md", want: "markdown"},
		{path: "README.markdown", want: "markdown"},
		{path: "scripts/sync.go", want: "Go"},
		{path: "app.py", want: "Python"},
		{path: "config.yaml", want: "YAML"},
		{path: "b/ideas/list.md", want: "markdown"},
		{path: "a/main.go", want: "Go"},
		{path: "file.unknownext", want: ""},
	}

	detector := chroma.NewDetector()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, detector.DetectFromPath(tt.path))
		})
	}
}
