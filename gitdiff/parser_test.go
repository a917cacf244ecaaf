package gitdiff_test

import (
	"testing"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/HariCharanK/Nucleus/gitdiff"
	"github.com/HariCharanK/Nucleus/unidiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse_EmptyInput(t *testing.T) {
	t.Parallel()

	p := gitdiff.NewParser()

	diff := p.Parse("")

	require.NotNil(t, diff)
	assert.Empty(t, diff.Files)
}

func TestParser_Parse_ModifiedFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/note.md b/note.md
index abc123..def456 100644
--- a/note.md
+++ b/note.md
@@ -1,2 +1,3 @@
 # Hello
-old line
+new line
+added line
`

	p := gitdiff.NewParser()

	diff := p.Parse(input)

	require.Len(t, diff.Files, 1)
	f := diff.Files[0]
	assert.Equal(t, "note.md", f.FilePath)
	assert.Equal(t, "diff --git a/note.md b/note.md", f.Header)

	require.Len(t, f.Hunks, 1)
	h := f.Hunks[0]
	assert.Equal(t, "@@ -1,2 +1,3 @@", h.Header)
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.ContextLine{OldLineNo: 1, NewLineNo: 1, Content: "# Hello"},
		nucleus.RemoveLine{OldLineNo: 2, Content: "old line"},
		nucleus.AddLine{NewLineNo: 2, Content: "new line"},
		nucleus.AddLine{NewLineNo: 3, Content: "added line"},
	}, h.Lines)
}

func TestParser_Parse_AddedFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/new.md b/new.md
new file mode 100644
--- /dev/null
+++ b/new.md
@@ -0,0 +1,3 @@
+# New
+
+body
`

	p := gitdiff.NewParser()

	diff := p.Parse(input)

	require.Len(t, diff.Files, 1)
	f := diff.Files[0]
	assert.Equal(t, "new.md", f.FilePath)
	assert.Equal(t, "diff --git a/new.md b/new.md", f.Header)

	require.Len(t, f.Hunks, 1)
	require.Len(t, f.Hunks[0].Lines, 3)
	for i, line := range f.Hunks[0].Lines {
		assert.Equal(t, nucleus.AddLine{NewLineNo: i + 1, Content: []string{"# New", "", "body"}[i]}, line)
	}
}

func TestParser_Parse_DeletedFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/old.md b/old.md
deleted file mode 100644
index 1234567..0000000
--- a/old.md
+++ /dev/null
@@ -1,2 +0,0 @@
-first
-second
`

	p := gitdiff.NewParser()

	diff := p.Parse(input)

	require.Len(t, diff.Files, 1)
	f := diff.Files[0]
	assert.Equal(t, "old.md", f.FilePath)
	require.Len(t, f.Hunks, 1)
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.RemoveLine{OldLineNo: 1, Content: "first"},
		nucleus.RemoveLine{OldLineNo: 2, Content: "second"},
	}, f.Hunks[0].Lines)
}

func TestParser_Parse_RenamedFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/old.md b/new.md
similarity index 100%
rename from old.md
rename to new.md
`

	p := gitdiff.NewParser()

	diff := p.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, "new.md", diff.Files[0].FilePath)
	assert.Equal(t, "diff --git a/old.md b/new.md", diff.Files[0].Header)
	assert.Empty(t, diff.Files[0].Hunks)
}

func TestParser_Parse_NoNewlineAtEOF(t *testing.T) {
	t.Parallel()

	input := `diff --git a/file.txt b/file.txt
index 1234567..abcdefg 100644
--- a/file.txt
+++ b/file.txt
@@ -1 +1 @@
-old
\ No newline at end of file
+new
\ No newline at end of file
`

	p := gitdiff.NewParser()

	diff := p.Parse(input)

	require.Len(t, diff.Files, 1)
	require.Len(t, diff.Files[0].Hunks, 1)
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.RemoveLine{OldLineNo: 1, Content: "old"},
		nucleus.NoNewlineLine{Content: `\ No newline at end of file`},
		nucleus.AddLine{NewLineNo: 1, Content: "new"},
		nucleus.NoNewlineLine{Content: `\ No newline at end of file`},
	}, diff.Files[0].Hunks[0].Lines)
}

func TestParser_Parse_MalformedInputDegradesToEmpty(t *testing.T) {
	t.Parallel()

	// go-gitdiff rejects a git header with a single path
	input := `diff --git a/file.md
@@ -1,1 +1,1 @@ incomplete header
`

	p := gitdiff.NewParser()

	diff := p.Parse(input)

	require.NotNil(t, diff)
	assert.Empty(t, diff.Files)
}

func TestParser_AgreesWithLenientParser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{
			name: "modified and added files",
			input: `diff --git a/a.md b/a.md
index 1111111..2222222 100644
--- a/a.md
+++ b/a.md
@@ -1,3 +1,4 @@
 one
-two
+TWO
+two and a half
 three
@@ -20,2 +21,2 @@
 twenty
-twenty-one
+21
diff --git a/b.md b/b.md
new file mode 100644
--- /dev/null
+++ b/b.md
@@ -0,0 +1,2 @@
+hello
+world
`,
		},
		{
			name: "single-line hunk header with section",
			input: `diff --git a/title.md b/title.md
index 1111111..2222222 100644
--- a/title.md
+++ b/title.md
@@ -1 +1 @@ ## Title
-Draft
+Final
`,
		},
		{
			name: "missing trailing newline",
			input: `diff --git a/tail.md b/tail.md
index 1111111..2222222 100644
--- a/tail.md
+++ b/tail.md
@@ -1 +1 @@
-old
\ No newline at end of file
+new
\ No newline at end of file
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			strict := gitdiff.NewParser().Parse(tt.input)
			lenient := unidiff.Parse(tt.input)

			assert.Equal(t, lenient, strict)
		})
	}
}

func TestParser_Parse_KeepsHeadersVerbatim(t *testing.T) {
	t.Parallel()

	input := `diff --git a/title.md b/title.md
index 1111111..2222222 100644
--- a/title.md
+++ b/title.md
@@ -1 +1 @@ ## Title
-Draft
+Final
`

	diff := gitdiff.NewParser().Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, "diff --git a/title.md b/title.md", diff.Files[0].Header)
	require.Len(t, diff.Files[0].Hunks, 1)
	assert.Equal(t, "@@ -1 +1 @@ ## Title", diff.Files[0].Hunks[0].Header)
}
