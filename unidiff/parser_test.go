package unidiff_test

import (
	"strings"
	"sync"
	"testing"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/HariCharanK/Nucleus/unidiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyInput(t *testing.T) {
	t.Parallel()

	diff := unidiff.Parse("")

	require.NotNil(t, diff)
	assert.Empty(t, diff.Files)
}

func TestParse_NoFileHeader(t *testing.T) {
	t.Parallel()

	input := `--- a/note.md
+++ b/note.md
@@ -1 +1 @@
-a
+b
`

	diff := unidiff.Parse(input)

	assert.Empty(t, diff.Files)
}

func TestParse_ModifiedFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/note.md b/note.md
index abc123..def456 100644
--- a/note.md
+++ b/note.md
@@ -1,2 +1,3 @@
 # Hello
-old line
+new line
+added line`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	f := diff.Files[0]
	assert.Equal(t, "diff --git a/note.md b/note.md", f.Header)
	assert.Equal(t, "note.md", f.FilePath)

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

func TestParse_TrailingNewlineDoesNotAddContextLine(t *testing.T) {
	t.Parallel()

	input := `diff --git a/note.md b/note.md
--- a/note.md
+++ b/note.md
@@ -1 +1 @@
-a
+b
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	require.Len(t, diff.Files[0].Hunks, 1)
	assert.Len(t, diff.Files[0].Hunks[0].Lines, 2)
}

func TestParse_UntrackedFileBlock(t *testing.T) {
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

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	f := diff.Files[0]
	assert.Equal(t, "new.md", f.FilePath)
	require.Len(t, f.Hunks, 1)
	require.Len(t, f.Hunks[0].Lines, 3)
	for i, line := range f.Hunks[0].Lines {
		assert.Equal(t, nucleus.LineAdd, line.Kind())
		oldNo, newNo := line.LineNumbers()
		assert.Nil(t, oldNo)
		require.NotNil(t, newNo)
		assert.Equal(t, i+1, *newNo)
	}
	assert.Equal(t, "", f.Hunks[0].Lines[1].Text())
}

func TestParse_NoNewlineMarker(t *testing.T) {
	t.Parallel()

	input := `diff --git a/note.md b/note.md
--- a/note.md
+++ b/note.md
@@ -1,2 +1,2 @@
 first
-second
\ No newline at end of file
+second!
\ No newline at end of file
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.ContextLine{OldLineNo: 1, NewLineNo: 1, Content: "first"},
		nucleus.RemoveLine{OldLineNo: 2, Content: "second"},
		nucleus.NoNewlineLine{Content: `\ No newline at end of file`},
		nucleus.AddLine{NewLineNo: 2, Content: "second!"},
		nucleus.NoNewlineLine{Content: `\ No newline at end of file`},
	}, diff.Files[0].Hunks[0].Lines)
}

func TestParse_MultipleFiles(t *testing.T) {
	t.Parallel()

	input := `diff --git a/a.md b/a.md
index 1111111..2222222 100644
--- a/a.md
+++ b/a.md
@@ -1 +1 @@
-a
+A
diff --git a/b.md b/b.md
index 3333333..4444444 100644
--- a/b.md
+++ b/b.md
@@ -1,3 +1,3 @@
 one
-two
+TWO
 three
@@ -10,2 +10,3 @@ ## Section
 ten
+ten and a half
 eleven
diff --git a/c.md b/c.md
deleted file mode 100644
index 5555555..0000000
--- a/c.md
+++ /dev/null
@@ -1 +0,0 @@
-gone
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 3)
	assert.Equal(t, "a.md", diff.Files[0].FilePath)
	assert.Equal(t, "b.md", diff.Files[1].FilePath)
	// "+++ /dev/null" does not match "+++ b/", so the header path stands.
	assert.Equal(t, "c.md", diff.Files[2].FilePath)

	require.Len(t, diff.Files[1].Hunks, 2)
	second := diff.Files[1].Hunks[1]
	assert.Equal(t, "@@ -10,2 +10,3 @@ ## Section", second.Header)
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.ContextLine{OldLineNo: 10, NewLineNo: 10, Content: "ten"},
		nucleus.AddLine{NewLineNo: 11, Content: "ten and a half"},
		nucleus.ContextLine{OldLineNo: 11, NewLineNo: 12, Content: "eleven"},
	}, second.Lines)

	deleted := diff.Files[2].Hunks[0]
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.RemoveLine{OldLineNo: 1, Content: "gone"},
	}, deleted.Lines)
}

func TestParse_RenameUsesNewPath(t *testing.T) {
	t.Parallel()

	input := `diff --git a/old name.md b/new name.md
similarity index 90%
rename from old name.md
rename to new name.md
index 1111111..2222222 100644
--- a/old name.md
+++ b/renamed/new name.md
@@ -1 +1 @@
-x
+y
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, "renamed/new name.md", diff.Files[0].FilePath)
}

func TestParse_FileWithoutHunks(t *testing.T) {
	t.Parallel()

	input := `diff --git a/script.sh b/script.sh
old mode 100644
new mode 100755
diff --git a/a.md b/c.md
similarity index 100%
rename from a.md
rename to c.md
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 2)
	assert.Equal(t, "script.sh", diff.Files[0].FilePath)
	assert.Empty(t, diff.Files[0].Hunks)
	assert.NotNil(t, diff.Files[0].Hunks)
	assert.Equal(t, "c.md", diff.Files[1].FilePath)
	assert.Empty(t, diff.Files[1].Hunks)
}

func TestParse_BinaryFile(t *testing.T) {
	t.Parallel()

	input := `diff --git a/image.png b/image.png
new file mode 100644
index 0000000..1234567
Binary files /dev/null and b/image.png differ
diff --git a/note.md b/note.md
--- a/note.md
+++ b/note.md
@@ -1 +1 @@
-a
+b
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 2)
	assert.Equal(t, "image.png", diff.Files[0].FilePath)
	assert.Empty(t, diff.Files[0].Hunks)
	assert.Equal(t, "note.md", diff.Files[1].FilePath)
	assert.Len(t, diff.Files[1].Hunks, 1)
}

func TestParse_UnresolvablePathIsDropped(t *testing.T) {
	t.Parallel()

	input := `diff --git x/weird y/weird
--- x/weird
+++ y/weird
@@ -1 +1 @@
-a
+b
diff --git a/kept.md b/kept.md
--- a/kept.md
+++ b/kept.md
@@ -1 +1 @@
-a
+b
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, "kept.md", diff.Files[0].FilePath)
}

func TestParse_NewPathRescuesNonStandardHeader(t *testing.T) {
	t.Parallel()

	input := `diff --git x/weird y/weird
--- a/weird
+++ b/weird
@@ -1 +1 @@
-a
+b
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, "weird", diff.Files[0].FilePath)
}

func TestParse_MissingNewPathLine(t *testing.T) {
	t.Parallel()

	input := `diff --git a/note.md b/note.md
--- a/note.md
@@ -1 +1 @@
-a
+b
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, "note.md", diff.Files[0].FilePath)
	require.Len(t, diff.Files[0].Hunks, 1)
	assert.Len(t, diff.Files[0].Hunks[0].Lines, 2)
}

func TestParse_MissingOldPathLine(t *testing.T) {
	t.Parallel()

	input := `diff --git a/note.md b/note.md
+++ b/other.md
@@ -1 +1 @@
-a
+b
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, "other.md", diff.Files[0].FilePath)
	require.Len(t, diff.Files[0].Hunks, 1)
}

func TestParse_MalformedHunkHeaderDefaultsToOne(t *testing.T) {
	t.Parallel()

	input := `diff --git a/note.md b/note.md
--- a/note.md
+++ b/note.md
@@ something odd @@
 ctx
-gone
+here
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.ContextLine{OldLineNo: 1, NewLineNo: 1, Content: "ctx"},
		nucleus.RemoveLine{OldLineNo: 2, Content: "gone"},
		nucleus.AddLine{NewLineNo: 2, Content: "here"},
	}, diff.Files[0].Hunks[0].Lines)
}

func TestParse_BodyLinesThatLookLikeHeaders(t *testing.T) {
	t.Parallel()

	// Inside a hunk, "--- x" is a removed "-- x" line and "+++ y" an added "++ y" line.
	input := `diff --git a/note.md b/note.md
--- a/note.md
+++ b/note.md
@@ -1,2 +1,2 @@
--- x
+++ y
 same
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.RemoveLine{OldLineNo: 1, Content: "-- x"},
		nucleus.AddLine{NewLineNo: 1, Content: "++ y"},
		nucleus.ContextLine{OldLineNo: 2, NewLineNo: 2, Content: "same"},
	}, diff.Files[0].Hunks[0].Lines)
}

func TestParse_EmptyContextLine(t *testing.T) {
	t.Parallel()

	input := "diff --git a/n.md b/n.md\n--- a/n.md\n+++ b/n.md\n@@ -1,3 +1,3 @@\n a\n\n-b\n+c\n"

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, []nucleus.DiffLine{
		nucleus.ContextLine{OldLineNo: 1, NewLineNo: 1, Content: "a"},
		nucleus.ContextLine{OldLineNo: 2, NewLineNo: 2, Content: ""},
		nucleus.RemoveLine{OldLineNo: 3, Content: "b"},
		nucleus.AddLine{NewLineNo: 3, Content: "c"},
	}, diff.Files[0].Hunks[0].Lines)
}

func TestParse_LeadingNoiseIsIgnored(t *testing.T) {
	t.Parallel()

	input := `warning: LF will be replaced by CRLF
some other chatter
diff --git a/note.md b/note.md
--- a/note.md
+++ b/note.md
@@ -1 +1 @@
-a
+b
`

	diff := unidiff.Parse(input)

	require.Len(t, diff.Files, 1)
	assert.Equal(t, "note.md", diff.Files[0].FilePath)
}

func TestParse_DeclaredLengthsMatchLineCounts(t *testing.T) {
	t.Parallel()

	input := `diff --git a/a.md b/a.md
--- a/a.md
+++ b/a.md
@@ -3,6 +3,7 @@ intro
 one
 two
-three
+THREE
+three and a half
 four
 five
 six
\ No newline at end of file
diff --git a/b.md b/b.md
--- a/b.md
+++ b/b.md
@@ -1 +1 @@
-x
+y
`

	diff := unidiff.Parse(input)

	for _, f := range diff.Files {
		for _, h := range f.Hunks {
			r, ok := nucleus.ParseHunkRange(h.Header)
			require.True(t, ok)

			var oldCount, newCount int
			lastOld, lastNew := r.OldStart-1, r.NewStart-1
			for _, l := range h.Lines {
				oldNo, newNo := l.LineNumbers()
				if oldNo != nil {
					oldCount++
					assert.Greater(t, *oldNo, lastOld, "old line numbers increase in %s", f.FilePath)
					lastOld = *oldNo
				}
				if newNo != nil {
					newCount++
					assert.Greater(t, *newNo, lastNew, "new line numbers increase in %s", f.FilePath)
					lastNew = *newNo
				}
			}
			assert.Equal(t, r.OldLines, oldCount, "old length of %s %s", f.FilePath, h.Header)
			assert.Equal(t, r.NewLines, newCount, "new length of %s %s", f.FilePath, h.Header)
		}
	}
}

func TestParse_IsPure(t *testing.T) {
	t.Parallel()

	input := `diff --git a/note.md b/note.md
--- a/note.md
+++ b/note.md
@@ -1,2 +1,2 @@
 a
-b
+c
`

	first := unidiff.Parse(input)
	second := unidiff.Parse(input)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestParse_Concurrent(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for _, name := range []string{"a", "b", "c", "d"} {
		sb.WriteString("diff --git a/" + name + ".md b/" + name + ".md\n")
		sb.WriteString("--- a/" + name + ".md\n+++ b/" + name + ".md\n")
		sb.WriteString("@@ -1 +1 @@\n-old\n+new\n")
	}
	input := sb.String()
	want := unidiff.Parse(input)

	var wg sync.WaitGroup
	results := make([]*nucleus.Diff, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = unidiff.NewParser().Parse(input)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
	assert.Len(t, want.Files, 4)
}
