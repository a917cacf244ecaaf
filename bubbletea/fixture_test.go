package bubbletea_test

const twoFileDiff = `diff --git a/todo.md b/todo.md
index 1111111..2222222 100644
--- a/todo.md
+++ b/todo.md
@@ -1,3 +1,3 @@
 # Todo
-- [ ] buy milk
+- [x] buy milk
 - call mum
diff --git a/ideas.md b/ideas.md
new file mode 100644
--- /dev/null
+++ b/ideas.md
@@ -0,0 +1,2 @@
+# Ideas
+garden
\ No newline at end of file
`
