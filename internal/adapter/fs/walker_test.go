package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkerIncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "core", "B.java"), "class B {}")
	writeFile(t, filepath.Join(root, "core", "A.java"), "class A {}")
	writeFile(t, filepath.Join(root, "core", "notes.md"), "# notes")
	writeFile(t, filepath.Join(root, "build", "Gen.java"), "class Gen {}")

	w := NewWalker([]string{"**/*.java"}, []string{"**/build/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0].Path) != "A.java" || filepath.Base(files[1].Path) != "B.java" {
		t.Errorf("expected sorted A.java, B.java, got %s, %s", files[0].Path, files[1].Path)
	}
	if files[0].Size != int64(len("class A {}")) {
		t.Errorf("unexpected size %d", files[0].Size)
	}
}

func TestFilesWriteFileReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.java")
	writeFile(t, path, "old")
	if err := os.Chmod(path, 0600); err != nil {
		t.Fatal(err)
	}

	files := NewFiles()
	if err := files.WriteFile(path, "new"); err != nil {
		t.Fatal(err)
	}

	got, err := files.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "new" {
		t.Errorf("expected new, got %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected permissions kept, got %v", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %v", entries)
	}
}

func TestFilesReadMissing(t *testing.T) {
	if _, err := NewFiles().ReadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error")
	}
}
