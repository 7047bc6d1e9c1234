package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to a file, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// TempDir returns a canonical (symlink-free) temporary directory that is
// removed when the test ends. Paths built from it compare equal to the
// canonical paths reported by the resolver.
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks error: %v", err)
	}
	return dir
}

// CreateFileTree creates multiple files from a map of slash path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// Project creates a file tree in a fresh TempDir and returns its root.
func Project(t *testing.T, files map[string]string) string {
	t.Helper()
	root := TempDir(t)
	CreateFileTree(t, root, files)
	return root
}

// Symlink creates link pointing at target, skipping the test when the
// platform does not allow it.
func Symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
}

// Paths joins each slash path onto root.
func Paths(root string, names ...string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = filepath.Join(root, filepath.FromSlash(name))
	}
	return out
}
