package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverRustFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "src/lib.rs", "pub fn hello() {}")
	writeFile(t, dir, "src/util.rs", "fn helper() {}")
	// Non-Rust file should be ignored
	writeFile(t, dir, "readme.md", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.rs", "fn secret() {}")

	paths, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d: %v", len(paths), paths)
	}

	// Should be sorted
	if paths[0] != filepath.Join("src", "lib.rs") {
		t.Errorf("path 0: got %q", paths[0])
	}
	if paths[1] != filepath.Join("src", "util.rs") {
		t.Errorf("path 1: got %q", paths[1])
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.rs", "fn main() {}")
	writeFile(t, dir, "target/debug/build.rs", "fn b() {}")
	writeFile(t, dir, "vendor/dep.rs", "fn d() {}")
	writeFile(t, dir, ".hidden/secret.rs", "fn s() {}")

	paths, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d: %v", len(paths), paths)
	}
	if paths[0] != "main.rs" {
		t.Errorf("expected main.rs, got %q", paths[0])
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, ".gitignore", "generated.rs\n")
	writeFile(t, dir, "main.rs", "fn main() {}")
	writeFile(t, dir, "generated.rs", "fn gen() {}")

	paths, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d: %v", len(paths), paths)
	}
	if paths[0] != "main.rs" {
		t.Errorf("expected main.rs, got %q", paths[0])
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.rs", "fn real() {}")

	err := os.Symlink(filepath.Join(dir, "real.rs"), filepath.Join(dir, "link.rs"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	paths, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	if len(paths) != 1 {
		t.Fatalf("expected 1 path (no symlink), got %d", len(paths))
	}
	if paths[0] != "real.rs" {
		t.Errorf("expected real.rs, got %q", paths[0])
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	t.Parallel()

	if _, err := Files(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for a missing root")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
