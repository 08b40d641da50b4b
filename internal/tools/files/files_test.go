package files

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadMissingFile(t *testing.T) {
	tool := NewReadTool()
	env, err := tool.Execute(context.Background(), map[string]any{
		"path": filepath.Join(t.TempDir(), "absent.txt"),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !env.HasError() {
		t.Fatalf("expected error envelope, got %v", env)
	}
	if env["content"] != nil {
		t.Fatalf("content should be nil on failure: %v", env)
	}
}

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "notes.txt")

	writeTool := NewWriteTool()
	env, err := writeTool.Execute(context.Background(), map[string]any{
		"path":    path,
		"content": "hello world",
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if env["success"] != true {
		t.Fatalf("write envelope = %v", env)
	}

	readTool := NewReadTool()
	env, err = readTool.Execute(context.Background(), map[string]any{"path": path})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if env["content"] != "hello world" {
		t.Fatalf("read envelope = %v", env)
	}
}

func TestWriteRefusesOverwriteByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	tool := NewWriteTool()
	env, err := tool.Execute(context.Background(), map[string]any{
		"path":    path,
		"content": "replacement",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if env["success"] != false || !env.HasError() {
		t.Fatalf("expected overwrite refusal, got %v", env)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "original" {
		t.Fatalf("file was modified: %q", data)
	}

	env, err = tool.Execute(context.Background(), map[string]any{
		"path":      path,
		"content":   "replacement",
		"overwrite": true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if env["success"] != true {
		t.Fatalf("overwrite=true failed: %v", env)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "replacement" {
		t.Fatalf("overwrite did not apply: %q", data)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dest := filepath.Join(dir, "nested", "dest.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	tool := NewCopyTool()
	env, err := tool.Execute(context.Background(), map[string]any{
		"source_path":      src,
		"destination_path": dest,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if env["success"] != true {
		t.Fatalf("copy envelope = %v", env)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "payload" {
		t.Fatalf("dest content = %q, err = %v", data, err)
	}

	// Existing destination without overwrite.
	env, _ = tool.Execute(context.Background(), map[string]any{
		"source_path":      src,
		"destination_path": dest,
	})
	if env["success"] != false {
		t.Fatalf("expected overwrite refusal, got %v", env)
	}
}

func TestCopyMissingSource(t *testing.T) {
	dir := t.TempDir()
	tool := NewCopyTool()
	env, err := tool.Execute(context.Background(), map[string]any{
		"source_path":      filepath.Join(dir, "absent.txt"),
		"destination_path": filepath.Join(dir, "dest.txt"),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if env["success"] != false || !env.HasError() {
		t.Fatalf("expected failure envelope, got %v", env)
	}
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"b.txt", "a.txt", filepath.Join("sub", "deep.txt")} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	tool := NewListTool()
	env, err := tool.Execute(context.Background(), map[string]any{"path": dir})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	entries, ok := env["entries"].([]string)
	if !ok {
		t.Fatalf("entries = %T %v", env["entries"], env["entries"])
	}
	sep := string(os.PathSeparator)
	want := []string{"a.txt", "b.txt", "sub" + sep}
	if strings.Join(entries, ",") != strings.Join(want, ",") {
		t.Fatalf("entries = %v, want %v", entries, want)
	}

	env, err = tool.Execute(context.Background(), map[string]any{"path": dir, "recursive": true})
	if err != nil {
		t.Fatalf("execute recursive: %v", err)
	}
	entries = env["entries"].([]string)
	want = []string{"a.txt", "b.txt", "sub" + sep, filepath.Join("sub", "deep.txt")}
	if strings.Join(entries, ",") != strings.Join(want, ",") {
		t.Fatalf("recursive entries = %v, want %v", entries, want)
	}
}

func TestListNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	tool := NewListTool()
	env, _ := tool.Execute(context.Background(), map[string]any{"path": path})
	if !env.HasError() {
		t.Fatalf("expected error for non-directory, got %v", env)
	}
}

func TestCreateDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "c")

	tool := NewMkdirTool()
	env, err := tool.Execute(context.Background(), map[string]any{"path": target})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if env["success"] != true {
		t.Fatalf("mkdir envelope = %v", env)
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	// Idempotent on an existing directory.
	env, _ = tool.Execute(context.Background(), map[string]any{"path": target})
	if env["success"] != true {
		t.Fatalf("existing directory should succeed: %v", env)
	}

	// A file in the way is an error.
	filePath := filepath.Join(dir, "occupied")
	if err := os.WriteFile(filePath, nil, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	env, _ = tool.Execute(context.Background(), map[string]any{"path": filePath})
	if env["success"] != false {
		t.Fatalf("expected failure for file path, got %v", env)
	}
}
