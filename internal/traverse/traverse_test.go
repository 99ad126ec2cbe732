package traverse

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/scangrep/scangrep/internal/option"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, tr *Traverser) []string {
	t.Helper()
	var got []string
	for e := range tr.Walk(context.Background()) {
		got = append(got, e.DisplayKey)
	}
	sort.Strings(got)
	return got
}

func TestWalkHiddenPolicy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "x.txt"), "hit")
	writeFile(t, filepath.Join(root, "a", ".hidden"), "hit")
	writeFile(t, filepath.Join(root, "b", "x.txt"), "no")

	opts := option.Default()
	opts.Recurse = true
	tr, err := New(root, opts)
	if err != nil {
		t.Fatal(err)
	}

	got := collect(t, tr)
	want := []string{"a/x.txt", "b/x.txt"}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestWalkHiddenIncluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".hidden"), "x")

	opts := option.Default()
	opts.Hidden = true
	tr, err := New(root, opts)
	if err != nil {
		t.Fatal(err)
	}

	got := collect(t, tr)
	if len(got) != 1 || got[0] != ".hidden" {
		t.Fatalf("got %v, want [.hidden]", got)
	}
}

func TestWalkExcludeGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "x")
	writeFile(t, filepath.Join(root, "a.txt"), "x")

	opts := option.Default()
	opts.ExcludeGlobs = []string{"*.go"}
	tr, err := New(root, opts)
	if err != nil {
		t.Fatal(err)
	}

	got := collect(t, tr)
	if len(got) != 1 || got[0] != "a.txt" {
		t.Fatalf("got %v, want [a.txt]", got)
	}
}

func TestWalkIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".scangrepignore"), "vendor/\n*.log\n")
	writeFile(t, filepath.Join(root, "vendor", "dep.txt"), "x")
	writeFile(t, filepath.Join(root, "app.log"), "x")
	writeFile(t, filepath.Join(root, "app.go"), "x")

	opts := option.Default()
	opts.IgnoreFiles = []string{".scangrepignore"}
	tr, err := New(root, opts)
	if err != nil {
		t.Fatal(err)
	}

	got := collect(t, tr)
	if len(got) != 1 || got[0] != "app.go" {
		t.Fatalf("got %v, want [app.go]", got)
	}
}

func TestWalkMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.txt"), "x")
	writeFile(t, filepath.Join(root, "a", "nested.txt"), "x")

	opts := option.Default()
	opts.MaxDepth = 1
	tr, err := New(root, opts)
	if err != nil {
		t.Fatal(err)
	}

	got := collect(t, tr)
	if len(got) != 1 || got[0] != "top.txt" {
		t.Fatalf("got %v, want [top.txt]", got)
	}
}

func TestWalkIgnoreBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "text.txt"), "hello")
	writeFile(t, filepath.Join(root, "bin.dat"), "a\x00b")

	opts := option.Default()
	opts.IgnoreBinary = true
	tr, err := New(root, opts)
	if err != nil {
		t.Fatal(err)
	}

	got := collect(t, tr)
	if len(got) != 1 || got[0] != "text.txt" {
		t.Fatalf("got %v, want [text.txt]", got)
	}
}
