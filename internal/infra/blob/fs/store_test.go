package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"starfieldpedia/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetList(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "alpha/test.json", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "alpha/test.json" || info.Size != 5 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "alpha/test.json", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}
	g, rc, err := store.Get(ctx, "alpha/test.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "hello" || g.ETag != info.ETag || g.ContentType != "application/json" {
		t.Fatalf("unexpected get artifacts %+v vs %+v", g, info)
	}
	list, err := store.List(ctx, "alpha/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "alpha/test.json" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStore_ListsPlainFilesWrittenByHand(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for name, body := range map[string]string{
		"tau_ceti.json":  `{"systems":[]}`,
		"Alpha.JSON":     `{}`,
		".hidden.json":   `{}`,
		"notes.txt":      "x",
		".tmp-123":       "partial",
		"sub/sol.json":   `{}`,
		".git/HEAD.json": `{}`,
	} {
		path := filepath.Join(store.Root(), filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	list, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var keys []string
	for _, inf := range list {
		keys = append(keys, inf.Key)
	}
	want := []string{"Alpha.JSON", "notes.txt", "sub/sol.json", "tau_ceti.json"}
	if len(keys) != len(want) {
		t.Fatalf("unexpected keys %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("unexpected keys %v", keys)
		}
	}
	if list[0].ContentType != "application/json" || list[1].ContentType != "" {
		t.Fatalf("unexpected content types %+v", list)
	}
}

func TestStore_PathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "../escape.json", bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
		t.Fatalf("expected traversal error")
	}
	if _, _, err := store.Get(ctx, "/etc/passwd"); err == nil {
		t.Fatalf("expected absolute key error")
	}
	if _, _, err := store.Get(ctx, "  "); err == nil {
		t.Fatalf("expected empty key error")
	}
	if _, _, err := store.Get(ctx, "a/../../b"); err == nil {
		t.Fatalf("expected traversal error")
	}
}

func TestStore_MissingAndDirectory(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, _, err := store.Get(ctx, "missing.json"); !errors.Is(err, core.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	if err := os.Mkdir(filepath.Join(store.Root(), "dir.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, _, err := store.Get(ctx, "dir.json"); err == nil {
		t.Fatalf("expected directory error")
	}
}

func TestNewDefaultsAndDriver(t *testing.T) {
	wd, _ := os.Getwd()
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if _, err := New(""); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected missing default root to fail, got %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "systems"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	store, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.Root() != "./systems" || store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected defaults %s %s", store.Root(), store.Driver())
	}
}

func TestNewRejectsMissingOrFileRoot(t *testing.T) {
	base := t.TempDir()
	missing := filepath.Join(base, "sytems")
	if _, err := New(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if _, err := os.Stat(missing); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("a missing root must not be created: %v", err)
	}
	file := filepath.Join(base, "file.json")
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(file); err == nil {
		t.Fatalf("expected error for a file root")
	}
}
