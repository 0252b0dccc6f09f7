package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	in := []record{{ID: "1", Name: "one"}, {ID: "2", Name: "two"}}
	if err := store.Save(ctx, "records", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var out []record
	if err := store.Load(ctx, "records", &out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Load() returned %d records, want 2", len(out))
	}
	if out[0] != in[0] || out[1] != in[1] {
		t.Errorf("Load() = %v, want %v", out, in)
	}
}

func TestFileStoreMissingCollection(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	var out []record
	if err := store.Load(context.Background(), "absent", &out); err != nil {
		t.Fatalf("Load() error = %v, want nil for absent collection", err)
	}
	if len(out) != 0 {
		t.Errorf("Load() of absent collection = %v, want empty", out)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "records", []record{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, "records", []record{{ID: "3"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var out []record
	if err := store.Load(ctx, "records", &out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "3" {
		t.Errorf("Load() after overwrite = %v, want single record with ID 3", out)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.Save(context.Background(), "records", []record{{ID: "1"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if e.Name() != "records.json" && strings.Contains(e.Name(), "records-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "records.json")); err != nil {
		t.Errorf("records.json missing: %v", err)
	}
}

func TestFileStoreCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := NewFileStore(dir); err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("data dir not created: %v", err)
	}
}
