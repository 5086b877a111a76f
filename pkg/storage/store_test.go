package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func storeBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fs := NewFilesystemRepository(dir)
	if err := fs.Initialize(); err != nil {
		t.Fatal(err)
	}
	sq, err := OpenSQLite(filepath.Join(dir, "drafty.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]Store{"file": fs, "sqlite": sq}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			if err := s.Set(ctx, KeyWorkflowStates, []byte(`{"a":"verified"}`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set(ctx, KeyWorkflowStates, []byte(`{"a":"approved"}`)); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			got, err := s.Get(ctx, KeyWorkflowStates)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `{"a":"approved"}` {
				t.Errorf("Get = %s", got)
			}

			if err := s.Delete(ctx, KeyWorkflowStates); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := s.Delete(ctx, KeyWorkflowStates); err != nil {
				t.Errorf("second Delete should be a no-op, got %v", err)
			}
			if _, err := s.Get(ctx, KeyWorkflowStates); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
			if err := s.Set(ctx, "", nil); err == nil {
				t.Error("expected error for empty key")
			}
		})
	}
}

func TestFilesystemRepository_ResolvePath(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	tests := []struct {
		name    string
		wantErr bool
	}{
		{"selection.json", false},
		{"../escape.json", true},
		{"nested/file.json", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := repo.ResolvePath(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolvePath(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestFilesystemRepository_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Set(context.Background(), KeySession, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, DraftyDir, KeySession+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}
	if !repo.IsInitialized() {
		t.Error("expected directory to exist after Set")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(BackendFile, dir, "")
	if err != nil {
		t.Fatalf("Open(file) failed: %v", err)
	}
	if _, ok := s.(*FilesystemRepository); !ok {
		t.Errorf("expected filesystem store, got %T", s)
	}

	s, err = Open(BackendSQLite, dir, filepath.Join(dir, DraftyDir, "drafty.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	sq, ok := s.(*SQLiteStore)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", s)
	}
	_ = sq.Close()

	if _, err := Open("redis", dir, ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
