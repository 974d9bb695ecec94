package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_LoadSave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saves", "progress.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, ok, err := s.Load(ctx); ok || err != nil {
		t.Fatalf("Load on missing file = %v, %v", ok, err)
	}
	if err := s.Save(ctx, []byte(`{"xp":1}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, []byte(`{"xp":2}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, ok, err := s.Load(ctx)
	if !ok || err != nil || string(data) != `{"xp":2}` {
		t.Fatalf("Load = %q %v %v", data, ok, err)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot file, got %d entries", len(entries))
	}
}

func TestStore_CancelledContext(t *testing.T) {
	s, _ := New(filepath.Join(t.TempDir(), "p.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, []byte("x")); err == nil {
		t.Error("expected error on cancelled context")
	}
}

func TestNew_EmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestStore_UpdatedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := New(filepath.Join(t.TempDir(), "p.json"))

	if _, ok, err := s.UpdatedAt(ctx); ok || err != nil {
		t.Fatalf("UpdatedAt before save = %v, %v", ok, err)
	}
	before := time.Now().Add(-time.Second)
	if err := s.Save(ctx, []byte("{}")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	at, ok, err := s.UpdatedAt(ctx)
	if !ok || err != nil {
		t.Fatalf("UpdatedAt after save = %v, %v", ok, err)
	}
	if at.Before(before) {
		t.Errorf("UpdatedAt = %v, want after %v", at, before)
	}
}
