package demostore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/khadmahq/khadma/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo_session.json")
	fs := NewFileStore(path)

	if s, err := fs.Load(); err != nil || s != nil {
		t.Fatalf("empty store should report absent, got %v %v", s, err)
	}

	in := &models.Session{UserID: "demo-user-id", Email: "demo@example.com", IsDemo: true}
	if err := fs.Save(in); err != nil {
		t.Fatal(err)
	}

	out, err := fs.Load()
	if err != nil {
		t.Fatal(err)
	}
	if out == nil || out.UserID != in.UserID || !out.IsDemo {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestFileStoreDiscardsCorruptRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo_session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStore(path)
	s, err := fs.Load()
	if err != nil {
		t.Fatalf("corrupt record must not surface an error, got %v", err)
	}
	if s != nil {
		t.Fatalf("corrupt record must be treated as absent, got %+v", s)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("corrupt record file should be removed")
	}
}

func TestFileStoreDiscardsRecordWithoutUserID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo_session.json")
	if err := os.WriteFile(path, []byte(`{"email":"demo@example.com"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStore(path)
	s, err := fs.Load()
	if err != nil || s != nil {
		t.Fatalf("record without user id should be discarded, got %v %v", s, err)
	}
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "demo_session.json"))
	if err := fs.Clear(); err != nil {
		t.Fatalf("clearing an empty store should succeed, got %v", err)
	}
	if err := fs.Save(&models.Session{UserID: "demo-user-id"}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := fs.Clear(); err != nil {
		t.Fatalf("second clear should still succeed, got %v", err)
	}
}
