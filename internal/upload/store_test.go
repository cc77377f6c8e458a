package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveWritesFileAndDescriptor(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:8080", 10, 5, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	body := "attachment body"
	att, err := store.Save(strings.NewReader(body), "notes.txt", "text/plain", int64(len(body)), 0)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if att.OriginalName != "notes.txt" || att.MimeType != "text/plain" {
		t.Fatalf("unexpected descriptor: %+v", att)
	}
	if att.Size != int64(len(body)) {
		t.Fatalf("unexpected size: %d", att.Size)
	}
	if filepath.Ext(att.Filename) != ".txt" {
		t.Fatalf("extension not preserved: %q", att.Filename)
	}
	if att.Filename == "notes.txt" {
		t.Fatalf("stored name must not be the client name")
	}
	if att.URL != "http://localhost:8080/uploads/"+att.Filename {
		t.Fatalf("unexpected url: %q", att.URL)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), att.Filename))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != body {
		t.Fatalf("stored content mismatch")
	}
}

func TestSaveRejectsDeclaredOversize(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:8080", 1, 5, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	_, err = store.Save(strings.NewReader("x"), "big.bin", "application/octet-stream", 2<<20, 0)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected size rejection, got %v", err)
	}
}

func TestSaveRejectsUndeclaredOversize(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:8080", 1, 5, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	// Body longer than the declared size and over the ceiling.
	body := strings.Repeat("a", (1<<20)+1)
	_, err = store.Save(strings.NewReader(body), "sneaky.bin", "application/octet-stream", 10, 0)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected size rejection, got %v", err)
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected file must not remain on disk")
	}
}

func TestSaveRejectsCountCeiling(t *testing.T) {
	store, err := NewStore(t.TempDir(), "http://localhost:8080", 10, 2, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	_, err = store.Save(strings.NewReader("ok"), "a.txt", "text/plain", 2, 2)
	if !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("expected count rejection, got %v", err)
	}
}
